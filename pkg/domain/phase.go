package domain

// Phase is the lifecycle node a unit operation currently occupies.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized" // Constructed or terminated
	PhaseReady         Phase = "ready"         // Initialized, no valid product
	PhaseCalculated    Phase = "calculated"    // Product available
)

// PhaseOf derives the phase from the two lifecycle flags.
func PhaseOf(initialized, calculated bool) Phase {
	switch {
	case !initialized:
		return PhaseUninitialized
	case calculated:
		return PhaseCalculated
	default:
		return PhaseReady
	}
}
