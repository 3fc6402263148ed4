package ports

import "github.com/aretw0/gibbs/pkg/domain"

// ThermoModel computes thermodynamic properties of a material state.
// Both methods must be pure functions of the given state and may fail for
// non-physical input (e.g. non-positive temperature or pressure).
// A model may be shared by any number of unit operations.
type ThermoModel interface {
	// ChemicalPotential returns the chemical potential of each species.
	// Species may be omitted; the solver leaves omitted species untouched.
	ChemicalPotential(state domain.MaterialState) (map[string]float64, error)

	// GibbsEnergy returns the total Gibbs energy of the state.
	GibbsEnergy(state domain.MaterialState) (float64, error)
}
