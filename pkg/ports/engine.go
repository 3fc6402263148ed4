package ports

import "github.com/aretw0/gibbs/pkg/domain"

// UnitOperation defines the lifecycle contract a process-simulation host drives.
// Implementations are not safe for concurrent use; hosts serialize access.
type UnitOperation interface {
	// Initialize checks that a thermodynamic model is attached and marks the unit ready.
	Initialize() error

	// Validate checks feed and setpoints without changing state.
	Validate() error

	// Calculate validates and runs the equilibrium solver.
	Calculate() error

	// Terminate releases the ready state. It never fails.
	Terminate()

	SetFeed(feed domain.MaterialState)
	SetThermoModel(model ThermoModel)
	SetTemperature(t float64)
	SetPressure(p float64)

	// Product returns a copy of the last computed product.
	Product() (domain.MaterialState, error)
}
