package thermo

import (
	"errors"
	"fmt"
	"math"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/ports"
)

// IdealName is the registry name of Ideal.
const IdealName = "ideal"

const (
	// R is the molar gas constant in J/(mol K).
	R = 8.314462618

	// fractionFloor keeps ln(x) finite for species that were depleted.
	fractionFloor = 1e-12
)

// ErrNonPhysical is returned for states with non-positive temperature or pressure.
var ErrNonPhysical = errors.New("non-physical state")

// Ideal is an ideal-gas mixture:
//
//	mu_i = g0_i + R T ln(x_i P / P0)
//	G    = sum_i n_i mu_i
//
// With Reduced set, potentials and energy are divided by R T, which keeps
// them on the same scale as molar amounts.
type Ideal struct {
	// G0 is the standard molar Gibbs energy of formation in J/mol.
	G0 map[string]float64 `mapstructure:"g0"`

	// ReferencePressure P0 in Pa. Defaults to 101325.
	ReferencePressure float64 `mapstructure:"reference_pressure"`

	// Strict rejects species without a G0 entry instead of assuming 0.
	Strict bool `mapstructure:"strict"`

	Reduced bool `mapstructure:"reduced"`
}

// NewIdeal builds an Ideal model from parameters.
func NewIdeal(params map[string]any) (ports.ThermoModel, error) {
	m := &Ideal{ReferencePressure: domain.DefaultPressure}
	if err := decodeParams(params, m); err != nil {
		return nil, err
	}
	if m.ReferencePressure <= 0 {
		return nil, fmt.Errorf("reference_pressure must be positive, got %g", m.ReferencePressure)
	}
	return m, nil
}

func (m *Ideal) ChemicalPotential(state domain.MaterialState) (map[string]float64, error) {
	if state.Temperature <= 0 || state.Pressure <= 0 {
		return nil, fmt.Errorf("%w: T=%g K, P=%g Pa", ErrNonPhysical, state.Temperature, state.Pressure)
	}

	rt := R * state.Temperature
	x := state.Composition.MoleFractions()
	mu := make(map[string]float64, len(x))
	for _, species := range state.Composition.Species() {
		g0, ok := m.G0[species]
		if !ok && m.Strict {
			return nil, fmt.Errorf("no standard Gibbs energy for species %q", species)
		}
		xi := math.Max(x[species], fractionFloor)
		v := g0 + rt*math.Log(xi*state.Pressure/m.ReferencePressure)
		if m.Reduced {
			v /= rt
		}
		mu[species] = v
	}
	return mu, nil
}

func (m *Ideal) GibbsEnergy(state domain.MaterialState) (float64, error) {
	mu, err := m.ChemicalPotential(state)
	if err != nil {
		return 0, err
	}
	g := 0.0
	for _, species := range state.Composition.Species() {
		g += state.Composition[species] * mu[species]
	}
	return g, nil
}
