package thermo

import (
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/ports"
)

// MoleFractionName is the registry name of MoleFraction.
const MoleFractionName = "molefraction"

// MoleFraction is a linear placeholder model: the potential of a species is
// its mole fraction and the Gibbs energy is Scale times the total moles.
// It is deterministic and never fails, which makes it the reference model
// for exercising the reactor.
type MoleFraction struct {
	Scale float64 `mapstructure:"scale"`
}

// NewMoleFraction builds a MoleFraction model. Scale defaults to 1000.
func NewMoleFraction(params map[string]any) (ports.ThermoModel, error) {
	m := &MoleFraction{Scale: 1000}
	if err := decodeParams(params, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MoleFraction) ChemicalPotential(state domain.MaterialState) (map[string]float64, error) {
	return state.Composition.MoleFractions(), nil
}

func (m *MoleFraction) GibbsEnergy(state domain.MaterialState) (float64, error) {
	return state.TotalMoles() * m.Scale, nil
}
