package thermo_test

import (
	"math"
	"testing"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/ports"
	"github.com/aretw0/gibbs/pkg/thermo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{"ideal", "molefraction"}, thermo.Names())
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := thermo.New("peng-robinson", nil)
	assert.ErrorContains(t, err, `"peng-robinson" is not available`)
}

func TestRegistry_CustomFactory(t *testing.T) {
	r := thermo.NewRegistry()
	called := false
	r.Register("stub", func(params map[string]any) (ports.ThermoModel, error) {
		called = true
		return &thermo.MoleFraction{Scale: 1}, nil
	})

	m, err := r.New("stub", nil)
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.True(t, called)
	assert.Equal(t, []string{"stub"}, r.Names())
}

func TestMoleFraction(t *testing.T) {
	m, err := thermo.New(thermo.MoleFractionName, nil)
	require.NoError(t, err)

	state := domain.MaterialState{Composition: domain.Composition{"A": 1, "B": 3}}
	mu, err := m.ChemicalPotential(state)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, mu["A"], 1e-12)
	assert.InDelta(t, 0.75, mu["B"], 1e-12)

	g, err := m.GibbsEnergy(state)
	require.NoError(t, err)
	assert.InDelta(t, 4000.0, g, 1e-9)
}

func TestMoleFraction_Scale(t *testing.T) {
	m, err := thermo.New(thermo.MoleFractionName, map[string]any{"scale": 2})
	require.NoError(t, err)

	g, err := m.GibbsEnergy(domain.MaterialState{Composition: domain.Composition{"A": 1.5}})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, g, 1e-12)
}

func TestMoleFraction_UnknownParam(t *testing.T) {
	_, err := thermo.New(thermo.MoleFractionName, map[string]any{"scael": 2})
	assert.ErrorContains(t, err, "invalid parameters")
}

func TestIdeal_ChemicalPotential(t *testing.T) {
	m, err := thermo.New(thermo.IdealName, map[string]any{
		"g0": map[string]any{"A": -1000.0, "B": 0},
	})
	require.NoError(t, err)

	state := domain.MaterialState{
		Composition: domain.Composition{"A": 1, "B": 1},
		Temperature: 400,
		Pressure:    domain.DefaultPressure,
	}
	mu, err := m.ChemicalPotential(state)
	require.NoError(t, err)

	rt := thermo.R * 400
	assert.InDelta(t, -1000+rt*math.Log(0.5), mu["A"], 1e-9)
	assert.InDelta(t, rt*math.Log(0.5), mu["B"], 1e-9)

	g, err := m.GibbsEnergy(state)
	require.NoError(t, err)
	assert.InDelta(t, mu["A"]+mu["B"], g, 1e-9)
}

func TestIdeal_Reduced(t *testing.T) {
	m, err := thermo.New(thermo.IdealName, map[string]any{
		"reduced":            true,
		"reference_pressure": 2e5,
	})
	require.NoError(t, err)

	mu, err := m.ChemicalPotential(domain.MaterialState{
		Composition: domain.Composition{"A": 1},
		Temperature: 300,
		Pressure:    2e5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mu["A"], 1e-12)
}

func TestIdeal_DepletedSpeciesStaysFinite(t *testing.T) {
	m, err := thermo.New(thermo.IdealName, nil)
	require.NoError(t, err)

	mu, err := m.ChemicalPotential(domain.MaterialState{
		Composition: domain.Composition{"A": 0, "B": 1},
		Temperature: 300,
		Pressure:    1e5,
	})
	require.NoError(t, err)
	assert.False(t, math.IsInf(mu["A"], 0))
}

func TestIdeal_NonPhysical(t *testing.T) {
	m, err := thermo.New(thermo.IdealName, nil)
	require.NoError(t, err)

	_, err = m.ChemicalPotential(domain.MaterialState{Composition: domain.Composition{"A": 1}, Temperature: 0, Pressure: 1e5})
	assert.ErrorIs(t, err, thermo.ErrNonPhysical)

	_, err = m.GibbsEnergy(domain.MaterialState{Composition: domain.Composition{"A": 1}, Temperature: 300, Pressure: -1})
	assert.ErrorIs(t, err, thermo.ErrNonPhysical)
}

func TestIdeal_Strict(t *testing.T) {
	m, err := thermo.New(thermo.IdealName, map[string]any{"strict": true, "g0": map[string]any{"A": 0}})
	require.NoError(t, err)

	_, err = m.ChemicalPotential(domain.MaterialState{Composition: domain.Composition{"A": 1, "B": 1}, Temperature: 300, Pressure: 1e5})
	assert.ErrorContains(t, err, `species "B"`)
}

func TestIdeal_BadReferencePressure(t *testing.T) {
	_, err := thermo.New(thermo.IdealName, map[string]any{"reference_pressure": 0})
	assert.Error(t, err)
}
