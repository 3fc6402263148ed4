package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/gibbs/internal/runtime"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/equilibrium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// dummyThermo reports mole fractions as potentials and 1000 J per mole.
type dummyThermo struct{}

func (dummyThermo) ChemicalPotential(s domain.MaterialState) (map[string]float64, error) {
	return s.Composition.MoleFractions(), nil
}

func (dummyThermo) GibbsEnergy(s domain.MaterialState) (float64, error) {
	return 1000 * s.TotalMoles(), nil
}

type mockThermo struct {
	mock.Mock
}

func (m *mockThermo) ChemicalPotential(s domain.MaterialState) (map[string]float64, error) {
	args := m.Called(s)
	mu, _ := args.Get(0).(map[string]float64)
	return mu, args.Error(1)
}

func (m *mockThermo) GibbsEnergy(s domain.MaterialState) (float64, error) {
	args := m.Called(s)
	return args.Get(0).(float64), args.Error(1)
}

type panickingThermo struct{}

func (panickingThermo) ChemicalPotential(domain.MaterialState) (map[string]float64, error) {
	panic("division by zero in activity model")
}

func (panickingThermo) GibbsEnergy(domain.MaterialState) (float64, error) { return 0, nil }

func configured() *runtime.Reactor {
	r := runtime.NewReactor(runtime.WithName("R-101"))
	r.SetThermoModel(dummyThermo{})
	r.SetFeed(domain.MaterialState{
		Name:        "Feed",
		Composition: domain.Composition{"A": 1.0, "B": 2.0},
		Temperature: 300,
		Pressure:    101325,
	})
	r.SetTemperature(500)
	r.SetPressure(2e5)
	return r
}

func TestReactor_SuccessfulCalculation(t *testing.T) {
	r := configured()

	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())
	assert.Equal(t, domain.PhaseCalculated, r.Phase())

	product, err := r.Product()
	require.NoError(t, err)
	assert.InDelta(t, 500.0, product.Temperature, 1e-6)
	assert.InDelta(t, 2e5, product.Pressure, 1e-6)
	assert.Greater(t, product.Composition["A"], 0.0)
	assert.Greater(t, product.Composition["B"], 0.0)
	assert.InEpsilon(t, 3.0, product.Composition["A"]+product.Composition["B"], 1e-9)

	g, err := r.GibbsEnergy()
	require.NoError(t, err)
	assert.InDelta(t, 3000.0, g, 1e-6)
}

func TestReactor_ValidationFailure_EmptyFeed(t *testing.T) {
	r := configured()
	r.SetFeed(domain.MaterialState{Name: "Feed", Temperature: 300, Pressure: 101325})
	require.NoError(t, r.Initialize())

	err := r.Calculate()
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, domain.PhaseReady, r.Phase())
}

func TestReactor_ValidationFailure_Setpoints(t *testing.T) {
	tests := []struct {
		name string
		t, p float64
	}{
		{"Zero Temperature", 0, 1e5},
		{"Negative Temperature", -10, 1e5},
		{"Zero Pressure", 300, 0},
		{"Negative Pressure", 300, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := configured()
			r.SetTemperature(tt.t)
			r.SetPressure(tt.p)
			require.NoError(t, r.Initialize())

			assert.ErrorIs(t, r.Validate(), domain.ErrInvalidArgument)
			assert.ErrorIs(t, r.Calculate(), domain.ErrInvalidArgument)
		})
	}
}

func TestReactor_OperationWithoutInit(t *testing.T) {
	r := runtime.NewReactor()

	err := r.Calculate()
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "call Initialize first")

	assert.ErrorIs(t, r.Validate(), domain.ErrInvalidOperation)
	assert.Equal(t, domain.PhaseUninitialized, r.Phase())
}

func TestReactor_ProductBeforeCalculate(t *testing.T) {
	r := configured()
	_, err := r.Product()
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	require.NoError(t, r.Initialize())
	_, err = r.Product()
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Contains(t, err.Error(), "computation not yet complete")

	_, err = r.GibbsEnergy()
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestReactor_InitializeWithoutModel(t *testing.T) {
	r := runtime.NewReactor()
	err := r.Initialize()
	assert.ErrorIs(t, err, domain.ErrFailedInitialization)
	assert.Equal(t, domain.PhaseUninitialized, r.Phase())
}

func TestReactor_InitializeKeepsConfiguration(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())

	require.NoError(t, r.Initialize())
	assert.Equal(t, domain.PhaseReady, r.Phase(), "re-initializing drops the product")
	assert.Equal(t, 500.0, r.Temperature())
	assert.Equal(t, 2.0, r.Feed().Composition["B"])
}

func TestReactor_Terminate(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())

	r.Terminate()
	assert.Equal(t, domain.PhaseUninitialized, r.Phase())

	_, err := r.Product()
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.ErrorIs(t, r.Calculate(), domain.ErrInvalidOperation)

	// Terminate on a fresh or terminated unit is harmless.
	r.Terminate()
	runtime.NewReactor().Terminate()

	// Configuration survives; the unit can be brought back.
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())
}

func TestReactor_ValidateDoesNotChangeState(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Validate())
	assert.Equal(t, domain.PhaseReady, r.Phase())

	require.NoError(t, r.Calculate())
	require.NoError(t, r.Validate())
	assert.Equal(t, domain.PhaseCalculated, r.Phase())
}

func TestReactor_ModelErrorIsWrapped(t *testing.T) {
	boom := errors.New("flash failed to converge")
	model := new(mockThermo)
	model.On("ChemicalPotential", mock.Anything).Return(nil, boom)

	r := configured()
	r.SetThermoModel(model)
	require.NoError(t, r.Initialize())

	err := r.Calculate()
	require.Error(t, err)
	assert.Equal(t, domain.KindCalculationFailed, domain.KindOf(err))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "flash failed to converge")
	assert.Equal(t, domain.PhaseReady, r.Phase())
}

func TestReactor_DomainErrorFromModelPassesThrough(t *testing.T) {
	domainErr := domain.NewError(domain.KindInvalidArgument, "unknown species X")
	model := new(mockThermo)
	model.On("ChemicalPotential", mock.Anything).Return(nil, domainErr)

	r := configured()
	r.SetThermoModel(model)
	require.NoError(t, r.Initialize())

	err := r.Calculate()
	assert.Same(t, domainErr, err)
}

func TestReactor_EngineFailureKeepsKind(t *testing.T) {
	r := configured()
	r.SetFeed(domain.MaterialState{Composition: domain.Composition{"A": 0, "B": 0}})
	require.NoError(t, r.Initialize())

	err := r.Calculate()
	assert.ErrorIs(t, err, domain.ErrCalculationFailed)
	assert.Contains(t, err.Error(), "invalid total moles")
}

func TestReactor_PanickingModel(t *testing.T) {
	r := configured()
	r.SetThermoModel(panickingThermo{})
	require.NoError(t, r.Initialize())

	err := r.Calculate()
	assert.ErrorIs(t, err, domain.ErrCalculationFailed)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestReactor_ModelDetachedAfterInitialize(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())
	r.SetThermoModel(nil)

	assert.ErrorIs(t, r.Calculate(), domain.ErrCalculationFailed)
}

func TestReactor_FailedRecalculationDropsProduct(t *testing.T) {
	model := new(mockThermo)
	r := configured()
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())

	model.On("ChemicalPotential", mock.Anything).Return(nil, errors.New("boom"))
	r.SetThermoModel(model)

	require.Error(t, r.Calculate())
	assert.Equal(t, domain.PhaseReady, r.Phase())
	_, err := r.Product()
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestReactor_RejectedRecalculationKeepsProduct(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())

	r.SetTemperature(-1)
	require.ErrorIs(t, r.Calculate(), domain.ErrInvalidArgument)

	assert.Equal(t, domain.PhaseCalculated, r.Phase())
	product, err := r.Product()
	require.NoError(t, err)
	assert.Equal(t, 500.0, product.Temperature)
}

func TestReactor_RecalculateFromCalculated(t *testing.T) {
	tests := []struct {
		name      string
		reconfig  func(r *runtime.Reactor)
		wantErr   error
		wantPhase domain.Phase
	}{
		{
			name:      "success stays calculated",
			reconfig:  func(r *runtime.Reactor) {},
			wantPhase: domain.PhaseCalculated,
		},
		{
			name:      "validation failure keeps the previous product",
			reconfig:  func(r *runtime.Reactor) { r.SetFeed(domain.MaterialState{}) },
			wantErr:   domain.ErrInvalidArgument,
			wantPhase: domain.PhaseCalculated,
		},
		{
			name:      "solver failure drops the product",
			reconfig:  func(r *runtime.Reactor) { r.SetThermoModel(panickingThermo{}) },
			wantErr:   domain.ErrCalculationFailed,
			wantPhase: domain.PhaseReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := configured()
			require.NoError(t, r.Initialize())
			require.NoError(t, r.Calculate())

			tt.reconfig(r)
			err := r.Calculate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPhase, r.Phase())

			_, perr := r.Product()
			if tt.wantPhase == domain.PhaseCalculated {
				assert.NoError(t, perr)
			} else {
				assert.ErrorIs(t, perr, domain.ErrInvalidOperation)
			}
		})
	}
}

func TestReactor_SettersDoNotInvalidate(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())

	r.SetFeed(domain.MaterialState{})
	r.SetThermoModel(nil)
	r.SetTemperature(1)
	assert.Equal(t, domain.PhaseCalculated, r.Phase())
}

func TestReactor_ProductIsACopy(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())

	p1, err := r.Product()
	require.NoError(t, err)
	a := p1.Composition["A"]
	p1.Composition["A"] = -1
	p1.Composition["Z"] = 7

	p2, err := r.Product()
	require.NoError(t, err)
	assert.Equal(t, a, p2.Composition["A"])
	assert.NotContains(t, p2.Composition, "Z")
}

func TestReactor_FeedIsCopiedOnSet(t *testing.T) {
	feed := domain.MaterialState{Composition: domain.Composition{"A": 1, "B": 2}}
	r := configured()
	r.SetFeed(feed)
	feed.Composition["A"] = 100

	assert.Equal(t, 1.0, r.Feed().Composition["A"])
}

func TestReactor_Determinism(t *testing.T) {
	r := configured()
	require.NoError(t, r.Initialize())

	require.NoError(t, r.Calculate())
	first, _ := r.Product()
	require.NoError(t, r.Calculate())
	second, _ := r.Product()

	assert.Equal(t, first, second)
}

func TestReactor_SharedModel(t *testing.T) {
	shared := dummyThermo{}
	a := configured()
	b := configured()
	a.SetThermoModel(shared)
	b.SetThermoModel(shared)

	require.NoError(t, a.Initialize())
	require.NoError(t, b.Initialize())
	require.NoError(t, a.Calculate())
	a.Terminate()
	require.NoError(t, b.Calculate())
}

func TestReactor_SolverOptions(t *testing.T) {
	r := runtime.NewReactor(runtime.WithSolverOptions(equilibrium.WithIterations(0)))
	r.SetThermoModel(dummyThermo{})
	r.SetFeed(domain.MaterialState{Composition: domain.Composition{"A": 1, "B": 2}})
	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())

	p, _ := r.Product()
	assert.Equal(t, 1.0, p.Composition["A"])
	assert.Equal(t, domain.DefaultTemperature, p.Temperature)
}

func TestReactor_LifecycleHooks(t *testing.T) {
	var events []domain.EventType
	var phases []domain.Phase
	var iterations int

	hooks := domain.LifecycleHooks{
		OnLifecycle: func(ctx context.Context, e *domain.LifecycleEvent) {
			events = append(events, e.Type)
			phases = append(phases, e.Phase)
			assert.Equal(t, "R-101", e.Unit)
		},
		OnIteration: func(ctx context.Context, e *domain.IterationEvent) {
			iterations++
		},
	}

	r := runtime.NewReactor(runtime.WithName("R-101"), runtime.WithLifecycleHooks(hooks))
	r.SetThermoModel(dummyThermo{})
	r.SetFeed(domain.MaterialState{Composition: domain.Composition{"A": 1, "B": 2}})

	require.NoError(t, r.Initialize())
	require.NoError(t, r.Calculate())
	r.Terminate()

	assert.Equal(t, []domain.EventType{
		domain.EventInitialize,
		domain.EventValidate,
		domain.EventCalculate,
		domain.EventTerminate,
	}, events)
	assert.Equal(t, []domain.Phase{
		domain.PhaseReady,
		domain.PhaseReady,
		domain.PhaseCalculated,
		domain.PhaseUninitialized,
	}, phases)
	assert.Equal(t, equilibrium.Iterations, iterations)
}

func TestReactor_LifecycleHookSeesError(t *testing.T) {
	var last *domain.LifecycleEvent
	r := runtime.NewReactor(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnLifecycle: func(ctx context.Context, e *domain.LifecycleEvent) { last = e },
	}))

	require.Error(t, r.Initialize())
	require.NotNil(t, last)
	assert.Equal(t, domain.EventInitialize, last.Type)
	assert.ErrorIs(t, last.Err, domain.ErrFailedInitialization)
}
