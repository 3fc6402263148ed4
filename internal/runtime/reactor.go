package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/equilibrium"
	"github.com/aretw0/gibbs/pkg/ports"
)

// Reactor is the unit operation state machine.
// It gates the equilibrium solver behind Initialize/Validate/Calculate/Terminate
// and owns the configuration. It is not safe for concurrent use.
type Reactor struct {
	name string

	initialized bool
	calculated  bool

	feed        domain.MaterialState
	product     domain.MaterialState
	input       domain.MaterialState // feed the product was computed from
	gibbs       float64
	temperature float64
	pressure    float64

	// model is shared; other reactors may hold the same value.
	model ports.ThermoModel

	solverOpts []equilibrium.Option
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

var _ ports.UnitOperation = (*Reactor)(nil)

// Option configures the Reactor.
type Option func(*Reactor)

// WithName sets the unit label carried by lifecycle events.
func WithName(name string) Option {
	return func(r *Reactor) {
		r.name = name
	}
}

// WithLifecycleHooks registers observers for lifecycle and solver events.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Reactor) {
		r.hooks = hooks
	}
}

// WithLogger sets the logger used for internal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reactor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSolverOptions passes options to every solver run.
func WithSolverOptions(opts ...equilibrium.Option) Option {
	return func(r *Reactor) {
		r.solverOpts = append(r.solverOpts, opts...)
	}
}

// NewReactor creates an uninitialized reactor at standard conditions.
func NewReactor(opts ...Option) *Reactor {
	r := &Reactor{
		name:        "reactor",
		feed:        domain.NewMaterialState("Feed"),
		temperature: domain.DefaultTemperature,
		pressure:    domain.DefaultPressure,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize requires an attached model. It never clears configuration.
func (r *Reactor) Initialize() (err error) {
	defer r.emit(domain.EventInitialize, time.Now(), &err)

	if r.model == nil {
		return domain.NewError(domain.KindFailedInitialization, "no thermodynamic model attached")
	}
	r.initialized = true
	r.calculated = false
	return nil
}

// Validate checks the feed and setpoints. It does not change state.
func (r *Reactor) Validate() (err error) {
	defer r.emit(domain.EventValidate, time.Now(), &err)

	if err := r.ensureInitialized(); err != nil {
		return err
	}
	if len(r.feed.Composition) == 0 {
		return domain.NewError(domain.KindInvalidArgument, "feed composition is empty")
	}
	if r.temperature <= 0 || r.pressure <= 0 {
		return domain.NewError(domain.KindInvalidArgument, "invalid temperature or pressure (T=%g K, P=%g Pa)", r.temperature, r.pressure)
	}
	return nil
}

// Calculate validates the configuration and runs the solver.
// Validation errors are returned unchanged; any other failure is
// returned as a CalculationFailed domain error.
//
// The calculated flag is cleared when the solver starts, not before. A
// call rejected by the lifecycle or validation checks leaves the phase and
// the previous product as they were; a run that fails inside the solver
// leaves the reactor ready without a product.
func (r *Reactor) Calculate() (err error) {
	defer r.emit(domain.EventCalculate, time.Now(), &err)

	if err := r.ensureInitialized(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	// a new computation begins
	r.calculated = false

	res, err := r.solve()
	if err != nil {
		if domain.IsDomain(err) {
			return err
		}
		r.logger.Debug("calculation failed", "unit", r.name, "err", err)
		return domain.Wrap(domain.KindCalculationFailed, err)
	}

	r.product = res.Product
	r.input = r.feed.Clone()
	r.gibbs = res.GibbsEnergy
	r.calculated = true
	return nil
}

// solve runs the equilibrium solver, turning a panicking model into an error.
func (r *Reactor) solve() (res equilibrium.Result, err error) {
	if r.model == nil {
		return res, domain.NewError(domain.KindCalculationFailed, "no thermodynamic model attached")
	}

	defer func() {
		if p := recover(); p != nil {
			err = domain.NewError(domain.KindCalculationFailed, "thermodynamic model panicked: %v", p)
		}
	}()

	opts := append([]equilibrium.Option{equilibrium.WithHooks(r.hooks), equilibrium.WithUnit(r.name)}, r.solverOpts...)
	return equilibrium.New(opts...).Minimize(context.Background(), r.feed, r.temperature, r.pressure, r.model)
}

// Terminate releases the ready state. Configuration is kept for reuse.
func (r *Reactor) Terminate() {
	var err error
	defer r.emit(domain.EventTerminate, time.Now(), &err)

	r.initialized = false
	r.calculated = false
}

// SetFeed stores a copy of feed. No validation happens here.
func (r *Reactor) SetFeed(feed domain.MaterialState) {
	r.feed = feed.Clone()
}

// SetThermoModel attaches a (possibly shared) model.
func (r *Reactor) SetThermoModel(model ports.ThermoModel) {
	r.model = model
}

// SetTemperature sets the temperature setpoint in K.
func (r *Reactor) SetTemperature(t float64) {
	r.temperature = t
}

// SetPressure sets the pressure setpoint in Pa.
func (r *Reactor) SetPressure(p float64) {
	r.pressure = p
}

// Product returns a copy of the last computed product.
func (r *Reactor) Product() (domain.MaterialState, error) {
	if !r.calculated {
		return domain.MaterialState{}, domain.NewError(domain.KindInvalidOperation, "computation not yet complete")
	}
	return r.product.Clone(), nil
}

// GibbsEnergy returns the Gibbs energy of the last computed product.
func (r *Reactor) GibbsEnergy() (float64, error) {
	if !r.calculated {
		return 0, domain.NewError(domain.KindInvalidOperation, "computation not yet complete")
	}
	return r.gibbs, nil
}

// Input returns a copy of the feed the last product was computed from.
func (r *Reactor) Input() (domain.MaterialState, error) {
	if !r.calculated {
		return domain.MaterialState{}, domain.NewError(domain.KindInvalidOperation, "computation not yet complete")
	}
	return r.input.Clone(), nil
}

// Name returns the unit label.
func (r *Reactor) Name() string { return r.name }

// Phase reports the lifecycle node.
func (r *Reactor) Phase() domain.Phase {
	return domain.PhaseOf(r.initialized, r.calculated)
}

// Feed returns a copy of the configured feed.
func (r *Reactor) Feed() domain.MaterialState { return r.feed.Clone() }

// Temperature returns the temperature setpoint.
func (r *Reactor) Temperature() float64 { return r.temperature }

// Pressure returns the pressure setpoint.
func (r *Reactor) Pressure() float64 { return r.pressure }

// ThermoModel returns the attached model, or nil.
func (r *Reactor) ThermoModel() ports.ThermoModel { return r.model }

func (r *Reactor) ensureInitialized() error {
	if !r.initialized {
		return domain.NewError(domain.KindInvalidOperation, "call Initialize first")
	}
	return nil
}

// emit reports a finished lifecycle call. It is deferred, so errp holds the final result.
func (r *Reactor) emit(kind domain.EventType, start time.Time, errp *error) {
	if r.hooks.OnLifecycle == nil {
		return
	}
	now := time.Now()
	r.hooks.OnLifecycle(context.Background(), &domain.LifecycleEvent{
		EventBase: domain.EventBase{
			Timestamp: now,
			Type:      kind,
			Unit:      r.name,
		},
		Phase:    r.Phase(),
		Err:      *errp,
		Duration: now.Sub(start),
	})
}
