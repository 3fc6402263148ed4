package gibbs

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/gibbs/internal/fingerprint"
	"github.com/aretw0/gibbs/internal/logging"
	"github.com/aretw0/gibbs/internal/runtime"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/equilibrium"
	"github.com/aretw0/gibbs/pkg/ports"
	"github.com/aretw0/gibbs/pkg/thermo"
	"github.com/rs/xid"
)

// Reactor is the high-level entry point for the gibbs library.
// It wraps the internal unit operation and wires logging and observability.
// Like the unit it wraps, a Reactor is not safe for concurrent use.
type Reactor struct {
	runtime    *runtime.Reactor
	modelName  string
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	solverOpts []equilibrium.Option
	name       string
	model      ports.ThermoModel
}

var _ ports.UnitOperation = (*Reactor)(nil)

// Option defines a functional option for configuring the Reactor.
type Option func(*Reactor)

// WithName sets the unit label (default "reactor").
func WithName(name string) Option {
	return func(r *Reactor) {
		r.name = name
	}
}

// WithThermoModel attaches a thermodynamic model at construction.
func WithThermoModel(model ports.ThermoModel) Option {
	return func(r *Reactor) {
		r.model = model
	}
}

// WithModelName labels the model attached by WithThermoModel in run records.
func WithModelName(name string) Option {
	return func(r *Reactor) {
		r.modelName = name
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Reactor) {
		r.hooks = domain.MergeHooks(r.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger. Lifecycle events are logged through it.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reactor) {
		r.logger = logger
	}
}

// WithSolverOptions tunes the equilibrium solver (iteration count, step size).
func WithSolverOptions(opts ...equilibrium.Option) Option {
	return func(r *Reactor) {
		r.solverOpts = append(r.solverOpts, opts...)
	}
}

// New creates an uninitialized reactor.
func New(opts ...Option) *Reactor {
	r := &Reactor{name: "reactor"}
	for _, opt := range opts {
		opt(r)
	}

	// Ensure logger is initialized so the logging hooks always have a sink.
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	r.logger = r.logger.With("unit", r.name)

	hooks := domain.MergeHooks(logging.Hooks(r.logger), r.hooks)

	r.runtime = runtime.NewReactor(
		runtime.WithName(r.name),
		runtime.WithLogger(r.logger),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithSolverOptions(r.solverOpts...),
	)
	if r.model != nil {
		r.runtime.SetThermoModel(r.model)
	}
	return r
}

// Initialize marks the reactor ready. Requires a thermodynamic model.
func (r *Reactor) Initialize() error { return r.runtime.Initialize() }

// Validate checks feed and setpoints.
func (r *Reactor) Validate() error { return r.runtime.Validate() }

// Calculate runs the equilibrium solver.
func (r *Reactor) Calculate() error { return r.runtime.Calculate() }

// Terminate releases the ready state.
func (r *Reactor) Terminate() { r.runtime.Terminate() }

// SetFeed configures the inlet stream.
func (r *Reactor) SetFeed(feed domain.MaterialState) { r.runtime.SetFeed(feed) }

// SetThermoModel attaches a model. The model name reported in records is cleared.
func (r *Reactor) SetThermoModel(model ports.ThermoModel) {
	r.modelName = ""
	r.runtime.SetThermoModel(model)
}

// UseModel builds a model from the thermo registry and attaches it.
func (r *Reactor) UseModel(name string, params map[string]any) error {
	model, err := thermo.New(name, params)
	if err != nil {
		return err
	}
	r.runtime.SetThermoModel(model)
	r.modelName = name
	return nil
}

// SetTemperature sets the temperature setpoint in K.
func (r *Reactor) SetTemperature(t float64) { r.runtime.SetTemperature(t) }

// SetPressure sets the pressure setpoint in Pa.
func (r *Reactor) SetPressure(p float64) { r.runtime.SetPressure(p) }

// Product returns a copy of the computed product.
func (r *Reactor) Product() (domain.MaterialState, error) { return r.runtime.Product() }

// GibbsEnergy returns the Gibbs energy of the computed product.
func (r *Reactor) GibbsEnergy() (float64, error) { return r.runtime.GibbsEnergy() }

// Phase reports the lifecycle node.
func (r *Reactor) Phase() domain.Phase { return r.runtime.Phase() }

// Name returns the unit label.
func (r *Reactor) Name() string { return r.name }

// ModelName returns the registry name of the attached model, if it came from UseModel.
func (r *Reactor) ModelName() string { return r.modelName }

// Feed returns a copy of the configured feed.
func (r *Reactor) Feed() domain.MaterialState { return r.runtime.Feed() }

// Setpoints returns the temperature and pressure setpoints.
func (r *Reactor) Setpoints() (temperature, pressure float64) {
	return r.runtime.Temperature(), r.runtime.Pressure()
}

// Record captures the last successful calculation as a RunRecord with a fresh ID.
func (r *Reactor) Record() (domain.RunRecord, error) {
	product, err := r.runtime.Product()
	if err != nil {
		return domain.RunRecord{}, err
	}
	g, err := r.runtime.GibbsEnergy()
	if err != nil {
		return domain.RunRecord{}, err
	}

	input, err := r.runtime.Input()
	if err != nil {
		return domain.RunRecord{}, err
	}

	fp, err := fingerprint.Of(product)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("failed to fingerprint product: %w", err)
	}

	return domain.RunRecord{
		ID:          xid.New().String(),
		Unit:        r.name,
		Model:       r.modelName,
		Feed:        input,
		Product:     product,
		GibbsEnergy: g,
		Fingerprint: fp,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
