package equilibrium

import (
	"context"
	"math"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/ports"
)

const (
	// Iterations is the fixed number of relaxation steps.
	Iterations = 20

	// StepSize scales the chemical-potential deviation applied per step.
	StepSize = 0.1
)

// Solver runs the relaxation loop. The zero value is not usable; call New.
type Solver struct {
	iterations int
	stepSize   float64
	hooks      domain.LifecycleHooks
	unit       string
}

// Option defines a functional option for configuring the Solver.
type Option func(*Solver)

// WithIterations overrides the iteration count. Values < 0 are treated as 0.
func WithIterations(n int) Option {
	return func(s *Solver) {
		if n < 0 {
			n = 0
		}
		s.iterations = n
	}
}

// WithStepSize overrides the relaxation step size.
func WithStepSize(step float64) Option {
	return func(s *Solver) {
		s.stepSize = step
	}
}

// WithHooks registers iteration and completion observers.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Solver) {
		s.hooks = hooks
	}
}

// WithUnit labels emitted events with the owning unit.
func WithUnit(name string) Option {
	return func(s *Solver) {
		s.unit = name
	}
}

// New creates a Solver with the standard iteration count and step size.
func New(opts ...Option) *Solver {
	s := &Solver{
		iterations: Iterations,
		stepSize:   StepSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of one minimization.
type Result struct {
	Product     domain.MaterialState
	GibbsEnergy float64
	Iterations  int
}

// Minimize copies feed, applies the temperature and pressure setpoints and
// relaxes the composition. Total moles are conserved.
//
// Numerical failures are returned as domain errors of kind CalculationFailed.
// Errors from the model are returned unchanged. ctx is only handed to hooks;
// the loop itself is not cancellable.
func (s *Solver) Minimize(ctx context.Context, feed domain.MaterialState, temperature, pressure float64, model ports.ThermoModel) (Result, error) {
	product := feed.Clone()
	product.Temperature = temperature
	product.Pressure = pressure

	total := product.Composition.Total()
	if !(total > 0) {
		return Result{}, domain.NewError(domain.KindCalculationFailed, "invalid total moles")
	}

	mu, err := model.ChemicalPotential(product)
	if err != nil {
		return Result{}, err
	}

	for iter := 0; iter < s.iterations; iter++ {
		next, lambda, err := Step(product.Composition, mu, s.stepSize, total)
		if err != nil {
			return Result{}, err
		}
		product.Composition = next

		if s.hooks.OnIteration != nil {
			s.hooks.OnIteration(ctx, &domain.IterationEvent{
				Unit:      s.unit,
				Iteration: iter + 1,
				Lambda:    lambda,
				Total:     total,
				Amounts:   next.Clone(),
			})
		}

		mu, err = model.ChemicalPotential(product)
		if err != nil {
			return Result{}, err
		}
	}

	g, err := model.GibbsEnergy(product)
	if err != nil {
		return Result{}, err
	}

	if s.hooks.OnMinimized != nil {
		s.hooks.OnMinimized(ctx, &domain.MinimizedEvent{
			Unit:        s.unit,
			Iterations:  s.iterations,
			GibbsEnergy: g,
			TotalMoles:  total,
		})
	}

	return Result{Product: product, GibbsEnergy: g, Iterations: s.iterations}, nil
}

// Step performs one relaxation followed by renormalization to total.
// It returns the new composition and the reference potential used.
func Step(comp domain.Composition, mu map[string]float64, stepSize, total float64) (domain.Composition, float64, error) {
	relaxed, lambda := Relax(comp, mu, stepSize)
	next, err := Renormalize(relaxed, total)
	if err != nil {
		return nil, lambda, err
	}
	return next, lambda, nil
}

// Relax returns a new composition where every species that has a potential
// moves by -stepSize*(mu_i - lambda), clamped at zero. A step that is not a
// number (e.g. -Inf potentials on both sides) also clamps to zero. lambda is the mean of
// all potentials in mu, including species absent from comp. With no
// potentials at all the composition is returned unchanged and lambda is NaN.
func Relax(comp domain.Composition, mu map[string]float64, stepSize float64) (domain.Composition, float64) {
	next := comp.Clone()
	if len(mu) == 0 {
		return next, math.NaN()
	}

	lambda := Lambda(mu)
	for _, species := range comp.Species() {
		potential, ok := mu[species]
		if !ok {
			continue
		}
		delta := stepSize * (potential - lambda)
		v := comp[species] - delta
		if !(v > 0) {
			v = 0
		}
		next[species] = v
	}
	return next, lambda
}

// Lambda is the arithmetic mean of the potentials, summed in key order.
func Lambda(mu map[string]float64) float64 {
	sum := 0.0
	for _, k := range domain.Composition(mu).Species() {
		sum += mu[k]
	}
	return sum / float64(len(mu))
}

// Renormalize scales comp so its total equals target.
func Renormalize(comp domain.Composition, target float64) (domain.Composition, error) {
	current := comp.Total()
	if !(current > 0) {
		return nil, domain.NewError(domain.KindCalculationFailed, "iteration produced invalid composition")
	}

	scale := target / current
	next := make(domain.Composition, len(comp))
	for k, v := range comp {
		next[k] = v * scale
	}
	return next, nil
}
