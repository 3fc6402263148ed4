// Package thermo provides named thermodynamic models for the reactor.
//
// Models are created by name from loosely typed parameters (as they come
// out of a YAML case file), so hosts can pick a property package without
// importing its concrete type.
package thermo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/gibbs/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Factory builds a model from its parameters. params may be nil.
type Factory func(params map[string]any) (ports.ThermoModel, error)

// Registry manages the available model factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// New looks up a factory by name and builds the model.
func (r *Registry) New(name string, params map[string]any) (ports.ThermoModel, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("thermodynamic model %q is not available", name)
	}

	model, err := fn(params)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", name, err)
	}
	return model, nil
}

// Names returns the registered model names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default holds the built-in models.
var Default = NewRegistry()

func init() {
	Default.Register(MoleFractionName, NewMoleFraction)
	Default.Register(IdealName, NewIdeal)
}

// Register adds a factory to the Default registry.
func Register(name string, fn Factory) { Default.Register(name, fn) }

// New builds a model from the Default registry.
func New(name string, params map[string]any) (ports.ThermoModel, error) {
	return Default.New(name, params)
}

// Names lists the models of the Default registry.
func Names() []string { return Default.Names() }

// decodeParams maps loosely typed parameters onto out.
// Unknown keys are rejected so typos in case files surface early.
func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
