// Package config loads reactor case files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/gibbs"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/equilibrium"
	"github.com/aretw0/gibbs/pkg/thermo"
	"github.com/drone/envsubst"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ModelSpec selects a thermodynamic model from the registry.
type ModelSpec struct {
	Name   string         `mapstructure:"name" json:"name"`
	Params map[string]any `mapstructure:"params" json:"params,omitempty"`
}

// Case describes one reactor run: feed, setpoints and model.
type Case struct {
	Name        string               `mapstructure:"name" json:"name"`
	Feed        domain.MaterialState `mapstructure:"feed" json:"feed"`
	Temperature float64              `mapstructure:"temperature" json:"temperature"`
	Pressure    float64              `mapstructure:"pressure" json:"pressure"`
	Model       ModelSpec            `mapstructure:"model" json:"model"`
	// Iterations overrides the solver iteration count when set.
	Iterations *int `mapstructure:"iterations" json:"iterations,omitempty"`
}

// Format identifies the encoding of a case file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Load reads a case file (YAML or JSON, by extension).
// ${VAR} references are expanded from the environment before parsing.
func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	format := FormatYAML
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = FormatJSON
	}

	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Parse decodes a case document. Omitted values take the standard defaults:
// feed named "Feed" at standard conditions, reactor at standard conditions,
// model molefraction.
func Parse(data []byte, format Format) (*Case, error) {
	expanded, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand variables: %w", err)
	}

	raw := map[string]any{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse case json: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse case yaml: %w", err)
		}
	}

	c := &Case{
		Feed:        domain.NewMaterialState("Feed"),
		Temperature: domain.DefaultTemperature,
		Pressure:    domain.DefaultPressure,
		Model:       ModelSpec{Name: thermo.MoleFractionName},
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid case: %w", err)
	}

	if c.Feed.Composition == nil {
		c.Feed.Composition = domain.Composition{}
	}
	return c, nil
}

// Options returns reactor options derived from the case.
func (c *Case) Options() []gibbs.Option {
	var opts []gibbs.Option
	if c.Name != "" {
		opts = append(opts, gibbs.WithName(c.Name))
	}
	if c.Iterations != nil {
		opts = append(opts, gibbs.WithSolverOptions(equilibrium.WithIterations(*c.Iterations)))
	}
	return opts
}

// Apply configures r with the case model, feed and setpoints.
// It does not initialize the reactor.
func (c *Case) Apply(r *gibbs.Reactor) error {
	if err := r.UseModel(c.Model.Name, c.Model.Params); err != nil {
		return domain.Wrap(domain.KindInvalidArgument, err)
	}
	r.SetFeed(c.Feed)
	r.SetTemperature(c.Temperature)
	r.SetPressure(c.Pressure)
	return nil
}
