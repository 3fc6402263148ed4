package domain

import "sort"

// Composition maps a species identifier to its molar amount.
type Composition map[string]float64

// Species returns the species identifiers in sorted order.
// Every computation walks the composition in this order so results are reproducible.
func (c Composition) Species() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total returns the sum of all molar amounts.
func (c Composition) Total() float64 {
	total := 0.0
	for _, k := range c.Species() {
		total += c[k]
	}
	return total
}

// Clone returns an independent copy. A nil composition clones to an empty one.
func (c Composition) Clone() Composition {
	out := make(Composition, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// MoleFractions returns x_i = n_i / total. All fractions are zero when total <= 0.
func (c Composition) MoleFractions() map[string]float64 {
	total := c.Total()
	x := make(map[string]float64, len(c))
	for k, v := range c {
		if total > 0 {
			x[k] = v / total
		} else {
			x[k] = 0
		}
	}
	return x
}

// MaterialState represents a snapshot of a material stream.
type MaterialState struct {
	// Name is a descriptive label. It does not need to be unique.
	Name string `json:"name" mapstructure:"name"`

	// Composition holds the molar amount of each species.
	Composition Composition `json:"composition" mapstructure:"composition"`

	// Temperature in K.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// Pressure in Pa.
	Pressure float64 `json:"pressure" mapstructure:"pressure"`
}

// NewMaterialState creates an empty stream at standard conditions.
func NewMaterialState(name string) MaterialState {
	return MaterialState{
		Name:        name,
		Composition: make(Composition),
		Temperature: DefaultTemperature,
		Pressure:    DefaultPressure,
	}
}

// Clone returns a deep copy so the caller can mutate it freely.
func (s MaterialState) Clone() MaterialState {
	s.Composition = s.Composition.Clone()
	return s
}

// TotalMoles is a shorthand for s.Composition.Total().
func (s MaterialState) TotalMoles() float64 {
	return s.Composition.Total()
}
