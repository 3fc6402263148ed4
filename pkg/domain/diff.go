package domain

// SpeciesDelta is the change of one species between two streams.
type SpeciesDelta struct {
	Species string  `json:"species"`
	Before  float64 `json:"before"`
	After   float64 `json:"after"`
}

// Change returns After - Before.
func (d SpeciesDelta) Change() float64 {
	return d.After - d.Before
}

// StreamDiff represents the changes between two material states.
// It is designed to be rendered in reports and serialized for clients.
type StreamDiff struct {
	Temperature *[2]float64    `json:"temperature,omitempty"`
	Pressure    *[2]float64    `json:"pressure,omitempty"`
	Species     []SpeciesDelta `json:"species,omitempty"`
}

// Diff calculates the difference between two streams.
// Species present in only one side count as zero on the other.
// Species are listed in sorted order; unchanged species are omitted.
func Diff(before, after MaterialState) StreamDiff {
	var diff StreamDiff

	if before.Temperature != after.Temperature {
		diff.Temperature = &[2]float64{before.Temperature, after.Temperature}
	}
	if before.Pressure != after.Pressure {
		diff.Pressure = &[2]float64{before.Pressure, after.Pressure}
	}

	union := before.Composition.Clone()
	for k := range after.Composition {
		if _, ok := union[k]; !ok {
			union[k] = 0
		}
	}

	for _, k := range union.Species() {
		b, a := before.Composition[k], after.Composition[k]
		if b != a {
			diff.Species = append(diff.Species, SpeciesDelta{Species: k, Before: b, After: a})
		}
	}

	return diff
}

// IsEmpty checks if the diff contains any changes.
func (d StreamDiff) IsEmpty() bool {
	return d.Temperature == nil && d.Pressure == nil && len(d.Species) == 0
}
