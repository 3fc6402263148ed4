package domain

// Defaults applied to a freshly constructed unit operation and to new streams.
const (
	// DefaultTemperature is the standard reference temperature in K.
	DefaultTemperature = 298.15

	// DefaultPressure is the standard atmosphere in Pa.
	DefaultPressure = 101325.0
)
