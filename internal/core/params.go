package core

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
)

// ParameterControl describes a tunable a unit exposes to the fullscreen
// control strip. Step and bounds are interpreted based on the type.
type ParameterControl struct {
	Key   string
	Label string
	Type  ParamType

	Step float64

	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// ParameterControlsProvider is implemented by units with adjustable
// parameters.
type ParameterControlsProvider interface {
	ParameterControls() []ParameterControl
}

// IntParameterSetter lets the control strip update integer parameters.
// SetIntParameter reports whether the value was accepted.
type IntParameterSetter interface {
	SetIntParameter(key string, value int) bool
}

// FloatParameterSetter lets the control strip update floating point
// parameters.
type FloatParameterSetter interface {
	SetFloatParameter(key string, value float64) bool
}

// IntParameter reads an integer parameter back for display.
type IntParameter interface {
	IntParameter(key string) (int, bool)
}

// FloatParameter reads a float parameter back for display.
type FloatParameter interface {
	FloatParameter(key string) (float64, bool)
}
