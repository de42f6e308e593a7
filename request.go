package hcme

// ConcentrationLevel names one contour level the caller wants extracted.
type ConcentrationLevel struct {
	Value float64
	Units GuidelineUnit
	Label string
}

// ModelOverride forces C5's model selection instead of letting it derive
// from the Richardson-number criterion.
type ModelOverride int

const (
	ModelAuto ModelOverride = iota
	ModelOverrideGaussian
	ModelOverrideHeavyGas
)

// Options carries the tunable parameters of a run, all with documented
// defaults applied by DefaultOptions.
type Options struct {
	ModelOverride ModelOverride

	GridResolutionM  float64
	MaxDownwindM     float64
	MaxCrosswindM    float64
	TimeStepS        float64
	MaxTimeSteps     int

	ConcentrationLevels []ConcentrationLevel

	IncludeDepletion bool
	IncludeDecay     bool
	DecayConstant    float64

	ExposureWindowMin float64

	// Extrapolate, when true, allows ChemicalOutOfEnvelope lookups to
	// clamp to the nearest envelope bound instead of failing the run. A
	// clamped lookup does not add a warning to the result's diagnostics.
	Extrapolate bool
}

// DefaultOptions returns the documented option defaults from §6.
func DefaultOptions() Options {
	return Options{
		ModelOverride:     ModelAuto,
		GridResolutionM:   10.0,
		MaxDownwindM:      10000.0,
		MaxCrosswindM:     5000.0,
		TimeStepS:         60.0,
		MaxTimeSteps:      100,
		ExposureWindowMin: 60.0,
	}
}

// Request is the single input document to Compute.
type Request struct {
	Scenario    Scenario
	Weather     WeatherSnapshot
	Chemical    ChemicalProperties
	Toxicology  *ToxicologicalGuidelines
	Receptors   []Receptor
	Options     Options
}
