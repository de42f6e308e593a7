package hcme

import "github.com/google/uuid"

// Receptor is a point at which the engine evaluates exposure.
type Receptor struct {
	Name      string
	Location  GeoPoint
	HeightM   float64 // >= 0, above ground
}

// ImpactLevel is the severity classification assigned to a receptor by C9.
type ImpactLevel int

const (
	ImpactNoEffect ImpactLevel = iota
	ImpactMild
	ImpactNotable
	ImpactDisabling
	ImpactLifeThreatening
)

func (l ImpactLevel) String() string {
	switch l {
	case ImpactNoEffect:
		return "no_effect"
	case ImpactMild:
		return "mild"
	case ImpactNotable:
		return "notable"
	case ImpactDisabling:
		return "disabling"
	case ImpactLifeThreatening:
		return "life_threatening"
	default:
		return "unknown"
	}
}

// ReceptorExposure is the full dose/exposure summary computed for one
// receptor over the run.
type ReceptorExposure struct {
	ID uuid.UUID

	ReceptorName string

	PeakConcentrationMgM3 float64
	TimeWeightedAvgMgM3   float64
	ArrivalTimeS          float64
	PeakTimeS             float64
	DurationAboveThresholdS float64

	// ThermalDoseJM2S43 is the Stoll thermal dose (q")^(4/3) * t, if the
	// scenario produced a thermal field.
	ThermalDoseJM2S43 *float64

	// OverpressurePa and BlastArrivalTimeS are populated if the scenario
	// produced a blast field.
	OverpressurePa    *float64
	BlastArrivalTimeS *float64

	ImpactLevel ImpactLevel

	// GuidelineFractions maps a guideline label (e.g. "AEGL-1", "ERPG-2")
	// to peak/guideline for every guideline that was evaluated.
	GuidelineFractions map[string]float64
}
