package hcme

import "time"

// PasquillClass is the Pasquill-Gifford atmospheric stability class.
type PasquillClass int

const (
	PasquillUnknown PasquillClass = iota
	PasquillA
	PasquillB
	PasquillC
	PasquillD
	PasquillE
	PasquillF
)

// String renders the class as its conventional single letter.
func (p PasquillClass) String() string {
	switch p {
	case PasquillA:
		return "A"
	case PasquillB:
		return "B"
	case PasquillC:
		return "C"
	case PasquillD:
		return "D"
	case PasquillE:
		return "E"
	case PasquillF:
		return "F"
	default:
		return "unknown"
	}
}

// WeatherSnapshot is the immutable atmospheric state used for one run.
// Either PasquillClassHint is set directly, or enough fields are present for
// C3 to derive it (WindSpeedMS plus one of SolarRadiationWM2/CloudCoverFrac,
// plus ObservedAt for a day/night determination).
type WeatherSnapshot struct {
	WindSpeedMS      float64 // at ReferenceHeightM, >= 0
	WindDirectionDeg float64 // direction wind is blowing FROM, [0,360)
	TemperatureK     float64
	PressurePa       float64
	HumidityFrac     float64 // [0,1]
	CloudCoverFrac   float64 // [0,1]

	// SolarRadiationWM2 is optional; when present it takes priority over
	// CloudCoverFrac for insolation-class determination.
	SolarRadiationWM2 *float64

	ObservedAt time.Time

	// PasquillClassHint, if non-zero, is used directly and the Turner-method
	// derivation in C3 is skipped.
	PasquillClassHint PasquillClass
}
