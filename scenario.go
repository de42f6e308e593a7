package hcme

// SourceGeometry is the sum type of the four ways a Scenario can describe
// its release. Exactly one of the embedded pointers is non-nil; Kind
// reports which.
type SourceGeometry struct {
	Direct   *DirectSource
	Puddle   *PuddleSource
	Tank     *TankSource
	Pipeline *PipelineSource
}

// SourceKind enumerates the source geometry variants.
type SourceKind int

const (
	// SourceUnknown marks a SourceGeometry with no variant set.
	SourceUnknown SourceKind = iota
	SourceDirect
	SourcePuddle
	SourceTank
	SourcePipeline
)

// Kind reports which variant of SourceGeometry is populated.
func (g SourceGeometry) Kind() SourceKind {
	switch {
	case g.Direct != nil:
		return SourceDirect
	case g.Puddle != nil:
		return SourcePuddle
	case g.Tank != nil:
		return SourceTank
	case g.Pipeline != nil:
		return SourcePipeline
	default:
		return SourceUnknown
	}
}

// DirectSource is a constant-rate release of a given area and exit velocity.
type DirectSource struct {
	RateKgS    float64
	AreaM2     float64
	VelocityMS float64
}

// SurfaceType affects the Brighton mass-transfer coefficient used for
// puddle evaporation.
type SurfaceType int

const (
	SurfaceOpenCountry SurfaceType = iota
	SurfaceUrbanForest
	SurfaceOpenWater
	SurfaceConcrete
)

// PuddleSource is a liquid pool evaporating from a bounded area.
type PuddleSource struct {
	AreaM2      float64
	DepthM      float64
	TemperatureK float64
	Surface     SurfaceType
}

// TankPhaseHint lets the caller pre-select which discharge branch applies;
// if unset, the solver infers it from hole height vs. liquid level and
// tank pressure vs. chemical vapor pressure.
type TankPhaseHint int

const (
	TankPhaseAuto TankPhaseHint = iota
	TankPhaseGas
	TankPhaseLiquid
	TankPhaseTwoPhase
)

// TankSource is a pressurized or atmospheric vessel discharging through a
// hole of known area and height above the tank floor.
type TankSource struct {
	VolumeM3     float64
	PressurePa   float64
	TemperatureK float64
	LevelM       float64 // liquid level above the tank floor
	HoleAreaM2   float64
	HoleHeightM  float64 // hole elevation above the tank floor
	DischargeCd  float64 // discharge coefficient; 0 means use the default 0.61
	Phase        TankPhaseHint
}

// PipelineSource is a ruptured pressurized pipe discharging via Wilson
// double-exponential decay.
type PipelineSource struct {
	LengthM      float64
	DiameterM    float64
	PressurePa   float64
	TemperatureK float64
	HoleAreaM2   float64
}

// GeoPoint is a WGS-84 geodetic point with optional elevation above sea
// level, in metres.
type GeoPoint struct {
	Lat, Lon float64
	ElevM    float64
}

// Scenario is the immutable description of a release event.
type Scenario struct {
	Source          SourceGeometry
	ReleaseHeightM  float64
	Location        GeoPoint
	ReferenceHeightM float64 // default 10 m if zero
	DurationS       float64

	// FireType and VCE select an alternative pipeline (C7/C8) instead of
	// dispersion (C5). Zero values mean "plain dispersion scenario".
	FireType FireType
	VCE      *VCEParameters
}

// FireType enumerates the thermal-radiation source models of C7.
type FireType int

const (
	FireNone FireType = iota
	FireBLEVEFireball
	FireJet
	FirePool
	FireFlash
)

// VCEParameters supplies the extra inputs the blast engine (C8) needs
// beyond the Scenario/Chemical/Weather already present: congestion and
// confinement describe the release environment, and CloudMassKg/VaporFraction
// describe the flammable cloud at ignition, as derived from the dispersion
// or source-strength stages.
type VCEParameters struct {
	CloudMassKg    float64
	VaporFraction  float64 // fraction of CloudMassKg that is vapor
	Congestion     float64 // 0..1
	Confinement    float64 // 0..1
	IgnitionHeightM float64
}
