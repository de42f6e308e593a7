package hcme

import "github.com/google/uuid"

// ReleaseFrame is one time-step of the source-strength solver's output: the
// state of the release at ElapsedTimeS after release start.
type ReleaseFrame struct {
	TimeStep      int
	ElapsedTimeS  float64
	MassFlowRateKgS float64 // >= 0
	TemperatureK  float64
	PressurePa    float64
	DensityKgM3   float64

	// VaporFraction is set for tank two-phase/flashing releases; nil means
	// not applicable (e.g. a single-phase gas or liquid release).
	VaporFraction *float64
}

// GridCell is one sample of the dispersion field at (TimeStep, X, Y, Z).
type GridCell struct {
	TimeStep int
	XM, YM, ZM float64 // scenario-local coordinates: x downwind, y crosswind, z above ground

	ConcentrationMgM3 float64
	SigmaYM           float64
	SigmaZM           float64
	PlumeHeightM      float64
	WindSpeedMS       float64
}

// DispersionGrid is the full space-time concentration field produced by C5.
type DispersionGrid struct {
	NT, NX, NY, NZ int
	Cells          []GridCell
}

// ContourType enumerates the concentration/effect levels a Contour can be
// drawn at.
type ContourType int

const (
	ContourCustom ContourType = iota
	ContourAEGL1
	ContourAEGL2
	ContourAEGL3
	ContourERPG1
	ContourERPG2
	ContourERPG3
	ContourIDLH
	ContourFlammable
)

// Contour is a single closed iso-concentration (or iso-effect) polygon at
// one time step, in geodetic coordinates.
type Contour struct {
	ID               uuid.UUID
	Level            float64
	TimeStep         int
	Type             ContourType
	Label            string
	RingLatLon       [][2]float64 // closed ring, counter-clockwise, [lat,lon] pairs
	AreaM2           float64
	MaxDownwindExtentM float64
}

// DamageCategory classifies a thermal or blast effect level for display.
type DamageCategory int

const (
	DamageNone DamageCategory = iota
	DamageLight
	DamageModerate
	DamageSevere
	DamageFatal
)

// ThermalFieldPoint is one (distance, angle) sample of incident heat flux.
type ThermalFieldPoint struct {
	DistanceM   float64
	AngleDeg    float64
	HeatFluxWM2 float64
	Damage      DamageCategory
	TimeToPainS      float64
	TimeTo2ndBurnS   float64
}

// BlastFieldPoint is one (distance, angle) sample of blast overpressure.
type BlastFieldPoint struct {
	DistanceM       float64
	AngleDeg        float64
	OverpressurePa  float64
	ArrivalTimeS    float64
	MachNumber      float64
	LethalityProb   float64
}

// ZoneRadius names one effect threshold and the downwind radius at which
// the thermal or blast effect falls to it, per spec.md §4.6's radial-zone
// search.
type ZoneRadius struct {
	Label     string
	Threshold float64
	RadiusM   float64
}

// ModelKind records which dispersion/consequence model was actually used
// for a run, for the diagnostics surface.
type ModelKind int

const (
	ModelGaussian ModelKind = iota
	ModelHeavyGas
	ModelThermal
	ModelBlast
)

func (m ModelKind) String() string {
	switch m {
	case ModelGaussian:
		return "gaussian"
	case ModelHeavyGas:
		return "heavy_gas"
	case ModelThermal:
		return "thermal"
	case ModelBlast:
		return "blast"
	default:
		return "unknown"
	}
}

// Diagnostics accumulates non-fatal information about a run.
type Diagnostics struct {
	Warnings    []string
	Uncertainty float64
}

// EngineResult is the output document produced by Compute. It exclusively
// owns its grids, contours, and exposures; every input to Compute was
// borrowed read-only.
type EngineResult struct {
	ID               uuid.UUID
	ModelSelected    ModelKind
	PasquillClass    PasquillClass
	FrictionVelocityMS float64
	MixingHeightM    float64

	ReleaseFrames []ReleaseFrame

	DispersionGrid *DispersionGrid
	Contours       []Contour

	ThermalField []ThermalFieldPoint
	BlastField   []BlastFieldPoint
	ZoneRadii    []ZoneRadius

	ReceptorExposures []ReceptorExposure

	Diagnostics Diagnostics
}
