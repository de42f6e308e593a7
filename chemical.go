package hcme

// PropertyRange describes the valid (min, max) domain of an independent
// variable (usually temperature in kelvin, sometimes mass fraction) over
// which a ChemicalProperties polynomial is considered valid. Outside this
// range, chemprop evaluators return a *chemprop.OutOfRangeError, which the
// source solver reports as an ErrChemicalOutOfEnvelope EngineError.
type PropertyRange struct {
	Min, Max float64
}

// Contains reports whether v lies within the range, inclusive.
func (r PropertyRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Polynomial is a set of coefficients c0 + c1*x + c2*x^2 + ... evaluated by
// chemprop.Evaluate.
type Polynomial []float64

// ReactivityClass is the NFPA-style reactivity index used by the blast
// engine's TNT-efficiency lookup, 1 (stable) through 6 (detonable).
type ReactivityClass int

// ChemicalProperties holds the physical/thermodynamic data needed to
// evaluate a chemical's behavior across the engine. Polynomials are
// evaluated in kelvin (and, where noted, mass fraction for aqueous
// solutions); values outside Envelope are invalid.
type ChemicalProperties struct {
	Name             string
	MolecularWeightGMol float64

	VaporPressurePa  Polynomial // p_v(T) in Pa
	LiquidDensityKgM3 Polynomial // rho_liq(T)
	GasDensityKgM3   Polynomial // rho_gas(T), ideal-gas fallback if empty
	HeatCapacityJKgK Polynomial // cp(T)
	HeatOfVaporizationJKg Polynomial // dH_vap(T)

	Envelope PropertyRange // valid T range, kelvin

	// ActivityCoefficient is a linear-in-mass-fraction correction used for
	// aqueous solutions of acids/bases (HCl, NH3, HNO3, HF, SO3/oleum).
	// Nil means the chemical is modelled as pure.
	ActivityCoefficient *LinearActivity

	BoilingPointK float64

	LowerFlammableLimitVolFrac float64
	UpperFlammableLimitVolFrac float64
	HeatOfCombustionJKg        float64
	Reactivity                 ReactivityClass

	// HeavyGas marks chemicals whose vapor is denser than air at release
	// conditions, making them eligible for the heavy-gas dispersion model.
	HeavyGas bool
}

// LinearActivity models activity coefficient as a0 + a1*massFraction.
type LinearActivity struct {
	A0, A1 float64
}

// Value evaluates the linear activity coefficient at the given mass
// fraction.
func (l LinearActivity) Value(massFraction float64) float64 {
	return l.A0 + l.A1*massFraction
}

// GuidelineDuration is one of the fixed exposure durations that AEGL/ERPG
// guidelines are tabulated at.
type GuidelineDuration int

const (
	Duration10Min GuidelineDuration = 10
	Duration30Min GuidelineDuration = 30
	Duration60Min GuidelineDuration = 60
	Duration240Min GuidelineDuration = 240
	Duration480Min GuidelineDuration = 480
)

// DurationBuckets lists the tabulated AEGL durations in ascending order.
var DurationBuckets = []GuidelineDuration{
	Duration10Min, Duration30Min, Duration60Min, Duration240Min, Duration480Min,
}

// GuidelineUnit is the unit a toxicological guideline value is expressed in.
type GuidelineUnit int

const (
	UnitMgM3 GuidelineUnit = iota
	UnitPPM
)

// ToxicologicalGuidelines holds the optional exposure guideline values used
// by the receptor evaluator (C9) to classify impact severity. All fields are
// optional; missing guidelines simply aren't checked.
type ToxicologicalGuidelines struct {
	Unit GuidelineUnit

	AEGL1 map[GuidelineDuration]float64
	AEGL2 map[GuidelineDuration]float64
	AEGL3 map[GuidelineDuration]float64

	// ERPG is defined at 60 minutes only.
	ERPG1, ERPG2, ERPG3 float64

	// PAC mirrors AEGL/ERPG when a chemical lacks either (PAC-1/2/3 are
	// analogues at the same severities).
	PAC1, PAC2, PAC3 float64

	IDLH float64

	PEL_TWA float64
	TLV_TWA float64
}
