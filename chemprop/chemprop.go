// Package chemprop evaluates temperature- (and, for aqueous solutions,
// mass-fraction-) dependent chemical properties: vapor pressure, density,
// heat capacity, and heat of vaporization. Each property is stored as a
// polynomial in T together with the temperature envelope of validity it was
// fit over; the polynomials do not take a mass fraction, which enters only
// through the optional linear activity coefficient. Queries outside the
// envelope report an *OutOfRangeError unless extrapolation is requested.
package chemprop

import (
	"context"
	"fmt"

	"github.com/ctessum/requestcache"

	"github.com/sublyime/hcme"
	"github.com/sublyime/hcme/internal/hash"
)

// Property names a queryable chemical property.
type Property int

const (
	VaporPressure Property = iota
	LiquidDensity
	GasDensity
	HeatCapacity
	HeatOfVaporization
)

func (p Property) String() string {
	switch p {
	case VaporPressure:
		return "vapor_pressure"
	case LiquidDensity:
		return "liquid_density"
	case GasDensity:
		return "gas_density"
	case HeatCapacity:
		return "heat_capacity"
	case HeatOfVaporization:
		return "heat_of_vaporization"
	default:
		return "unknown"
	}
}

// OutOfRangeError reports that T fell outside a property's stored
// envelope.
type OutOfRangeError struct {
	Property Property
	T        float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("chemprop: %s not in range at T=%g K", e.Property, e.T)
}

// Evaluator evaluates properties of a single ChemicalProperties record,
// memoizing repeated (property, T) lookups across a run the way
// sr.Reader.Source memoizes source-receptor matrix lookups: the same
// (chemical, property, T) triple is frequently requested once per grid
// column or receptor, so a small in-memory cache avoids re-evaluating the
// same polynomial thousands of times per run.
type Evaluator struct {
	Chem hcme.ChemicalProperties

	cache *requestcache.Cache
}

// NewEvaluator returns an Evaluator for chem, with its per-run memoization
// cache initialized.
func NewEvaluator(chem hcme.ChemicalProperties) *Evaluator {
	e := &Evaluator{Chem: chem}
	e.cache = requestcache.NewCache(e.process, 1, requestcache.Deduplicate(), requestcache.Memory(4096))
	return e
}

type propertyRequest struct {
	prop Property
	t    float64
}

func (e *Evaluator) process(_ context.Context, req interface{}) (interface{}, error) {
	r := req.(propertyRequest)
	return e.evaluate(r.prop, r.t)
}

// Evaluate returns the value of prop at temperature t [K], consulting the
// memoization cache first.
func (e *Evaluator) Evaluate(prop Property, t float64) (float64, error) {
	req := e.cache.NewRequest(context.Background(), propertyRequest{prop: prop, t: t},
		hash.Hash(propertyRequest{prop: prop, t: t}))
	result, err := req.Result()
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

func (e *Evaluator) evaluate(prop Property, t float64) (float64, error) {
	if !e.Chem.Envelope.Contains(t) {
		return 0, &OutOfRangeError{Property: prop, T: t}
	}
	var poly hcme.Polynomial
	switch prop {
	case VaporPressure:
		poly = e.Chem.VaporPressurePa
	case LiquidDensity:
		poly = e.Chem.LiquidDensityKgM3
	case GasDensity:
		poly = e.Chem.GasDensityKgM3
	case HeatCapacity:
		poly = e.Chem.HeatCapacityJKgK
	case HeatOfVaporization:
		poly = e.Chem.HeatOfVaporizationJKg
	default:
		return 0, fmt.Errorf("chemprop: unknown property %v", prop)
	}
	if len(poly) == 0 && prop == GasDensity {
		// Ideal-gas fallback: rho = p*MW/(R*T) at standard pressure.
		return 101325.0 * e.Chem.MolecularWeightGMol / 1000.0 / (8.314 * t), nil
	}
	return evalPoly(poly, t), nil
}

// EvaluateOrExtrapolate is like Evaluate but, when extrapolate is true and
// the lookup is out of range, clamps t to the nearest envelope bound instead
// of failing, returning (value, clamped).
func (e *Evaluator) EvaluateOrExtrapolate(prop Property, t float64, extrapolate bool) (value float64, clamped bool, err error) {
	value, err = e.Evaluate(prop, t)
	if err == nil {
		return value, false, nil
	}
	if !extrapolate {
		return 0, false, err
	}
	if _, ok := err.(*OutOfRangeError); !ok {
		return 0, false, err
	}
	clampedT := t
	if t < e.Chem.Envelope.Min {
		clampedT = e.Chem.Envelope.Min
	} else if t > e.Chem.Envelope.Max {
		clampedT = e.Chem.Envelope.Max
	}
	value, err = e.evaluate(prop, clampedT)
	return value, true, err
}

// ActivityCoefficient evaluates the optional linear-in-mass-fraction
// activity coefficient for aqueous solutions (HCl, NH3, HNO3, HF,
// SO3/oleum). Returns 1 (no correction) if the chemical has none defined.
func (e *Evaluator) ActivityCoefficient(massFraction float64) float64 {
	if e.Chem.ActivityCoefficient == nil {
		return 1
	}
	return e.Chem.ActivityCoefficient.Value(massFraction)
}

// SaturationConcentration returns the saturation mass concentration
// Cs = p_v(T)*MW/(R*T) used by the Brighton evaporation model, in kg/m^3.
func (e *Evaluator) SaturationConcentration(t float64) (float64, error) {
	pv, err := e.Evaluate(VaporPressure, t)
	if err != nil {
		return 0, err
	}
	mw := e.Chem.MolecularWeightGMol / 1000.0 // kg/mol
	return pv * mw / (8.314 * t), nil
}

func evalPoly(p hcme.Polynomial, x float64) float64 {
	var v, xp float64
	xp = 1
	for _, c := range p {
		v += c * xp
		xp *= x
	}
	return v
}
