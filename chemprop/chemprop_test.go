package chemprop

import (
	"testing"

	"github.com/sublyime/hcme"
)

func testChem() hcme.ChemicalProperties {
	return hcme.ChemicalProperties{
		Name:                "chlorine",
		MolecularWeightGMol: 70.9,
		VaporPressurePa:     hcme.Polynomial{101325, 1200},
		LiquidDensityKgM3:   hcme.Polynomial{1560, -2.0},
		HeatCapacityJKgK:    hcme.Polynomial{480},
		Envelope:            hcme.PropertyRange{Min: 200, Max: 350},
	}
}

func TestEvaluateWithinEnvelope(t *testing.T) {
	e := NewEvaluator(testChem())
	v, err := e.Evaluate(VaporPressure, 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 101325.0 + 1200*250.0
	if v != want {
		t.Fatalf("expected %v, got %v", want, v)
	}
}

func TestEvaluateOutOfRange(t *testing.T) {
	e := NewEvaluator(testChem())
	_, err := e.Evaluate(VaporPressure, 500)
	if err == nil {
		t.Fatal("expected an out-of-range error")
	}
	if _, ok := err.(*OutOfRangeError); !ok {
		t.Fatalf("expected *OutOfRangeError, got %T", err)
	}
}

func TestEvaluateOrExtrapolateClampsAndWarns(t *testing.T) {
	e := NewEvaluator(testChem())
	v, clamped, err := e.EvaluateOrExtrapolate(LiquidDensity, 500, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clamped {
		t.Fatal("expected clamped=true for an out-of-range extrapolated lookup")
	}
	want := 1560.0 - 2.0*350.0
	if v != want {
		t.Fatalf("expected clamp to envelope max (350K), got %v want %v", v, want)
	}
}

func TestEvaluateOrExtrapolateFailsWithoutFlag(t *testing.T) {
	e := NewEvaluator(testChem())
	_, _, err := e.EvaluateOrExtrapolate(LiquidDensity, 500, false)
	if err == nil {
		t.Fatal("expected an error when extrapolate is false")
	}
}

func TestGasDensityIdealGasFallback(t *testing.T) {
	chem := testChem()
	chem.GasDensityKgM3 = nil
	e := NewEvaluator(chem)
	v, err := e.Evaluate(GasDensity, 298.15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v <= 0 {
		t.Fatalf("expected a positive ideal-gas density fallback, got %v", v)
	}
}

func TestActivityCoefficientDefaultsToOne(t *testing.T) {
	e := NewEvaluator(testChem())
	if v := e.ActivityCoefficient(0.3); v != 1 {
		t.Fatalf("expected 1 for a chemical with no activity coefficient, got %v", v)
	}
}

func TestSaturationConcentrationPositive(t *testing.T) {
	e := NewEvaluator(testChem())
	cs, err := e.SaturationConcentration(250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs <= 0 {
		t.Fatalf("expected a positive saturation concentration, got %v", cs)
	}
}
