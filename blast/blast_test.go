package blast

import (
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/sublyime/hcme"
)

func TestTNTEquivalentMassWithinVCEBounds(t *testing.T) {
	flammable := FlammableMass(500, 1.0)
	mTNT, eta := TNTEquivalentMass(flammable, 46e6, hcme.ReactivityClass(3), 0.3, 0.2)
	if eta < 0.1 || eta > 0.25 {
		t.Fatalf("expected efficiency in [0.1,0.25], got %v", eta)
	}
	if mTNT < 50 || mTNT > 180 {
		t.Fatalf("expected M_TNT in [50,180] kg, got %v", mTNT)
	}
}

func TestTNTEquivalentMassEfficiencyCapped(t *testing.T) {
	_, eta := TNTEquivalentMass(1000, 46e6, hcme.ReactivityClass(4), 5, 5)
	if eta > 0.5 {
		t.Fatalf("expected efficiency capped at 0.5, got %v", eta)
	}
}

func TestOverpressureContinuousAtBreakpoints(t *testing.T) {
	const pamb = 101325.0
	const eps = 1e-4
	lowBelow := Overpressure(kbLowZ-eps, pamb)
	lowAbove := Overpressure(kbLowZ+eps, pamb)
	if !floats.EqualWithinAbsOrRel(lowAbove, lowBelow, 0, 0.05) {
		t.Fatalf("expected <5%% gap at Z=%v breakpoint: below=%v above=%v", kbLowZ, lowBelow, lowAbove)
	}

	highBelow := Overpressure(kbHighZ-eps, pamb)
	highAbove := Overpressure(kbHighZ+eps, pamb)
	if !floats.EqualWithinAbsOrRel(highAbove, highBelow, 0, 0.05) {
		t.Fatalf("expected <5%% gap at Z=%v breakpoint: below=%v above=%v", kbHighZ, highBelow, highAbove)
	}
}

func TestOverpressureMonotoneDecreasing(t *testing.T) {
	const pamb = 101325.0
	prev := Overpressure(0.5, pamb)
	for _, z := range []float64{1, 2, 5, 10, 20, 40, 80, 200} {
		cur := Overpressure(z, pamb)
		if cur >= prev {
			t.Fatalf("expected monotonically decreasing overpressure, z=%v prev=%v cur=%v", z, prev, cur)
		}
		prev = cur
	}
}

func TestMachNumberExceedsOneForPositiveOverpressure(t *testing.T) {
	if m := MachNumber(50000, 101325); m <= 1 {
		t.Fatalf("expected supersonic shock Mach number, got %v", m)
	}
}

func TestLethalityProbitIncreasesWithOverpressure(t *testing.T) {
	low := LethalityProbit(10000)
	high := LethalityProbit(100000)
	if high <= low {
		t.Fatal("expected lethality probit to increase with overpressure")
	}
}

func TestProbitToProbabilityBounded(t *testing.T) {
	p := ProbitToProbability(LethalityProbit(200000))
	if p < 0 || p > 1 {
		t.Fatalf("expected probability in [0,1], got %v", p)
	}
}
