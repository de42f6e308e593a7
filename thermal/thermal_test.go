package thermal

import (
	"math"
	"testing"
)

func TestFireballGeometryPropaneScale(t *testing.T) {
	fb := Fireball(10000)
	if math.Abs(fb.DiameterM-110.5) > 2 {
		t.Fatalf("expected diameter near 110.5 m (5.8*10000^0.32), got %v", fb.DiameterM)
	}
	if math.Abs(fb.DurationS-8.6) > 0.5 {
		t.Fatalf("expected duration near 8.6 s (0.45*10000^0.32), got %v", fb.DurationS)
	}
}

func TestSphereViewFactorBoundedAndLimits(t *testing.T) {
	r := 50.0
	atSurface := SphereViewFactor(r, r, 0, 0) // x=0 leaves only the vertical separation, so l==r: receiver on the sphere's surface directly below its center
	if atSurface != 1 {
		t.Fatalf("expected view factor 1 at or inside the sphere radius, got %v", atSurface)
	}
	near := SphereViewFactor(r, 0, r, 0) // l == r exactly
	if math.Abs(near-1) > 1e-9 {
		t.Fatalf("expected view factor ~1 at distance==radius, got %v", near)
	}
	far := SphereViewFactor(r, 0, 1e9, 0)
	if far >= 1e-6 {
		t.Fatalf("expected view factor near 0 at very large distance, got %v", far)
	}
	mid := SphereViewFactor(r, 0, 200, 0)
	if mid < 0 || mid > 1 {
		t.Fatalf("expected view factor in [0,1], got %v", mid)
	}
}

func TestSphereViewFactorDecreasesWithDistance(t *testing.T) {
	r := 50.0
	close := SphereViewFactor(r, 0, 100, 0)
	far := SphereViewFactor(r, 0, 500, 0)
	if far >= close {
		t.Fatalf("expected view factor to decrease with distance, close=%v far=%v", close, far)
	}
}

func TestThermalDoseMonotoneInFluxAndTime(t *testing.T) {
	d1 := ThermalDose(10000, 10)
	d2 := ThermalDose(20000, 10)
	if d2 <= d1 {
		t.Fatal("expected higher flux to produce higher dose")
	}
	d3 := ThermalDose(10000, 20)
	if d3 <= d1 {
		t.Fatal("expected longer duration to produce higher dose")
	}
}

func TestProbitToProbabilityMonotone(t *testing.T) {
	low := ProbitToProbability(2)
	mid := ProbitToProbability(5)
	high := ProbitToProbability(8)
	if !(low < mid && mid < high) {
		t.Fatalf("expected monotone increasing probability with probit, got %v %v %v", low, mid, high)
	}
	if math.Abs(mid-0.5) > 1e-9 {
		t.Fatalf("expected probit 5 to map to probability 0.5, got %v", mid)
	}
}

func TestPoolFireBurnRateSaturatesWithDiameter(t *testing.T) {
	small := PoolFire(0, 1, 0.05, 1.4, 1.2)
	large := PoolFire(0, 20, 0.05, 1.4, 1.2)
	if large.BurnRateKgM2S <= small.BurnRateKgM2S {
		t.Fatal("expected burn rate to increase toward its asymptote with diameter")
	}
	if large.BurnRateKgM2S > 0.05 {
		t.Fatalf("expected burn rate to stay below its asymptotic limit, got %v", large.BurnRateKgM2S)
	}
}
