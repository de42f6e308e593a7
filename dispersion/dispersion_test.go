package dispersion

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/sublyime/hcme"
)

func TestGaussianConcentrationMatchesClosedFormAtCenterline(t *testing.T) {
	const q, u = 1.0, 5.0
	x := 1000.0
	sigY := SigmaY(hcme.PasquillD, x)
	sigZ := SigmaZ(hcme.PasquillD, x)

	got := GaussianConcentration(q, x, 0, 0, 0, sigY, sigZ, u, 0, 1)
	want := q / (math.Pi * sigY * sigZ * u)
	if !floats.EqualWithinAbsOrRel(got, want, 0, 1e-6) {
		t.Fatalf("centerline concentration mismatch: got %v want %v", got, want)
	}
}

func TestGaussianConcentrationLinearInQ(t *testing.T) {
	x, y, z, h := 500.0, 50.0, 0.0, 0.0
	sigY := SigmaY(hcme.PasquillD, x)
	sigZ := SigmaZ(hcme.PasquillD, x)
	c1 := GaussianConcentration(1.0, x, y, z, h, sigY, sigZ, 5, 0, 1)
	c2 := GaussianConcentration(2.0, x, y, z, h, sigY, sigZ, 5, 0, 1)
	if !floats.EqualWithinAbsOrRel(c2, 2*c1, 0, 1e-9) {
		t.Fatalf("expected doubling Q to double concentration: c1=%v c2=%v", c1, c2)
	}
}

func TestGaussianConcentrationZeroBeyondOrigin(t *testing.T) {
	if c := GaussianConcentration(1, 0, 0, 0, 0, 10, 10, 5, 0, 1); c != 0 {
		t.Fatalf("expected zero concentration at or behind the source, got %v", c)
	}
}

func TestSigmaYIncreasesAcrossInstabilityClasses(t *testing.T) {
	a := SigmaY(hcme.PasquillA, 1000)
	f := SigmaY(hcme.PasquillF, 1000)
	if a <= f {
		t.Fatalf("expected class A spread to exceed class F at same distance, a=%v f=%v", a, f)
	}
}

func TestRiCritDiffersJetVsPool(t *testing.T) {
	if RiCrit(true) >= RiCrit(false) {
		t.Fatalf("expected jet Ri_crit < pool Ri_crit")
	}
}

func TestIsNeutrallyBuoyantRequiresBothConditions(t *testing.T) {
	if IsNeutrallyBuoyant(100, 50, 1.0, 1.0) {
		t.Fatal("expected false when Ri exceeds Ri_crit")
	}
	if IsNeutrallyBuoyant(1, 50, 1.5, 1.0) {
		t.Fatal("expected false when density excess exceeds 1%")
	}
	if !IsNeutrallyBuoyant(1, 50, 1.005, 1.0) {
		t.Fatal("expected true when both conditions are satisfied")
	}
}

func TestBuildGridDiscardsBelowThreshold(t *testing.T) {
	frames := []hcme.ReleaseFrame{{TimeStep: 0, MassFlowRateKgS: 1}}
	spec := GridSpec{ResolutionM: 100, MaxDownwindM: 300, MaxCrosswindM: 100}
	grid, err := BuildGrid(context.Background(), spec, frames, func(_ int, x, y, z float64) (float64, float64, float64, float64) {
		if x <= 0 {
			return 0, 0, 0, 0
		}
		sigY := SigmaY(hcme.PasquillD, x)
		sigZ := SigmaZ(hcme.PasquillD, x)
		return GaussianConcentration(1, x, y, z, 0, sigY, sigZ, 5, 0, 1), sigY, sigZ, 0
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range grid.Cells {
		if c.ConcentrationMgM3 < 1e-12 {
			t.Fatalf("expected discarded low-concentration cells, found %v", c.ConcentrationMgM3)
		}
	}
}
