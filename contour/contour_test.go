package contour

import (
	"math"
	"testing"

	"github.com/sublyime/hcme"
)

// radialGrid builds a synthetic DispersionGrid whose concentration decays
// radially from the origin, for testing contour extraction independent of
// the dispersion package.
func radialGrid(resolution float64, nx, ny int) *hcme.DispersionGrid {
	grid := &hcme.DispersionGrid{NT: 1, NX: nx, NY: ny, NZ: 1}
	half := ny / 2
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			x := float64(ix) * resolution
			y := float64(iy-half) * resolution
			r := math.Hypot(x, y)
			c := 100 * math.Exp(-r/200)
			if c < 1e-12 {
				continue
			}
			grid.Cells = append(grid.Cells, hcme.GridCell{TimeStep: 0, XM: x, YM: y, ConcentrationMgM3: c})
		}
	}
	return grid
}

func TestExtractAreaMonotoneInLevel(t *testing.T) {
	grid := radialGrid(20, 60, 121)
	low, err := Extract(grid, 20, 0, 5, hcme.ContourCustom, "low", hcme.GeoPoint{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := Extract(grid, 20, 0, 50, hcme.ContourCustom, "high", hcme.GeoPoint{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(low) == 0 || len(high) == 0 {
		t.Fatal("expected contours at both levels")
	}
	if high[0].AreaM2 >= low[0].AreaM2 {
		t.Fatalf("expected higher-concentration contour to have smaller area: low=%v high=%v",
			low[0].AreaM2, high[0].AreaM2)
	}
}

func TestRadialZoneRadiusFindsCrossing(t *testing.T) {
	effect := func(r float64) float64 { return 1000 / (r + 1) }
	r, err := RadialZoneRadius(effect, 10, 1, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := effect(r)
	if math.Abs(got-10) > 0.5 {
		t.Fatalf("expected effect(r) close to threshold 10, got %v at r=%v", got, r)
	}
}

func TestRadialZoneRadiusBelowThresholdEverywhere(t *testing.T) {
	effect := func(r float64) float64 { return 1 }
	r, err := RadialZoneRadius(effect, 10, 1, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != 1 {
		t.Fatalf("expected innermost bracket when threshold unreachable, got %v", r)
	}
}
