package units

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestPPMRoundTrip(t *testing.T) {
	// Invariant 4: ppm<->mg/m3 conversion is an involution to 1e-9 relative.
	mw := 78.11 // benzene
	for _, ppm := range []float64{0.1, 1, 10, 500} {
		mgm3 := PPMToMgM3(ppm, mw, 0, 0)
		back := MgM3ToPPM(mgm3, mw, 0, 0)
		if !floats.EqualWithinAbsOrRel(back, ppm, 0, 1e-9) {
			t.Errorf("PPM round trip for %v: got %v, want %v", ppm, back, ppm)
		}
	}
}

func TestHaversineIdentical(t *testing.T) {
	// Invariant 5: Haversine distance between identical points is 0.
	d := Haversine(44.9, -93.2, 44.9, -93.2)
	if d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestHaversineAntipode(t *testing.T) {
	// Invariant 5: antipodal points are separated by pi*R_earth, within 1 m.
	d := Haversine(10, 20, -10, -160)
	want := math.Pi * EarthRadiusM
	if math.Abs(d-want) > 1 {
		t.Errorf("antipode distance = %v, want %v +- 1m", d, want)
	}
}

func TestWrapAngleDeg(t *testing.T) {
	cases := map[float64]float64{
		0:   0,
		359: 359,
		360: 0,
		-1:  359,
		720: 0,
		-90: 270,
	}
	for in, want := range cases {
		if got := WrapAngleDeg(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("WrapAngleDeg(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestLocalOffsetRoundTrip(t *testing.T) {
	originLat, originLon := 40.0, -90.0
	lat, lon := 40.05, -89.92
	x, y := LocalOffset(originLat, originLon, lat, lon)
	backLat, backLon := GeodeticOffset(originLat, originLon, x, y)
	if math.Abs(backLat-lat) > 1e-9 || math.Abs(backLon-lon) > 1e-9 {
		t.Errorf("round trip mismatch: got (%v,%v), want (%v,%v)", backLat, backLon, lat, lon)
	}
}

func TestToWindFrameRoundTrip(t *testing.T) {
	for _, wind := range []float64{0, 45, 90, 180, 225, 270, 359} {
		xEast, yNorth := 120.0, -35.0
		downwind, crosswind := ToWindFrame(xEast, yNorth, wind)
		backX, backY := FromWindFrame(downwind, crosswind, wind)
		if math.Abs(backX-xEast) > 1e-9 || math.Abs(backY-yNorth) > 1e-9 {
			t.Errorf("wind frame round trip at wind=%v: got (%v,%v), want (%v,%v)", wind, backX, backY, xEast, yNorth)
		}
	}
}

func TestToWindFramePointsDownwindPositiveX(t *testing.T) {
	// A wind blowing FROM the west (270 deg) travels toward the east, so a
	// point due east of the source should land on the positive downwind axis.
	downwind, crosswind := ToWindFrame(100, 0, 270)
	if downwind < 99 {
		t.Errorf("expected point east of source to be downwind for a westerly wind, got downwind=%v", downwind)
	}
	if math.Abs(crosswind) > 1e-6 {
		t.Errorf("expected zero crosswind component, got %v", crosswind)
	}
}
