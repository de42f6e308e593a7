// Package contour implements C6: marching-squares extraction of closed
// iso-concentration polygons from a DispersionGrid, geodetic projection of
// the resulting rings, and radial zone search for thermal/blast effect
// thresholds.
package contour

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/google/uuid"

	"github.com/sublyime/hcme"
	"github.com/sublyime/hcme/units"
)

// denseField indexes a single time step's grid cells by (ix,iy) for
// marching-squares traversal, backed by a sparse.DenseArray the same way
// the teacher backs its own gridded fields. Missing cells (discarded below
// the 1e-12 threshold, or never evaluated) read as zero.
type denseField struct {
	resolution float64
	nx, ny     int
	yOffsetIdx int
	values     *sparse.DenseArray
}

func buildDenseField(grid *hcme.DispersionGrid, resolution float64, timeStep int) *denseField {
	f := &denseField{
		resolution: resolution,
		nx:         grid.NX,
		ny:         grid.NY,
		yOffsetIdx: grid.NY / 2,
		values:     sparse.ZerosDense(grid.NX+1, grid.NY+1),
	}
	for _, c := range grid.Cells {
		if c.TimeStep != timeStep {
			continue
		}
		ix := int(math.Round(c.XM / resolution))
		iy := int(math.Round(c.YM/resolution)) + f.yOffsetIdx
		if ix < 0 || ix > f.nx || iy < 0 || iy > f.ny {
			continue
		}
		f.values.Set(c.ConcentrationMgM3, ix, iy)
	}
	return f
}

func (f *denseField) at(ix, iy int) float64 {
	if ix < 0 || ix > f.nx || iy < 0 || iy > f.ny {
		return 0
	}
	return f.values.Get(ix, iy)
}

func (f *denseField) point(ix, iy int) geom.Point {
	return geom.Point{X: float64(ix) * f.resolution, Y: float64(iy-f.yOffsetIdx) * f.resolution}
}

func roundKey(p geom.Point) [2]int64 {
	const scale = 1e4
	return [2]int64{int64(math.Round(p.X * scale)), int64(math.Round(p.Y * scale))}
}

func interp(level float64, p1, p2 geom.Point, v1, v2 float64) geom.Point {
	if v1 == v2 {
		return geom.Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
	}
	t := (level - v1) / (v2 - v1)
	return geom.Point{X: p1.X + t*(p2.X-p1.X), Y: p1.Y + t*(p2.Y-p1.Y)}
}

// extractSegments runs marching squares over f at the given level and
// returns unordered line segments (pairs of points) along the boundary
// where the field crosses level.
func extractSegments(f *denseField, level float64) [][2]geom.Point {
	var segments [][2]geom.Point
	for ix := 0; ix < f.nx; ix++ {
		for iy := -f.yOffsetIdx; iy < f.ny-f.yOffsetIdx; iy++ {
			corners := [4]geom.Point{
				f.point(ix, iy+f.yOffsetIdx),
				f.point(ix+1, iy+f.yOffsetIdx),
				f.point(ix+1, iy+1+f.yOffsetIdx),
				f.point(ix, iy+1+f.yOffsetIdx),
			}
			values := [4]float64{
				f.at(ix, iy+f.yOffsetIdx),
				f.at(ix+1, iy+f.yOffsetIdx),
				f.at(ix+1, iy+1+f.yOffsetIdx),
				f.at(ix, iy+1+f.yOffsetIdx),
			}
			inside := [4]bool{}
			anyInside := false
			for i, v := range values {
				inside[i] = v >= level
				anyInside = anyInside || inside[i]
			}
			if !anyInside {
				continue
			}
			allInside := inside[0] && inside[1] && inside[2] && inside[3]
			if allInside {
				continue
			}
			segments = append(segments, cellSegments(level, corners, values, inside)...)
		}
	}
	return segments
}

// cellSegments finds maximal cyclic runs of "inside" corners and connects
// the entry/exit edge crossing points of each run, which is equivalent to
// the classical marching-squares 16-case table without needing to special
// case the ambiguous saddle configurations.
func cellSegments(level float64, corners [4]geom.Point, values [4]float64, inside [4]bool) [][2]geom.Point {
	var segs [][2]geom.Point
	visited := [4]bool{}
	for start := 0; start < 4; start++ {
		if !inside[start] || visited[start] || inside[(start+3)%4] {
			continue
		}
		end := start
		for inside[(end+1)%4] && !visited[(end+1)%4] {
			end = (end + 1) % 4
			visited[end] = true
		}
		visited[start] = true
		entryA, entryB := (start+3)%4, start
		exitA, exitB := end, (end+1)%4
		p1 := interp(level, corners[entryA], corners[entryB], values[entryA], values[entryB])
		p2 := interp(level, corners[exitA], corners[exitB], values[exitA], values[exitB])
		segs = append(segs, [2]geom.Point{p1, p2})
	}
	return segs
}

// stitchRings chains unordered segments into closed rings by matching
// coincident endpoints.
func stitchRings(segments [][2]geom.Point) []geom.Polygon {
	adj := map[[2]int64][]geom.Point{}
	keyOf := map[[2]int64]geom.Point{}
	for _, seg := range segments {
		k1, k2 := roundKey(seg[0]), roundKey(seg[1])
		keyOf[k1], keyOf[k2] = seg[0], seg[1]
		adj[k1] = append(adj[k1], seg[1])
		adj[k2] = append(adj[k2], seg[0])
	}
	visited := map[[2]int64]bool{}
	var rings []geom.Polygon
	for startKey := range adj {
		if visited[startKey] {
			continue
		}
		ring := []geom.Point{keyOf[startKey]}
		cur := startKey
		prev := [2]int64{}
		hasPrev := false
		for {
			visited[cur] = true
			neighbors := adj[cur]
			var next [2]int64
			found := false
			for _, n := range neighbors {
				nk := roundKey(n)
				if hasPrev && nk == prev {
					continue
				}
				if visited[nk] && nk != startKey {
					continue
				}
				next = nk
				found = true
				break
			}
			if !found {
				break
			}
			ring = append(ring, keyOf[next])
			prev, hasPrev = cur, true
			cur = next
			if cur == startKey {
				break
			}
		}
		if len(ring) >= 4 {
			ring = append(ring, ring[0])
			rings = append(rings, geom.Polygon{ring})
		}
	}
	return rings
}

func ringArea(ring []geom.Point) float64 {
	var a float64
	for i := 0; i < len(ring)-1; i++ {
		a += ring[i].X*ring[i+1].Y - ring[i+1].X*ring[i].Y
	}
	return a / 2
}

// ensureCounterClockwise reverses ring if its signed area is negative.
func ensureCounterClockwise(ring []geom.Point) []geom.Point {
	if ringArea(ring) < 0 {
		out := make([]geom.Point, len(ring))
		for i, p := range ring {
			out[len(ring)-1-i] = p
		}
		return out
	}
	return ring
}

// Extract builds the closed contour rings of grid at level for timeStep.
// Ring points start out in the grid's downwind/crosswind frame; they are
// rotated into local east/north by windDirectionDeg (the meteorological
// convention: direction the wind blows FROM) before being projected into
// geodetic coordinates around origin, per spec.md §4.6.
func Extract(grid *hcme.DispersionGrid, resolutionM float64, timeStep int, level float64, kind hcme.ContourType, label string, origin hcme.GeoPoint, windDirectionDeg float64) ([]hcme.Contour, error) {
	field := buildDenseField(grid, resolutionM, timeStep)
	segments := extractSegments(field, level)
	if len(segments) == 0 {
		return nil, nil
	}
	polys := stitchRings(segments)

	contours := make([]hcme.Contour, 0, len(polys))
	for _, poly := range polys {
		ring := ensureCounterClockwise(poly[0])
		areaM2 := math.Abs(ringArea(ring))
		ringLatLon := make([][2]float64, len(ring))
		maxDownwind := 0.0
		for i, p := range ring {
			xEast, yNorth := units.FromWindFrame(p.X, p.Y, windDirectionDeg)
			lat, lon := units.GeodeticOffset(origin.Lat, origin.Lon, xEast, yNorth)
			ringLatLon[i] = [2]float64{lat, lon}
			if p.X > maxDownwind {
				maxDownwind = p.X
			}
		}
		contours = append(contours, hcme.Contour{
			ID:                 uuid.New(),
			Level:              level,
			TimeStep:           timeStep,
			Type:               kind,
			Label:              label,
			RingLatLon:         ringLatLon,
			AreaM2:             areaM2,
			MaxDownwindExtentM: maxDownwind,
		})
	}
	sort.Slice(contours, func(i, j int) bool { return contours[i].AreaM2 > contours[j].AreaM2 })
	return contours, nil
}

// RadialZoneRadius binary-searches for the downwind radius r in [loM, hiM]
// at which effect(r) crosses threshold, per spec.md §4.6: bracket
// [Δ, x_max], tolerance 1 m. effect is assumed monotonically non-increasing
// in r (heat flux and overpressure both fall off with distance).
func RadialZoneRadius(effect func(r float64) float64, threshold, loM, hiM float64) (float64, error) {
	if loM >= hiM {
		return 0, fmt.Errorf("contour: invalid search bracket [%g, %g]", loM, hiM)
	}
	eLo, eHi := effect(loM), effect(hiM)
	if eLo < threshold {
		return loM, nil // even the innermost bracket point is below threshold
	}
	if eHi >= threshold {
		return hiM, nil // threshold never reached within the bracket
	}
	lo, hi := loM, hiM
	for hi-lo > 1.0 {
		mid := (lo + hi) / 2
		if effect(mid) >= threshold {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
