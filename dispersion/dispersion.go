// Package dispersion implements C5: Gaussian plume and heavy-gas box
// dispersion, model selection by Richardson number, and grid construction.
// Per-time-step grid rows are computed by a data-parallel worker pool, in
// the spirit of the teacher's Calculations(calculators ...CellManipulator)
// goroutine-per-GOMAXPROCS fan-out, generalized here with errgroup so a
// single row failure (a non-finite value) cancels the remaining work.
package dispersion

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sublyime/hcme"
	"github.com/sublyime/hcme/atmosphere"
)

// sigmaYCoeff and sigmaZCoeff implement the Pasquill-Gifford-Briggs rural
// dispersion coefficients referenced in the glossary.
func sigmaYCoeff(c hcme.PasquillClass) float64 {
	switch c {
	case hcme.PasquillA:
		return 0.22
	case hcme.PasquillB:
		return 0.16
	case hcme.PasquillC:
		return 0.11
	case hcme.PasquillD:
		return 0.08
	case hcme.PasquillE:
		return 0.06
	case hcme.PasquillF:
		return 0.04
	default:
		return 0.08
	}
}

// SigmaY returns the lateral plume spread [m] at downwind distance x [m].
func SigmaY(c hcme.PasquillClass, x float64) float64 {
	if x <= 0 {
		return 0
	}
	k := sigmaYCoeff(c)
	return k * x * math.Pow(1+1e-4*x, -0.5)
}

// SigmaZ returns the vertical plume spread [m] at downwind distance x [m].
func SigmaZ(c hcme.PasquillClass, x float64) float64 {
	if x <= 0 {
		return 0
	}
	switch c {
	case hcme.PasquillA:
		return 0.20 * x
	case hcme.PasquillB:
		return 0.12 * x
	case hcme.PasquillC:
		return 0.08 * x * math.Pow(1+0.0002*x, -0.5)
	case hcme.PasquillD:
		return 0.06 * x * math.Pow(1+0.0015*x, -0.5)
	case hcme.PasquillE:
		return 0.03 * x * math.Pow(1+0.0003*x, -1)
	case hcme.PasquillF:
		return 0.016 * x * math.Pow(1+0.0003*x, -1)
	default:
		return 0.06 * x * math.Pow(1+0.0015*x, -0.5)
	}
}

// BriggsPlumeRise computes Δh_plume, comparing buoyant and momentum rise and
// returning the larger, per spec.md §4.5.2.
func BriggsPlumeRise(fb, x, u float64, stable bool, stabilityParamS float64, fm float64) float64 {
	var dhBuoyant float64
	if fb > 0 {
		if stable && stabilityParamS > 0 {
			dhBuoyant = 2.6 * math.Pow(fb/(u*stabilityParamS), 1.0/3.0)
		} else {
			dhBuoyant = 1.6 * math.Pow(fb, 1.0/3.0) * math.Pow(x, 2.0/3.0) / u
		}
	}
	var dhMomentum float64
	if fm > 0 {
		dhMomentum = 3 * math.Pow(fm, 1.0/4.0) / u
	}
	if dhMomentum > dhBuoyant {
		return dhMomentum
	}
	return dhBuoyant
}

// StabilityParameter returns s = (g/T)*(dTheta/dz) for the Briggs stable
// plume-rise branch. dThetaDz is the potential temperature gradient
// [K/m]; the classic stable-atmosphere default is 0.02 K/m absent a
// measured profile.
func StabilityParameter(temperatureK, dThetaDz float64) float64 {
	return (9.80665 / temperatureK) * dThetaDz
}

const imageTermCutoff = 1e-6

// GaussianConcentration evaluates the steady-state Gaussian plume equation
// of spec.md §4.5.2 at one (x,y,z) point, with optional mixing-height
// reflection and depletion/decay multipliers. mixingHeightM <= 0 means no
// lid. Returns concentration in the same mass units as q (kg/s in, kg/m^3
// out for kg/s).
func GaussianConcentration(q, x, y, z, effectiveHeightM, sigmaY, sigmaZ, u, mixingHeightM float64, decayMultiplier float64) float64 {
	if x <= 0 || u <= 0 || sigmaY <= 0 || sigmaZ <= 0 {
		return 0
	}
	crosswind := math.Exp(-y*y/(2*sigmaY*sigmaY))

	if mixingHeightM > 0 && sigmaZ > 1.6*mixingHeightM {
		c := q / (math.Sqrt(2*math.Pi) * sigmaY * u * mixingHeightM) * crosswind
		return c * decayMultiplier
	}

	vertical := math.Exp(-(z-effectiveHeightM)*(z-effectiveHeightM)/(2*sigmaZ*sigmaZ)) +
		math.Exp(-(z+effectiveHeightM)*(z+effectiveHeightM)/(2*sigmaZ*sigmaZ))

	if mixingHeightM > 0 {
		centerline := q / (2 * math.Pi * sigmaY * sigmaZ * u)
		for n := 1; ; n++ {
			zi := mixingHeightM
			up := math.Exp(-(z-2*float64(n)*zi-effectiveHeightM)*(z-2*float64(n)*zi-effectiveHeightM) / (2 * sigmaZ * sigmaZ))
			down := math.Exp(-(z+2*float64(n)*zi+effectiveHeightM)*(z+2*float64(n)*zi+effectiveHeightM) / (2 * sigmaZ * sigmaZ))
			term := up + down
			if term/centerline < imageTermCutoff && n > 1 {
				break
			}
			vertical += term
			if n > 50 {
				break
			}
		}
	}

	c := q / (2 * math.Pi * sigmaY * sigmaZ * u) * crosswind * vertical
	return c * decayMultiplier
}

// HeavyGasState is the uniform-cylinder cloud state of spec.md §4.5.3.
type HeavyGasState struct {
	MassKg      float64
	RadiusM     float64
	HeightM     float64
	TemperatureK float64
	DensityKgM3 float64
	CenterXM    float64
}

// StepHeavyGas advances a HeavyGasState by dt using the entrainment and
// spreading relations of spec.md §4.5.3.
func StepHeavyGas(s HeavyGasState, ambientDensity, ambientTempK, uStar, windSpeed, gPrime float64, dt float64) HeavyGasState {
	const ke = 1.0
	dR := ke * math.Sqrt(math.Max(gPrime*s.HeightM, 0)) * dt
	areaTop := math.Pi * s.RadiusM * s.RadiusM
	areaEdge := 2 * math.Pi * s.RadiusM * s.HeightM

	ri := atmosphere.RichardsonNumber(gPrime, s.HeightM, uStar)
	alphaTop, alphaEdge := entrainmentCoefficients(ri)

	dM := (ambientDensity * (alphaTop*uStar*areaTop + alphaEdge*windSpeed*areaEdge)) * dt

	next := s
	next.RadiusM = s.RadiusM + dR
	next.MassKg = s.MassKg + dM
	volume := math.Pi * next.RadiusM * next.RadiusM * s.HeightM
	if volume > 0 {
		next.DensityKgM3 = next.MassKg / volume
	}
	next.HeightM = s.HeightM * (s.RadiusM * s.RadiusM) / (next.RadiusM * next.RadiusM + 1e-9)
	next.CenterXM = s.CenterXM + windSpeed*dt

	mixFrac := dM / (s.MassKg + dM + 1e-9)
	next.TemperatureK = s.TemperatureK*(1-mixFrac) + ambientTempK*mixFrac
	return next
}

// entrainmentCoefficients returns Richardson-number-dependent top and edge
// entrainment coefficients; both approach their neutral values as Ri falls.
func entrainmentCoefficients(ri float64) (alphaTop, alphaEdge float64) {
	if ri < 0 {
		ri = 0
	}
	alphaTop = 0.6 / (1 + ri)
	alphaEdge = 0.2 / (1 + 0.2*ri)
	return
}

// IsNeutrallyBuoyant reports whether a heavy-gas cloud has relaxed enough
// to transition back to Gaussian dispersion, per the spec's fixed
// criteria: Ri < Ri_crit and density excess below 1%.
func IsNeutrallyBuoyant(ri, riCrit, cloudDensity, ambientDensity float64) bool {
	if ambientDensity <= 0 {
		return false
	}
	excess := cloudDensity/ambientDensity - 1
	return ri < riCrit && excess < 0.01
}

// RiCrit returns the Richardson-number threshold for heavy-gas selection,
// per spec.md §4.5.1: 2 for jet-like sources, 50 for pool sources.
func RiCrit(isJet bool) float64 {
	if isJet {
		return 2
	}
	return 50
}

// GridSpec describes the rectilinear scenario-local grid of spec.md §4.5.4.
type GridSpec struct {
	ResolutionM  float64
	MaxDownwindM float64
	MaxCrosswindM float64
	NT           int
}

// BuildGrid computes a DispersionGrid by evaluating concentration(frame, x,
// y) at every point of spec's rectilinear grid, fanning the per-time-step
// rows out across a worker pool. Points below 1e-12 (in the units of q)
// are discarded, per spec.md §4.5.4.
func BuildGrid(ctx context.Context, spec GridSpec, frames []hcme.ReleaseFrame, concentration func(frameIdx int, x, y, z float64) (float64, float64, float64, float64)) (*hcme.DispersionGrid, error) {
	delta := spec.ResolutionM
	if delta <= 0 {
		delta = 10
	}
	nx := int(spec.MaxDownwindM/delta) + 1
	ny := 2*int(spec.MaxCrosswindM/delta) + 1
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}

	rows := make([][]hcme.GridCell, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for fi := range frames {
		fi := fi
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			cells := make([]hcme.GridCell, 0, nx*ny)
			for ix := 0; ix < nx; ix++ {
				x := float64(ix) * delta
				for iy := 0; iy < ny; iy++ {
					y := float64(iy-ny/2) * delta
					c, sigY, sigZ, plumeH := concentration(fi, x, y, 0)
					if math.IsNaN(c) || math.IsInf(c, 0) {
						return hcme.NewNumericalError("dispersion grid evaluation")
					}
					if c < 1e-12 {
						continue
					}
					cells = append(cells, hcme.GridCell{
						TimeStep:          frames[fi].TimeStep,
						XM:                x,
						YM:                y,
						ConcentrationMgM3: c,
						SigmaYM:           sigY,
						SigmaZM:           sigZ,
						PlumeHeightM:      plumeH,
					})
				}
			}
			rows[fi] = cells
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grid := &hcme.DispersionGrid{NT: len(frames), NX: nx, NY: ny, NZ: 1}
	for _, row := range rows {
		grid.Cells = append(grid.Cells, row...)
	}
	return grid, nil
}
