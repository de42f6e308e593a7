// Package atmosphere implements C3: Pasquill-Gifford stability
// classification by the Turner method, the power-law wind profile,
// friction velocity, roughness length, and mixing-height estimation.
package atmosphere

import (
	"math"
	"time"

	"github.com/sublyime/hcme"
	"github.com/sublyime/hcme/units"
)

// insolationClass mirrors the Turner-method insolation categories.
type insolationClass int

const (
	insolationStrong insolationClass = iota
	insolationModerate
	insolationSlight
	insolationWeak // night: thin or broken overcast, or >=4/8 cloud
	insolationNone // night: >=4/8 cloud is "weak", <4/8 is full "none"
)

// isDaytime is a simple sunrise/sunset-free day/night split based on local
// hour, matching the Turner method's coarse day/night distinction when a
// true solar-elevation calculation isn't available.
func isDaytime(t time.Time) bool {
	h := t.Hour()
	return h >= 7 && h < 19
}

func classifyInsolation(solarWM2 *float64, cloudCoverFrac float64, day bool) insolationClass {
	if solarWM2 != nil {
		switch {
		case *solarWM2 > 600:
			return insolationStrong
		case *solarWM2 > 300:
			return insolationModerate
		case *solarWM2 > 0:
			return insolationSlight
		default:
			return insolationNone
		}
	}
	if day {
		switch {
		case cloudCoverFrac < 0.3:
			return insolationStrong
		case cloudCoverFrac < 0.6:
			return insolationModerate
		default:
			return insolationSlight
		}
	}
	// Night: the spec's Turner table keys night rows on cloud cover only.
	if cloudCoverFrac >= 0.5 {
		return insolationWeak
	}
	return insolationNone
}

// windBin buckets a wind speed [m/s] into the Turner-method bins.
func windBin(u float64) int {
	switch {
	case u < 2:
		return 0
	case u < 3:
		return 1
	case u < 5:
		return 2
	case u < 6:
		return 3
	default:
		return 4
	}
}

// dayTable[windBin][insolationClass] gives the Pasquill class for daytime.
// Columns: strong, moderate, slight.
var dayTable = [5][3]hcme.PasquillClass{
	{hcme.PasquillA, hcme.PasquillA, hcme.PasquillB},
	{hcme.PasquillA, hcme.PasquillB, hcme.PasquillC},
	{hcme.PasquillB, hcme.PasquillB, hcme.PasquillC},
	{hcme.PasquillC, hcme.PasquillC, hcme.PasquillD},
	{hcme.PasquillC, hcme.PasquillD, hcme.PasquillD},
}

// nightTable[windBin][insolationClass-weak/none] gives the Pasquill class
// at night. Columns: weak (>=4/8 cloud), none (<4/8 cloud). The wind bin <2
// is not defined at night by the Turner method and falls back to the 2-3
// bin ("ties resolve upward in wind speed, toward neutral" per spec.md
// §4.3).
var nightTable = [5][2]hcme.PasquillClass{
	{hcme.PasquillF, hcme.PasquillF}, // unused (wind <2), resolved to bin 1
	{hcme.PasquillE, hcme.PasquillF},
	{hcme.PasquillD, hcme.PasquillE},
	{hcme.PasquillD, hcme.PasquillD},
	{hcme.PasquillD, hcme.PasquillD},
}

// ClassifyPasquill implements the Turner method of spec.md §4.3. If w
// already carries a PasquillClassHint, it is returned unchanged.
func ClassifyPasquill(w hcme.WeatherSnapshot) hcme.PasquillClass {
	if w.PasquillClassHint != hcme.PasquillUnknown {
		return w.PasquillClassHint
	}
	day := isDaytime(w.ObservedAt)
	ins := classifyInsolation(w.SolarRadiationWM2, w.CloudCoverFrac, day)
	wb := windBin(w.WindSpeedMS)

	if day {
		col := int(ins)
		if col > 2 {
			col = 2 // missing data defaults to "slight", the most conservative daytime column
		}
		return dayTable[wb][col]
	}
	col := 0
	if ins == insolationNone {
		col = 1
	}
	if wb == 0 {
		// Ties resolve upward in wind speed, toward neutral.
		wb = 1
	}
	return nightTable[wb][col]
}

// windProfileExponent returns Briggs' power-law exponent n for a Pasquill
// class, per spec.md §4.3.
func windProfileExponent(c hcme.PasquillClass) float64 {
	switch c {
	case hcme.PasquillA:
		return 0.108
	case hcme.PasquillB:
		return 0.112
	case hcme.PasquillC:
		return 0.120
	case hcme.PasquillD:
		return 0.142
	case hcme.PasquillE:
		return 0.203
	case hcme.PasquillF:
		return 0.253
	default:
		return 0.142 // class D as a neutral fallback
	}
}

// WindSpeedAt returns u(z) = u_ref * (z/z_ref)^n using the power-law
// profile of spec.md §4.3.
func WindSpeedAt(uRef, zRef, z float64, class hcme.PasquillClass) float64 {
	if zRef <= 0 {
		zRef = 10
	}
	n := windProfileExponent(class)
	return uRef * math.Pow(z/zRef, n)
}

// RoughnessLength returns z0 [m] for a surface type, with the open-water
// case depending on the 10 m wind speed per spec.md §4.3.
func RoughnessLength(surface hcme.SurfaceType, u10 float64) float64 {
	switch surface {
	case hcme.SurfaceOpenCountry:
		return 0.03
	case hcme.SurfaceUrbanForest:
		return 1.0
	case hcme.SurfaceOpenWater:
		return 2.6e-6 * math.Pow(math.Max(u10, 0), 2.5)
	case hcme.SurfaceConcrete:
		return 0.005
	default:
		return 0.03
	}
}

// FrictionVelocity returns u* = kappa*u(z)/ln(z/z0).
func FrictionVelocity(uAtZ, z, z0 float64) float64 {
	if z0 <= 0 || z <= z0 {
		z0 = math.Min(z0, z/math.E) // guard against ln(<=1)
		if z0 <= 0 {
			z0 = 1e-4
		}
	}
	return units.VonKarman * uAtZ / math.Log(z/z0)
}

// MixingHeight estimates the boundary-layer mixing height [m] from
// Pasquill class and day/night, per spec.md §4.3. A caller with a measured
// vertical profile should override this with its own estimate.
func MixingHeight(class hcme.PasquillClass, day bool) float64 {
	if day {
		switch class {
		case hcme.PasquillA:
			return 2000
		case hcme.PasquillB:
			return 1500
		case hcme.PasquillC:
			return 1000
		case hcme.PasquillD:
			return 800
		default:
			return 600
		}
	}
	switch class {
	case hcme.PasquillE:
		return 400
	case hcme.PasquillF:
		return 200
	default:
		return 500
	}
}

// ReducedGravity returns g' = g*(rho_c - rho_a)/rho_a, used by the
// Richardson-number model-selection criterion of spec.md §4.5.1.
func ReducedGravity(rhoCloud, rhoAmbient float64) float64 {
	if rhoAmbient == 0 {
		return 0
	}
	return units.G * (rhoCloud - rhoAmbient) / rhoAmbient
}

// RichardsonNumber returns Ri = g'*Hc/u*^2, the criterion used to decide
// between Gaussian and heavy-gas dispersion.
func RichardsonNumber(gPrime, hc, ustar float64) float64 {
	if ustar == 0 {
		return math.Inf(1)
	}
	return gPrime * hc / (ustar * ustar)
}
