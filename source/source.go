// Package source implements C4, the source-strength solver: it turns a
// Scenario's source geometry into a time series of ReleaseFrames describing
// mass flow rate, temperature, pressure, and density at the point of
// release.
package source

import (
	"math"

	"github.com/sublyime/hcme"
	"github.com/sublyime/hcme/chemprop"
	"github.com/sublyime/hcme/units"
)

// Conditions carries the ambient state the solver needs beyond the
// scenario's own fields.
type Conditions struct {
	AmbientPressurePa float64
	AmbientTempK      float64
	WindSpeedMS       float64
}

// Solve returns the release-frame time series for sc's source geometry,
// sampled at dt-second intervals for at most maxSteps steps (or until the
// source is exhausted, whichever comes first). When extrapolate is true,
// chemical-property lookups outside their fitted envelope clamp to the
// nearest bound instead of failing the run, per spec.md §7.
func Solve(sc hcme.Scenario, chem *chemprop.Evaluator, cond Conditions, dt float64, maxSteps int, extrapolate bool) ([]hcme.ReleaseFrame, error) {
	if dt <= 0 {
		dt = 60
	}
	if maxSteps <= 0 {
		maxSteps = 100
	}
	switch sc.Source.Kind() {
	case hcme.SourceDirect:
		return solveDirect(*sc.Source.Direct, sc.DurationS, dt, maxSteps), nil
	case hcme.SourcePuddle:
		return solvePuddle(*sc.Source.Puddle, chem, cond, dt, maxSteps, extrapolate)
	case hcme.SourceTank:
		return solveTank(*sc.Source.Tank, chem, cond, dt, maxSteps, extrapolate)
	case hcme.SourcePipeline:
		return solvePipeline(*sc.Source.Pipeline, chem, cond, dt, maxSteps, extrapolate)
	default:
		return nil, hcme.NewInfeasibleSourceError("no source geometry specified")
	}
}

// evalChem evaluates prop at temperature t, consulting the envelope-aware
// EvaluateOrExtrapolate path and converting an out-of-range lookup into the
// engine's closed ChemicalOutOfEnvelope error, per spec.md §7.
func evalChem(chem *chemprop.Evaluator, prop chemprop.Property, t float64, extrapolate bool) (float64, error) {
	value, _, err := chem.EvaluateOrExtrapolate(prop, t, extrapolate)
	if err != nil {
		if _, ok := err.(*chemprop.OutOfRangeError); ok {
			return 0, hcme.NewChemicalOutOfEnvelopeError(prop.String(), t)
		}
		return 0, err
	}
	return value, nil
}

func solveDirect(d hcme.DirectSource, durationS, dt float64, maxSteps int) []hcme.ReleaseFrame {
	if durationS <= 0 {
		durationS = dt * float64(maxSteps)
	}
	n := int(math.Ceil(durationS / dt))
	if n > maxSteps {
		n = maxSteps
	}
	if n < 1 {
		n = 1
	}
	frames := make([]hcme.ReleaseFrame, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		rate := d.RateKgS
		if t >= durationS {
			rate = 0
		}
		frames = append(frames, hcme.ReleaseFrame{
			TimeStep:        i,
			ElapsedTimeS:    t,
			MassFlowRateKgS: rate,
		})
	}
	return frames
}

// groundHeatFluxWM2 approximates the conductive heat supply from the
// substrate into an evaporating puddle, by surface type.
func groundHeatFluxWM2(s hcme.SurfaceType) float64 {
	switch s {
	case hcme.SurfaceConcrete:
		return 500
	case hcme.SurfaceOpenWater:
		return 400
	case hcme.SurfaceUrbanForest:
		return 250
	default:
		return 300
	}
}

// brightonMassTransferCoefficient returns the Brighton (1985) mass-transfer
// coefficient [m/s] for a pool of characteristic length L at wind speed u.
func brightonMassTransferCoefficient(u, areaM2 float64) float64 {
	l := math.Sqrt(math.Max(areaM2, 1e-6))
	if u < 0.1 {
		u = 0.1
	}
	// k_m = 0.004 * u^0.78 * L^-0.11; no separate Schmidt-number factor is
	// applied, the constant 0.004 is used for every chemical.
	return 0.004 * math.Pow(u, 0.78) * math.Pow(l, -0.11)
}

// solvePuddle steps a bounded-area liquid pool's energy balance forward by
// Euler integration: ground conduction supplies heat, evaporation removes
// it, and the remaining liquid mass is monotonically non-increasing until
// the puddle runs dry.
func solvePuddle(p hcme.PuddleSource, chem *chemprop.Evaluator, cond Conditions, dt float64, maxSteps int, extrapolate bool) ([]hcme.ReleaseFrame, error) {
	rho0, err := evalChem(chem, chemprop.LiquidDensity, p.TemperatureK, extrapolate)
	if err != nil {
		return nil, err
	}
	mass := p.AreaM2 * p.DepthM * rho0
	if mass <= 0 {
		return nil, hcme.NewInfeasibleSourceError("puddle has zero initial mass")
	}
	temperature := p.TemperatureK
	qGround := groundHeatFluxWM2(p.Surface)

	frames := make([]hcme.ReleaseFrame, 0, maxSteps)
	for i := 0; i < maxSteps; i++ {
		t := float64(i) * dt
		if mass <= 0 {
			frames = append(frames, hcme.ReleaseFrame{TimeStep: i, ElapsedTimeS: t, TemperatureK: temperature})
			break
		}

		pv, err := evalChem(chem, chemprop.VaporPressure, temperature, extrapolate)
		if err != nil {
			return nil, err
		}
		hvap, err := evalChem(chem, chemprop.HeatOfVaporization, temperature, extrapolate)
		if err != nil {
			return nil, err
		}
		cp, err := evalChem(chem, chemprop.HeatCapacity, temperature, extrapolate)
		if err != nil {
			return nil, err
		}

		boiling := pv >= cond.AmbientPressurePa
		var rate float64
		if boiling {
			// Boiling onset: heat-flux-limited evaporation; Psat cannot
			// exceed ambient pressure so T holds at the boiling point.
			rate = qGround * p.AreaM2 / hvap
		} else {
			mw := chem.Chem.MolecularWeightGMol / 1000.0
			cs := pv * mw / (units.GasConstant * temperature)
			km := brightonMassTransferCoefficient(cond.WindSpeedMS, p.AreaM2)
			rate = km * p.AreaM2 * cs
		}
		if rate*dt > mass {
			rate = mass / dt
		}

		frames = append(frames, hcme.ReleaseFrame{
			TimeStep:        i,
			ElapsedTimeS:    t,
			MassFlowRateKgS: rate,
			TemperatureK:    temperature,
			PressurePa:      cond.AmbientPressurePa,
			DensityKgM3:     rho0,
		})

		mass -= rate * dt
		if !boiling {
			dTdt := (qGround*p.AreaM2 - rate*hvap) / (mass*cp + 1e-9)
			temperature += dTdt * dt
		}
		if len(frames) >= maxSteps {
			break
		}
	}
	return frames, nil
}

func solveTank(tk hcme.TankSource, chem *chemprop.Evaluator, cond Conditions, dt float64, maxSteps int, extrapolate bool) ([]hcme.ReleaseFrame, error) {
	if tk.PressurePa <= cond.AmbientPressurePa {
		return nil, hcme.NewInfeasibleSourceError("tank pressure at or below ambient")
	}
	cd := tk.DischargeCd
	if cd <= 0 {
		cd = 0.61
	}
	phase := tk.Phase
	if phase == hcme.TankPhaseAuto {
		pv, err := evalChem(chem, chemprop.VaporPressure, tk.TemperatureK, extrapolate)
		if err != nil {
			return nil, err
		}
		switch {
		case tk.HoleHeightM < tk.LevelM && tk.PressurePa < pv:
			phase = hcme.TankPhaseTwoPhase
		case tk.HoleHeightM < tk.LevelM:
			phase = hcme.TankPhaseLiquid
		default:
			phase = hcme.TankPhaseGas
		}
	}

	var mdot0, volume0 float64
	switch phase {
	case hcme.TankPhaseGas:
		gasDensity, err := evalChem(chem, chemprop.GasDensity, tk.TemperatureK, extrapolate)
		if err != nil {
			return nil, err
		}
		gamma := units.GammaAir
		rc := math.Pow(2/(gamma+1), gamma/(gamma-1))
		ratio := cond.AmbientPressurePa / tk.PressurePa
		if ratio <= rc {
			mdot0 = cd * tk.HoleAreaM2 * tk.PressurePa * math.Sqrt(gamma/(units.GasConstant*tk.TemperatureK)*
				math.Pow(2/(gamma+1), (gamma+1)/(gamma-1)))
		} else {
			mdot0 = cd * tk.HoleAreaM2 * math.Sqrt(2*gasDensity*tk.PressurePa*(gamma/(gamma-1))*
				(math.Pow(ratio, 2/gamma)-math.Pow(ratio, (gamma+1)/gamma)))
		}
		volume0 = tk.VolumeM3

	case hcme.TankPhaseLiquid:
		rhoL, err := evalChem(chem, chemprop.LiquidDensity, tk.TemperatureK, extrapolate)
		if err != nil {
			return nil, err
		}
		head := math.Max(tk.LevelM-tk.HoleHeightM, 0)
		dP := tk.PressurePa - cond.AmbientPressurePa + rhoL*units.G*head
		if dP <= 0 {
			return nil, hcme.NewInfeasibleSourceError("liquid head and tank pressure do not exceed ambient")
		}
		mdot0 = cd * tk.HoleAreaM2 * math.Sqrt(2*rhoL*dP)
		volume0 = tk.VolumeM3

	case hcme.TankPhaseTwoPhase:
		rhoL, err := evalChem(chem, chemprop.LiquidDensity, tk.TemperatureK, extrapolate)
		if err != nil {
			return nil, err
		}
		rhoG, err := evalChem(chem, chemprop.GasDensity, tk.TemperatureK, extrapolate)
		if err != nil {
			return nil, err
		}
		// Homogeneous equilibrium model: a 50/50 liquid/vapor mixture by
		// mass is a reasonable default when no flash fraction is known.
		rhoMix := 1 / (0.5/rhoL + 0.5/rhoG)
		mdot0 = 0.9 * cd * tk.HoleAreaM2 * math.Sqrt(rhoMix*math.Max(tk.PressurePa-cond.AmbientPressurePa, 0))
		volume0 = tk.VolumeM3

	default:
		return nil, hcme.NewInfeasibleSourceError("unrecognized tank phase")
	}

	if mdot0 <= 0 {
		return nil, hcme.NewInfeasibleSourceError("computed zero or negative initial discharge rate")
	}

	// Quasi-static blowdown: treat the discharge rate as decaying
	// exponentially with a time constant set by the tank's total
	// inventory, consistent across all three phases.
	var invMass float64
	switch phase {
	case hcme.TankPhaseGas:
		gasDensity, _ := evalChem(chem, chemprop.GasDensity, tk.TemperatureK, extrapolate)
		invMass = volume0 * gasDensity
	case hcme.TankPhaseLiquid:
		rhoL, _ := evalChem(chem, chemprop.LiquidDensity, tk.TemperatureK, extrapolate)
		invMass = volume0 * rhoL
	case hcme.TankPhaseTwoPhase:
		rhoL, _ := evalChem(chem, chemprop.LiquidDensity, tk.TemperatureK, extrapolate)
		rhoG, _ := evalChem(chem, chemprop.GasDensity, tk.TemperatureK, extrapolate)
		invMass = volume0 / (0.5/rhoL + 0.5/rhoG)
	}
	tau := invMass / mdot0

	frames := make([]hcme.ReleaseFrame, 0, maxSteps)
	var vaporFrac *float64
	if phase == hcme.TankPhaseTwoPhase {
		v := 0.5
		vaporFrac = &v
	}
	for i := 0; i < maxSteps; i++ {
		t := float64(i) * dt
		decay := math.Exp(-t / tau)
		rate := mdot0 * decay
		p := cond.AmbientPressurePa + (tk.PressurePa-cond.AmbientPressurePa)*decay
		frames = append(frames, hcme.ReleaseFrame{
			TimeStep:        i,
			ElapsedTimeS:    t,
			MassFlowRateKgS: rate,
			TemperatureK:    tk.TemperatureK,
			PressurePa:      p,
			VaporFraction:   vaporFrac,
		})
		if rate < mdot0*1e-4 {
			break
		}
	}
	return frames, nil
}

// solvePipeline applies Wilson's (1979) double-exponential blowdown model:
// an initial fast decay from the acoustic wave transiting the break,
// followed by a slower decay as the line's total inventory depletes.
func solvePipeline(pl hcme.PipelineSource, chem *chemprop.Evaluator, cond Conditions, dt float64, maxSteps int, extrapolate bool) ([]hcme.ReleaseFrame, error) {
	if pl.PressurePa <= cond.AmbientPressurePa {
		return nil, hcme.NewInfeasibleSourceError("pipeline pressure at or below ambient")
	}
	gasDensity, err := evalChem(chem, chemprop.GasDensity, pl.TemperatureK, extrapolate)
	if err != nil {
		return nil, err
	}
	gamma := units.GammaAir
	rc := math.Pow(2/(gamma+1), gamma/(gamma-1))
	ratio := cond.AmbientPressurePa / pl.PressurePa
	var mdot0 float64
	if ratio <= rc {
		mdot0 = 0.61 * pl.HoleAreaM2 * pl.PressurePa * math.Sqrt(gamma/(units.GasConstant*pl.TemperatureK)*
			math.Pow(2/(gamma+1), (gamma+1)/(gamma-1)))
	} else {
		mdot0 = 0.61 * pl.HoleAreaM2 * math.Sqrt(2*gasDensity*pl.PressurePa*(gamma/(gamma-1))*
			(math.Pow(ratio, 2/gamma)-math.Pow(ratio, (gamma+1)/gamma)))
	}
	if mdot0 <= 0 {
		return nil, hcme.NewInfeasibleSourceError("computed zero or negative initial discharge rate")
	}

	aSound := units.SoundSpeed(pl.TemperatureK)
	beta := pl.LengthM / aSound
	alpha := 1 / (1 + 10*math.Sqrt(pl.HoleAreaM2/pl.DiameterM))

	frames := make([]hcme.ReleaseFrame, 0, maxSteps)
	for i := 0; i < maxSteps; i++ {
		t := float64(i) * dt
		frac := (1+alpha)*math.Exp(-t/beta) - alpha*math.Exp(-t/(alpha*beta))
		rate := mdot0 * frac
		if rate < 0 {
			rate = 0
		}
		frames = append(frames, hcme.ReleaseFrame{
			TimeStep:        i,
			ElapsedTimeS:    t,
			MassFlowRateKgS: rate,
			TemperatureK:    pl.TemperatureK,
			PressurePa:      cond.AmbientPressurePa + (pl.PressurePa-cond.AmbientPressurePa)*frac,
		})
		if rate < mdot0*1e-4 {
			break
		}
	}
	return frames, nil
}
