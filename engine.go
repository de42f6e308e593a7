package hcme

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/sublyime/hcme/atmosphere"
	"github.com/sublyime/hcme/blast"
	"github.com/sublyime/hcme/chemprop"
	"github.com/sublyime/hcme/contour"
	"github.com/sublyime/hcme/dispersion"
	"github.com/sublyime/hcme/internal/diagnostics"
	"github.com/sublyime/hcme/receptor"
	"github.com/sublyime/hcme/source"
	"github.com/sublyime/hcme/thermal"
	"github.com/sublyime/hcme/units"
)

// Compute is the engine's single programmatic entry point, per spec.md
// §6: validate(req) → stability(C3) → release_frames(C4) → (fire: C7 |
// vce: C8 | dispersion: C5) → contours(C6) → receptor_exposures(C9) →
// EngineResult. sink receives non-fatal diagnostic events as the run
// proceeds; it may be nil.
func Compute(ctx context.Context, req Request, sink diagnostics.Sink) (*EngineResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	opts := req.Options
	if opts.TimeStepS == 0 {
		opts = DefaultOptions()
		opts.ModelOverride = req.Options.ModelOverride
	}

	var warnings []string
	warn := func(stage, msg string) {
		warnings = append(warnings, msg)
		diagnostics.Emit(sink, diagnostics.Event{Level: diagnostics.Warning, Stage: stage, Message: msg})
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	refHeight := req.Scenario.ReferenceHeightM
	if refHeight <= 0 {
		refHeight = 10
	}
	pasquill := atmosphere.ClassifyPasquill(req.Weather)
	surface := SurfaceOpenCountry
	if req.Scenario.Source.Kind() == SourcePuddle {
		surface = req.Scenario.Source.Puddle.Surface
	}
	z0 := atmosphere.RoughnessLength(surface, req.Weather.WindSpeedMS)
	uAtRef := req.Weather.WindSpeedMS
	ustar := atmosphere.FrictionVelocity(uAtRef, refHeight, z0)
	day := req.Weather.ObservedAt.Hour() >= 7 && req.Weather.ObservedAt.Hour() < 19
	mixingHeight := atmosphere.MixingHeight(pasquill, day)

	chem := chemprop.NewEvaluator(req.Chemical)

	cond := source.Conditions{
		AmbientPressurePa: req.Weather.PressurePa,
		AmbientTempK:      req.Weather.TemperatureK,
		WindSpeedMS:       req.Weather.WindSpeedMS,
	}
	if cond.AmbientPressurePa == 0 {
		cond.AmbientPressurePa = units.StandardPressurePa
	}

	frames, err := source.Solve(req.Scenario, chem, cond, opts.TimeStepS, opts.MaxTimeSteps, opts.Extrapolate)
	if err != nil {
		return nil, err
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	result := &EngineResult{
		ID:                 uuid.New(),
		PasquillClass:      pasquill,
		FrictionVelocityMS: ustar,
		MixingHeightM:      mixingHeight,
		ReleaseFrames:      frames,
	}

	switch {
	case req.Scenario.FireType != FireNone:
		result.ModelSelected = ModelThermal
		field, zones, exposures, err := computeThermal(req, frames, opts)
		if err != nil {
			return nil, err
		}
		result.ThermalField = field
		result.ZoneRadii = zones
		result.ReceptorExposures = exposures

	case req.Scenario.VCE != nil:
		result.ModelSelected = ModelBlast
		field, zones, exposures, err := computeBlast(req, opts, cond)
		if err != nil {
			return nil, err
		}
		result.BlastField = field
		result.ZoneRadii = zones
		result.ReceptorExposures = exposures

	default:
		modelKind, err := selectDispersionModel(req, chem, ustar, mixingHeight, opts.Extrapolate, warn)
		if err != nil {
			return nil, err
		}
		result.ModelSelected = modelKind

		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}

		grid, err := buildDispersionGrid(ctx, req, frames, opts, pasquill, uAtRef, refHeight, mixingHeight)
		if err != nil {
			return nil, err
		}
		result.DispersionGrid = grid

		contours, err := extractContours(grid, req, opts)
		if err != nil {
			return nil, err
		}
		result.Contours = contours

		result.ReceptorExposures = evaluateDispersionReceptors(req, grid, frames, opts)
	}

	result.Diagnostics = Diagnostics{Warnings: warnings}
	return result, nil
}

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return NewCancelledError()
	default:
		return nil
	}
}

func validate(req Request) error {
	if req.Scenario.Source.Kind() == SourceUnknown {
		return &InvalidInputError{Field: "scenario.source", Reason: "no source geometry specified"}
	}
	if req.Chemical.MolecularWeightGMol <= 0 {
		return &InvalidInputError{Field: "chemical.molecular_weight_g_mol", Reason: "must be positive"}
	}
	if req.Weather.WindSpeedMS < 0 {
		return &InvalidInputError{Field: "weather.wind_speed_ms", Reason: "must be non-negative"}
	}
	return nil
}

func selectDispersionModel(req Request, chem *chemprop.Evaluator, ustar, hc float64, extrapolate bool, warn func(stage, msg string)) (ModelKind, error) {
	switch req.Options.ModelOverride {
	case ModelOverrideGaussian:
		return ModelGaussian, nil
	case ModelOverrideHeavyGas:
		return ModelHeavyGas, nil
	}
	if !req.Chemical.HeavyGas {
		return ModelGaussian, nil
	}
	rhoAmbient := req.Weather.PressurePa / (units.RAir * req.Weather.TemperatureK)
	rhoGas, _, err := chem.EvaluateOrExtrapolate(chemprop.GasDensity, req.Weather.TemperatureK, extrapolate)
	if err != nil {
		warn("model_selection", "gas density unavailable for heavy-gas check, using Gaussian")
		return ModelGaussian, nil
	}
	gPrime := atmosphere.ReducedGravity(rhoGas, rhoAmbient)
	ri := atmosphere.RichardsonNumber(gPrime, hc, ustar)
	isJet := req.Scenario.Source.Kind() == SourceDirect
	riCrit := dispersion.RiCrit(isJet)
	if ri > riCrit {
		return ModelHeavyGas, nil
	}
	return ModelGaussian, nil
}

func buildDispersionGrid(ctx context.Context, req Request, frames []ReleaseFrame, opts Options, pasquill PasquillClass, uRef, refHeight, mixingHeight float64) (*DispersionGrid, error) {
	spec := dispersion.GridSpec{
		ResolutionM:   opts.GridResolutionM,
		MaxDownwindM:  opts.MaxDownwindM,
		MaxCrosswindM: opts.MaxCrosswindM,
	}
	decay := 1.0
	eval := func(frameIdx int, x, y, z float64) (float64, float64, float64, float64) {
		f := frames[frameIdx]
		sigY := dispersion.SigmaY(pasquill, x)
		sigZ := dispersion.SigmaZ(pasquill, x)
		u := atmosphere.WindSpeedAt(uRef, refHeight, math.Max(z, 0.1), pasquill)
		h := req.Scenario.ReleaseHeightM
		d := decay
		if opts.IncludeDecay && opts.DecayConstant > 0 {
			d = math.Exp(-opts.DecayConstant * f.ElapsedTimeS)
		}
		c := dispersion.GaussianConcentration(f.MassFlowRateKgS*1e6, x, y, z, h, sigY, sigZ, u, mixingHeight, d)
		return c, sigY, sigZ, h
	}
	return dispersion.BuildGrid(ctx, spec, frames, eval)
}

func extractContours(grid *DispersionGrid, req Request, opts Options) ([]Contour, error) {
	var out []Contour
	for _, lvl := range opts.ConcentrationLevels {
		valueMgM3 := lvl.Value
		if lvl.Units == UnitPPM {
			valueMgM3 = units.PPMToMgM3(lvl.Value, req.Chemical.MolecularWeightGMol, req.Weather.TemperatureK, req.Weather.PressurePa)
		}
		for ts := 0; ts < grid.NT; ts++ {
			cs, err := contour.Extract(grid, opts.GridResolutionM, ts, valueMgM3, ContourCustom, lvl.Label, req.Scenario.Location, req.Weather.WindDirectionDeg)
			if err != nil {
				return nil, err
			}
			out = append(out, cs...)
		}
	}
	return out, nil
}

func nearestSampler(grid *DispersionGrid, resolutionM float64) receptor.Sampler {
	index := map[[3]int]float64{}
	half := grid.NY / 2
	for _, c := range grid.Cells {
		ix := int(math.Round(c.XM / resolutionM))
		iy := int(math.Round(c.YM/resolutionM)) + half
		index[[3]int{c.TimeStep, ix, iy}] = c.ConcentrationMgM3
	}
	return func(timeStep int, x, y, z float64) float64 {
		ix := int(math.Round(x / resolutionM))
		iy := int(math.Round(y/resolutionM)) + half
		return index[[3]int{timeStep, ix, iy}]
	}
}

func evaluateDispersionReceptors(req Request, grid *DispersionGrid, frames []ReleaseFrame, opts Options) []ReceptorExposure {
	sampler := nearestSampler(grid, opts.GridResolutionM)
	out := make([]ReceptorExposure, 0, len(req.Receptors))
	for _, r := range req.Receptors {
		xEast, yNorth := units.LocalOffset(req.Scenario.Location.Lat, req.Scenario.Location.Lon, r.Location.Lat, r.Location.Lon)
		downwind, crosswind := units.ToWindFrame(xEast, yNorth, req.Weather.WindDirectionDeg)
		out = append(out, receptor.Evaluate(r, downwind, crosswind, sampler, frames, req.Toxicology, opts.ExposureWindowMin))
	}
	return out
}

// thermalZoneThresholds are the standard consequence-modeling heat-flux
// bands used to report radial hazard zones: sustained pain, potential
// fatality to an unprotected person, and significant equipment damage.
var thermalZoneThresholds = []struct {
	label string
	wm2   float64
}{
	{"pain", 4700},
	{"potential_fatality", 12500},
	{"significant_damage", 37500},
}

func computeThermal(req Request, frames []ReleaseFrame, opts Options) ([]ThermalFieldPoint, []ZoneRadius, []ReceptorExposure, error) {
	var totalMass float64
	for i, f := range frames {
		if i == 0 {
			continue
		}
		dt := f.ElapsedTimeS - frames[i-1].ElapsedTimeS
		totalMass += f.MassFlowRateKgS * dt
	}
	if totalMass <= 0 {
		totalMass = 1
	}

	var sepWM2, hCentre, radiusM float64
	switch req.Scenario.FireType {
	case FireBLEVEFireball:
		fb := thermal.Fireball(totalMass)
		sepWM2, hCentre, radiusM = fb.SEPWM2, fb.HeightM, fb.DiameterM/2
	case FirePool:
		area := 100.0
		if req.Scenario.Source.Kind() == SourcePuddle {
			area = req.Scenario.Source.Puddle.AreaM2
		}
		pf := thermal.PoolFire(area, 0, 0.08, 1.4, 1.2)
		sepWM2, hCentre, radiusM = 60000, pf.HeightM/2, pf.DiameterM/2
	case FireJet:
		qDotMW := totalMass * req.Chemical.HeatOfCombustionJKg / 1e6
		jf := thermal.JetFire(qDotMW, 20, 0.1)
		sepWM2, hCentre, radiusM = 150000, jf.LengthM/2, jf.DiameterM/2
	default: // FireFlash
		volume := totalMass / math.Max(req.Chemical.GasDensityKgM3.eval(req.Weather.TemperatureK), 1)
		ff := thermal.FlashFire(volume)
		sepWM2, hCentre, radiusM = ff.SEPWM2, ff.EquivalentRadiusM, ff.EquivalentRadiusM
	}

	const kAbs = 0.0001
	effect := func(d float64) float64 {
		vf := thermal.SphereViewFactor(radiusM, hCentre, d, 0)
		tau := thermal.AtmosphericTransmittance(kAbs, d)
		return thermal.IncidentHeatFlux(vf, sepWM2, tau, 1)
	}

	var field []ThermalFieldPoint
	distances := []float64{50, 100, 150, 200, 300, 500, 1000}
	for _, d := range distances {
		q := effect(d)
		field = append(field, ThermalFieldPoint{
			DistanceM:      d,
			HeatFluxWM2:    q,
			Damage:         thermal.Classify(q, 20),
			TimeToPainS:    thermal.TimeToPain(q),
			TimeTo2ndBurnS: thermal.TimeToSecondDegreeBurn(q),
		})
	}

	zones := make([]ZoneRadius, 0, len(thermalZoneThresholds))
	maxDownwind := opts.MaxDownwindM
	if maxDownwind <= 1 {
		maxDownwind = 1000
	}
	for _, z := range thermalZoneThresholds {
		r, err := contour.RadialZoneRadius(effect, z.wm2, 1, maxDownwind)
		if err != nil {
			return nil, nil, nil, err
		}
		zones = append(zones, ZoneRadius{Label: z.label, Threshold: z.wm2, RadiusM: r})
	}

	exposures := make([]ReceptorExposure, 0, len(req.Receptors))
	for _, r := range req.Receptors {
		x, y := units.LocalOffset(req.Scenario.Location.Lat, req.Scenario.Location.Lon, r.Location.Lat, r.Location.Lon)
		dist := math.Hypot(x, y)
		vf := thermal.SphereViewFactor(radiusM, hCentre, dist, r.HeightM)
		tau := thermal.AtmosphericTransmittance(kAbs, dist)
		q := thermal.IncidentHeatFlux(vf, sepWM2, tau, 1)
		dose := thermal.ThermalDose(q, 20)
		exposures = append(exposures, ReceptorExposure{
			ID:                uuid.New(),
			ReceptorName:      r.Name,
			ThermalDoseJM2S43: &dose,
			ImpactLevel:       damageToImpact(thermal.Classify(q, 20)),
		})
	}
	return field, zones, exposures, nil
}

// blastZoneThresholds are the standard overpressure bands reported as
// radial hazard zones, per the consequence-modeling convention of glass
// breakage, structural damage, and potential fatality.
var blastZoneThresholds = []struct {
	label string
	pa    float64
}{
	{"glass_breakage", 6900},
	{"structural_damage", 20700},
	{"potential_fatality", 55000},
}

func computeBlast(req Request, opts Options, cond source.Conditions) ([]BlastFieldPoint, []ZoneRadius, []ReceptorExposure, error) {
	vce := req.Scenario.VCE
	flammable := blast.FlammableMass(vce.CloudMassKg, 1.0)
	mTNT, _ := blast.TNTEquivalentMass(flammable, req.Chemical.HeatOfCombustionJKg, req.Chemical.Reactivity, vce.Congestion, vce.Confinement)
	soundSpeed := units.SoundSpeed(req.Weather.TemperatureK)

	effect := func(d float64) float64 {
		return blast.OverpressureAt(d, mTNT, cond.AmbientPressurePa, vce.IgnitionHeightM, 0)
	}

	var field []BlastFieldPoint
	distances := []float64{25, 50, 100, 150, 200, 300, 500}
	for _, d := range distances {
		dp := effect(d)
		mach := blast.MachNumber(dp, cond.AmbientPressurePa)
		arrival := blast.ArrivalTime(d, mTNT, cond.AmbientPressurePa, soundSpeed, 20)
		lethality := blast.ProbitToProbability(blast.LethalityProbit(dp))
		field = append(field, BlastFieldPoint{
			DistanceM:      d,
			OverpressurePa: dp,
			ArrivalTimeS:   arrival,
			MachNumber:     mach,
			LethalityProb:  lethality,
		})
	}

	zones := make([]ZoneRadius, 0, len(blastZoneThresholds))
	maxDownwind := opts.MaxDownwindM
	if maxDownwind <= 1 {
		maxDownwind = 1000
	}
	for _, z := range blastZoneThresholds {
		r, err := contour.RadialZoneRadius(effect, z.pa, 1, maxDownwind)
		if err != nil {
			return nil, nil, nil, err
		}
		zones = append(zones, ZoneRadius{Label: z.label, Threshold: z.pa, RadiusM: r})
	}

	exposures := make([]ReceptorExposure, 0, len(req.Receptors))
	for _, r := range req.Receptors {
		x, y := units.LocalOffset(req.Scenario.Location.Lat, req.Scenario.Location.Lon, r.Location.Lat, r.Location.Lon)
		dist := math.Hypot(x, y)
		dp := blast.OverpressureAt(dist, mTNT, cond.AmbientPressurePa, vce.IgnitionHeightM, 0)
		arrival := blast.ArrivalTime(dist, mTNT, cond.AmbientPressurePa, soundSpeed, 20)
		lethality := blast.ProbitToProbability(blast.LethalityProbit(dp))
		exposures = append(exposures, ReceptorExposure{
			ID:                uuid.New(),
			ReceptorName:      r.Name,
			OverpressurePa:    &dp,
			BlastArrivalTimeS: &arrival,
			ImpactLevel:       lethalityToImpact(lethality),
		})
	}
	return field, zones, exposures, nil
}

func (p Polynomial) eval(x float64) float64 {
	var v, xp float64
	xp = 1
	for _, c := range p {
		v += c * xp
		xp *= x
	}
	return v
}

func damageToImpact(d DamageCategory) ImpactLevel {
	switch d {
	case DamageFatal:
		return ImpactLifeThreatening
	case DamageSevere:
		return ImpactDisabling
	case DamageModerate:
		return ImpactNotable
	case DamageLight:
		return ImpactMild
	default:
		return ImpactNoEffect
	}
}

func lethalityToImpact(p float64) ImpactLevel {
	switch {
	case p >= 0.5:
		return ImpactLifeThreatening
	case p >= 0.1:
		return ImpactDisabling
	case p >= 0.01:
		return ImpactNotable
	case p > 0:
		return ImpactMild
	default:
		return ImpactNoEffect
	}
}
