// Package receptor implements C9: sampling the dispersion grid at each
// receptor location, integrating the concentration-time curve, selecting
// duration-appropriate AEGL/ERPG/PAC guideline values, and classifying
// impact severity.
package receptor

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/sublyime/hcme"
)

// Sampler returns the concentration [mg/m^3] at a receptor's (x,y,z)
// position at the given time step. Implementations may do nearest-cell or
// trilinear interpolation; the receptor evaluator is agnostic to which.
type Sampler func(timeStep int, xM, yM, zM float64) float64

// timeSeries is one receptor's concentration samples across all time
// steps, paired with the elapsed time of each step.
type timeSeries struct {
	elapsedS []float64
	concMgM3 []float64
}

// sample builds a receptor's concentration-time series from grid, given the
// scenario-local (x,y) offset of the receptor from the source.
func sample(sampler Sampler, frames []hcme.ReleaseFrame, xM, yM, zM float64) timeSeries {
	ts := timeSeries{elapsedS: make([]float64, len(frames)), concMgM3: make([]float64, len(frames))}
	for i, f := range frames {
		ts.elapsedS[i] = f.ElapsedTimeS
		ts.concMgM3[i] = sampler(f.TimeStep, xM, yM, zM)
	}
	return ts
}

// integrate computes time-weighted average concentration over
// [0, min(duration, windowS)] by the trapezoidal rule, along with the peak
// concentration/time, first-arrival time at threshold, and duration above
// threshold.
func integrate(ts timeSeries, windowS, thresholdMgM3 float64) (twa, peak, peakTime, arrival, durationAbove float64) {
	if len(ts.elapsedS) == 0 {
		return 0, 0, 0, math.Inf(1), 0
	}
	arrival = math.Inf(1)
	var integral float64
	haveArrival := false
	var aboveStart float64
	inAbove := false

	windowEnd := windowS
	if n := len(ts.elapsedS); n > 0 && ts.elapsedS[n-1] < windowEnd {
		windowEnd = ts.elapsedS[n-1]
	}

	for i, c := range ts.concMgM3 {
		t := ts.elapsedS[i]
		if c > peak {
			peak = c
			peakTime = t
		}
		if !haveArrival && c >= thresholdMgM3 {
			arrival = t
			haveArrival = true
		}
		if c >= thresholdMgM3 && !inAbove {
			aboveStart = t
			inAbove = true
		}
		if c < thresholdMgM3 && inAbove {
			durationAbove += t - aboveStart
			inAbove = false
		}
		if i > 0 && t <= windowEnd {
			dt := t - ts.elapsedS[i-1]
			integral += dt * (c + ts.concMgM3[i-1]) / 2
		}
	}
	if inAbove {
		durationAbove += ts.elapsedS[len(ts.elapsedS)-1] - aboveStart
	}
	if windowEnd > 0 {
		twa = integral / windowEnd
	}
	return twa, peak, peakTime, arrival, durationAbove
}

// guidelineAtDuration selects the exposure-window-appropriate duration
// bucket (the smallest tabulated bucket >= the window, or the largest if
// the window exceeds every bucket), per spec.md §4.9.
func guidelineAtDuration(values map[hcme.GuidelineDuration]float64, windowMin float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	buckets := make([]hcme.GuidelineDuration, 0, len(hcme.DurationBuckets))
	for _, b := range hcme.DurationBuckets {
		if _, ok := values[b]; ok {
			buckets = append(buckets, b)
		}
	}
	if len(buckets) == 0 {
		return 0, false
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	for _, b := range buckets {
		if float64(b) >= windowMin {
			return values[b], true
		}
	}
	last := buckets[len(buckets)-1]
	return values[last], true
}

// classify applies the impact-level rule of spec.md §4.9.
func classify(peak float64, tox *hcme.ToxicologicalGuidelines, windowMin float64, fractions map[string]float64) hcme.ImpactLevel {
	if tox == nil {
		if maxFraction(fractions) > 0.1 {
			return hcme.ImpactMild
		}
		return hcme.ImpactNoEffect
	}
	if aegl3, ok := guidelineAtDuration(tox.AEGL3, windowMin); ok && peak >= aegl3 {
		return hcme.ImpactLifeThreatening
	}
	if peak >= tox.ERPG3 && tox.ERPG3 > 0 {
		return hcme.ImpactLifeThreatening
	}
	if aegl2, ok := guidelineAtDuration(tox.AEGL2, windowMin); ok && peak >= aegl2 {
		return hcme.ImpactDisabling
	}
	if peak >= tox.ERPG2 && tox.ERPG2 > 0 {
		return hcme.ImpactDisabling
	}
	if aegl1, ok := guidelineAtDuration(tox.AEGL1, windowMin); ok && peak >= aegl1 {
		return hcme.ImpactNotable
	}
	if peak >= tox.ERPG1 && tox.ERPG1 > 0 {
		return hcme.ImpactNotable
	}
	if maxFraction(fractions) > 0.1 {
		return hcme.ImpactMild
	}
	return hcme.ImpactNoEffect
}

func maxFraction(fractions map[string]float64) float64 {
	var m float64
	for _, v := range fractions {
		if v > m {
			m = v
		}
	}
	return m
}

func guidelineFractions(peak float64, tox *hcme.ToxicologicalGuidelines, windowMin float64) map[string]float64 {
	out := map[string]float64{}
	if tox == nil {
		return out
	}
	add := func(label string, v float64, ok bool) {
		if ok && v > 0 {
			out[label] = peak / v
		}
	}
	if v, ok := guidelineAtDuration(tox.AEGL1, windowMin); ok {
		add("AEGL-1", v, true)
	}
	if v, ok := guidelineAtDuration(tox.AEGL2, windowMin); ok {
		add("AEGL-2", v, true)
	}
	if v, ok := guidelineAtDuration(tox.AEGL3, windowMin); ok {
		add("AEGL-3", v, true)
	}
	add("ERPG-1", tox.ERPG1, tox.ERPG1 > 0)
	add("ERPG-2", tox.ERPG2, tox.ERPG2 > 0)
	add("ERPG-3", tox.ERPG3, tox.ERPG3 > 0)
	add("PAC-1", tox.PAC1, tox.PAC1 > 0)
	add("PAC-2", tox.PAC2, tox.PAC2 > 0)
	add("PAC-3", tox.PAC3, tox.PAC3 > 0)
	add("IDLH", tox.IDLH, tox.IDLH > 0)
	return out
}

// Evaluate computes the full ReceptorExposure for one receptor, given its
// scenario-local position, a concentration sampler over the dispersion
// grid, and the run's release frames, toxicology, and exposure window.
func Evaluate(r hcme.Receptor, xM, yM float64, sampler Sampler, frames []hcme.ReleaseFrame, tox *hcme.ToxicologicalGuidelines, exposureWindowMin float64) hcme.ReceptorExposure {
	ts := sample(sampler, frames, xM, yM, r.HeightM)
	threshold := 0.0
	if tox != nil {
		if v, ok := guidelineAtDuration(tox.AEGL1, exposureWindowMin); ok {
			threshold = v
		}
	}
	twa, peak, peakTime, arrival, durationAbove := integrate(ts, exposureWindowMin*60, threshold)
	fractions := guidelineFractions(peak, tox, exposureWindowMin)
	level := classify(peak, tox, exposureWindowMin, fractions)

	return hcme.ReceptorExposure{
		ID:                      uuid.New(),
		ReceptorName:            r.Name,
		PeakConcentrationMgM3:   peak,
		TimeWeightedAvgMgM3:     twa,
		ArrivalTimeS:            arrival,
		PeakTimeS:               peakTime,
		DurationAboveThresholdS: durationAbove,
		ImpactLevel:             level,
		GuidelineFractions:      fractions,
	}
}
