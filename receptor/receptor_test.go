package receptor

import (
	"math"
	"testing"

	"github.com/sublyime/hcme"
)

func linearDecaySampler(peakMgM3, peakTimeS, halfLifeS float64) Sampler {
	return func(timeStep int, x, y, z float64) float64 {
		t := float64(timeStep) * 60
		if t < peakTimeS {
			return peakMgM3 * t / peakTimeS
		}
		decay := (t - peakTimeS) / halfLifeS
		return peakMgM3 * pow2(-decay)
	}
}

func pow2(x float64) float64 {
	// 2^x, so the sampler halves once per half-life.
	return math.Exp2(x)
}

func frames(n int) []hcme.ReleaseFrame {
	out := make([]hcme.ReleaseFrame, n)
	for i := range out {
		out[i] = hcme.ReleaseFrame{TimeStep: i, ElapsedTimeS: float64(i) * 60}
	}
	return out
}

func TestEvaluateMildImpactWithLowAEGL1(t *testing.T) {
	tox := &hcme.ToxicologicalGuidelines{
		Unit:  hcme.UnitMgM3,
		AEGL1: map[hcme.GuidelineDuration]float64{hcme.Duration60Min: 5},
	}
	sampler := linearDecaySampler(3, 300, 600)
	exp := Evaluate(hcme.Receptor{Name: "r1"}, 500, 100, sampler, frames(20), tox, 60)
	if exp.ImpactLevel != hcme.ImpactMild {
		t.Fatalf("expected mild impact for sub-AEGL1 peak, got %v", exp.ImpactLevel.String())
	}
}

func TestEvaluateLifeThreateningAboveAEGL3(t *testing.T) {
	tox := &hcme.ToxicologicalGuidelines{
		Unit:  hcme.UnitMgM3,
		AEGL1: map[hcme.GuidelineDuration]float64{hcme.Duration60Min: 5},
		AEGL2: map[hcme.GuidelineDuration]float64{hcme.Duration60Min: 20},
		AEGL3: map[hcme.GuidelineDuration]float64{hcme.Duration60Min: 50},
	}
	sampler := linearDecaySampler(100, 300, 600)
	exp := Evaluate(hcme.Receptor{Name: "r1"}, 500, 100, sampler, frames(20), tox, 60)
	if exp.ImpactLevel != hcme.ImpactLifeThreatening {
		t.Fatalf("expected life_threatening impact, got %v", exp.ImpactLevel.String())
	}
}

func TestEvaluateSwapInvariant(t *testing.T) {
	tox := &hcme.ToxicologicalGuidelines{
		Unit:  hcme.UnitMgM3,
		AEGL1: map[hcme.GuidelineDuration]float64{hcme.Duration60Min: 5},
	}
	sampler := func(timeStep int, x, y, z float64) float64 {
		// Concentration depends on receptor position, so two distinct
		// receptors get independent exposures regardless of evaluation order.
		base := linearDecaySampler(10, 300, 600)(timeStep, x, y, z)
		return base * (1000 / (x + 1))
	}
	a := hcme.Receptor{Name: "a"}
	b := hcme.Receptor{Name: "b"}
	fr := frames(20)

	expA1 := Evaluate(a, 200, 0, sampler, fr, tox, 60)
	expB1 := Evaluate(b, 800, 0, sampler, fr, tox, 60)

	expB2 := Evaluate(b, 800, 0, sampler, fr, tox, 60)
	expA2 := Evaluate(a, 200, 0, sampler, fr, tox, 60)

	if expA1.PeakConcentrationMgM3 != expA2.PeakConcentrationMgM3 {
		t.Fatal("expected receptor a's exposure to be independent of evaluation order")
	}
	if expB1.PeakConcentrationMgM3 != expB2.PeakConcentrationMgM3 {
		t.Fatal("expected receptor b's exposure to be independent of evaluation order")
	}
}

func TestGuidelineAtDurationPicksSmallestSufficientBucket(t *testing.T) {
	values := map[hcme.GuidelineDuration]float64{
		hcme.Duration10Min: 100,
		hcme.Duration60Min: 50,
		hcme.Duration240Min: 20,
	}
	v, ok := guidelineAtDuration(values, 60)
	if !ok || v != 50 {
		t.Fatalf("expected 60-minute bucket value 50, got %v (ok=%v)", v, ok)
	}
}

func TestGuidelineAtDurationFallsBackToLargestBucket(t *testing.T) {
	values := map[hcme.GuidelineDuration]float64{
		hcme.Duration10Min: 100,
		hcme.Duration60Min: 50,
	}
	v, ok := guidelineAtDuration(values, 480)
	if !ok || v != 50 {
		t.Fatalf("expected fallback to largest available bucket (60 min, value 50), got %v (ok=%v)", v, ok)
	}
}
