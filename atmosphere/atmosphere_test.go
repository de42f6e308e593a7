package atmosphere

import (
	"math"
	"testing"
	"time"

	"github.com/sublyime/hcme"
)

func TestClassifyPasquillHint(t *testing.T) {
	w := hcme.WeatherSnapshot{PasquillClassHint: hcme.PasquillE}
	if got := ClassifyPasquill(w); got != hcme.PasquillE {
		t.Fatalf("expected hint to pass through, got %v", got)
	}
}

func TestClassifyPasquillDaytimeStrongLightWind(t *testing.T) {
	noon := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	w := hcme.WeatherSnapshot{
		WindSpeedMS:    1.5,
		CloudCoverFrac: 0.1,
		ObservedAt:     noon,
	}
	if got := ClassifyPasquill(w); got != hcme.PasquillA {
		t.Fatalf("expected class A, got %v", got)
	}
}

func TestClassifyPasquillNightClearModerateWind(t *testing.T) {
	midnight := time.Date(2026, 7, 30, 2, 0, 0, 0, time.UTC)
	w := hcme.WeatherSnapshot{
		WindSpeedMS:    3.5,
		CloudCoverFrac: 0.1,
		ObservedAt:     midnight,
	}
	if got := ClassifyPasquill(w); got != hcme.PasquillE {
		t.Fatalf("expected class E, got %v", got)
	}
}

func TestWindSpeedAtMatchesReferenceHeight(t *testing.T) {
	u := WindSpeedAt(5, 10, 10, hcme.PasquillD)
	if math.Abs(u-5) > 1e-9 {
		t.Fatalf("expected u(zref)=uref, got %v", u)
	}
}

func TestWindSpeedAtIncreasesWithHeight(t *testing.T) {
	u10 := WindSpeedAt(5, 10, 10, hcme.PasquillD)
	u50 := WindSpeedAt(5, 10, 50, hcme.PasquillD)
	if u50 <= u10 {
		t.Fatalf("expected wind speed to increase with height, u10=%v u50=%v", u10, u50)
	}
}

func TestRoughnessLengthOpenWaterIncreasesWithWind(t *testing.T) {
	low := RoughnessLength(hcme.SurfaceOpenWater, 2)
	high := RoughnessLength(hcme.SurfaceOpenWater, 20)
	if high <= low {
		t.Fatalf("expected roughness to increase with wind speed, low=%v high=%v", low, high)
	}
}

func TestMixingHeightDaytimeExceedsNight(t *testing.T) {
	day := MixingHeight(hcme.PasquillD, true)
	night := MixingHeight(hcme.PasquillF, false)
	if day <= night {
		t.Fatalf("expected daytime mixing height to exceed stable night, day=%v night=%v", day, night)
	}
}

func TestRichardsonNumberZeroFrictionVelocity(t *testing.T) {
	ri := RichardsonNumber(1, 10, 0)
	if !math.IsInf(ri, 1) {
		t.Fatalf("expected +Inf for zero friction velocity, got %v", ri)
	}
}
