package source

import (
	"testing"

	"github.com/sublyime/hcme"
	"github.com/sublyime/hcme/chemprop"
)

func chlorineChem() hcme.ChemicalProperties {
	return hcme.ChemicalProperties{
		Name:                  "chlorine",
		MolecularWeightGMol:   70.9,
		VaporPressurePa:       hcme.Polynomial{800000},
		LiquidDensityKgM3:     hcme.Polynomial{1470},
		GasDensityKgM3:        hcme.Polynomial{},
		HeatCapacityJKgK:      hcme.Polynomial{480},
		HeatOfVaporizationJKg: hcme.Polynomial{288000},
		Envelope:              hcme.PropertyRange{Min: 200, Max: 400},
		BoilingPointK:         239,
	}
}

func stdConditions() Conditions {
	return Conditions{AmbientPressurePa: 101325, AmbientTempK: 288, WindSpeedMS: 3}
}

func TestSolveDirectConstantRate(t *testing.T) {
	sc := hcme.Scenario{
		Source:   hcme.SourceGeometry{Direct: &hcme.DirectSource{RateKgS: 2, AreaM2: 1, VelocityMS: 5}},
		DurationS: 300,
	}
	frames, err := Solve(sc, nil, stdConditions(), 60, 10, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) == 0 {
		t.Fatal("expected at least one frame")
	}
	for _, f := range frames {
		if f.ElapsedTimeS < sc.DurationS && f.MassFlowRateKgS != 2 {
			t.Fatalf("expected constant rate 2 kg/s within duration, got %v at t=%v", f.MassFlowRateKgS, f.ElapsedTimeS)
		}
	}
}

func TestSolvePuddleMassMonotonicallyDepletes(t *testing.T) {
	chem := chemprop.NewEvaluator(chlorineChem())
	sc := hcme.Scenario{
		Source: hcme.SourceGeometry{Puddle: &hcme.PuddleSource{
			AreaM2: 20, DepthM: 0.05, TemperatureK: 239, Surface: hcme.SurfaceConcrete,
		}},
	}
	frames, err := Solve(sc, chem, stdConditions(), 30, 50, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) < 2 {
		t.Fatalf("expected multiple frames, got %d", len(frames))
	}
	for _, f := range frames {
		if f.MassFlowRateKgS < 0 {
			t.Fatalf("mass flow rate must not be negative, got %v", f.MassFlowRateKgS)
		}
	}
}

func TestSolveTankInfeasibleBelowAmbient(t *testing.T) {
	chem := chemprop.NewEvaluator(chlorineChem())
	sc := hcme.Scenario{
		Source: hcme.SourceGeometry{Tank: &hcme.TankSource{
			VolumeM3: 10, PressurePa: 50000, TemperatureK: 239, HoleAreaM2: 0.001,
		}},
	}
	_, err := Solve(sc, chem, stdConditions(), 10, 10, false)
	if err == nil {
		t.Fatal("expected infeasible source error for sub-ambient tank pressure")
	}
	ee, ok := err.(hcme.EngineError)
	if !ok {
		t.Fatalf("expected an EngineError, got %T", err)
	}
	if ee.Code() != hcme.ErrInfeasibleSource {
		t.Fatalf("expected ErrInfeasibleSource, got %v", ee.Code())
	}
}

func TestSolveTankGasChokedDecaysTowardAmbient(t *testing.T) {
	chem := chemprop.NewEvaluator(chlorineChem())
	sc := hcme.Scenario{
		Source: hcme.SourceGeometry{Tank: &hcme.TankSource{
			VolumeM3: 5, PressurePa: 600000, TemperatureK: 280, HoleAreaM2: 0.0005,
			Phase: hcme.TankPhaseGas,
		}},
	}
	frames, err := Solve(sc, chem, stdConditions(), 10, 200, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) < 2 {
		t.Fatalf("expected multiple frames, got %d", len(frames))
	}
	if frames[1].MassFlowRateKgS > frames[0].MassFlowRateKgS {
		t.Fatalf("expected decaying discharge rate, got increase from %v to %v",
			frames[0].MassFlowRateKgS, frames[1].MassFlowRateKgS)
	}
}

func TestSolvePipelineDoubleExponentialDecay(t *testing.T) {
	chem := chemprop.NewEvaluator(chlorineChem())
	sc := hcme.Scenario{
		Source: hcme.SourceGeometry{Pipeline: &hcme.PipelineSource{
			LengthM: 500, DiameterM: 0.2, PressurePa: 1000000, TemperatureK: 280, HoleAreaM2: 0.01,
		}},
	}
	frames, err := Solve(sc, chem, stdConditions(), 10, 200, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) < 2 {
		t.Fatalf("expected multiple frames, got %d", len(frames))
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].MassFlowRateKgS > frames[i-1].MassFlowRateKgS {
			t.Fatalf("expected monotonically non-increasing discharge rate at step %d", i)
		}
	}
}
