package experiment

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/san-kum/coldsim/internal/config"
)

func TestRegistryCoversConfigNames(t *testing.T) {
	r := NewRegistry()
	if !slices.Equal(r.ListPotentials(), []string{"harmonic", "quadrupole"}) {
		t.Errorf("unexpected potentials %v", r.ListPotentials())
	}
	for _, name := range config.Integrators {
		if _, err := r.GetIntegrator(name); err != nil {
			t.Errorf("integrator %s: %v", name, err)
		}
	}
	for _, name := range config.Potentials {
		p := config.DefaultConfig().Potential
		p.Type = name
		if _, err := r.GetPotential(p); err != nil {
			t.Errorf("potential %s: %v", name, err)
		}
	}

	if _, err := r.GetIntegrator("euler"); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
	if _, err := r.GetPotential(config.PotentialConfig{Type: "box"}); !errors.Is(err, ErrUnknownPotential) {
		t.Errorf("expected ErrUnknownPotential, got %v", err)
	}
}

func smallConfig() *config.Config {
	cfg := config.GetPreset("harmonic", "oscillation")
	cfg.Atoms.Number = 100
	cfg.Simulation.Duration = 5e-3
	return cfg
}

func TestExperimentRun(t *testing.T) {
	exp := New(smallConfig())
	if _, err := exp.Run(context.Background()); err == nil {
		t.Fatal("expected an error before Setup")
	}
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if exp.GetSimulator().Ensemble().N() != 100 {
		t.Errorf("expected 100 atoms, got %d", exp.GetSimulator().Ensemble().N())
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Measurements) < 5 {
		t.Errorf("expected at least 5 measurements, got %d", len(result.Measurements))
	}
}

func TestBuildIsReproducible(t *testing.T) {
	exp := New(smallConfig())
	a, err := exp.Build(7)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := exp.Build(7)
	c, _ := exp.Build(8)

	if !slices.Equal(a.Ensemble().Pos, b.Ensemble().Pos) {
		t.Error("same seed produced different clouds")
	}
	if slices.Equal(a.Ensemble().Pos, c.Ensemble().Pos) {
		t.Error("different seeds produced the same cloud")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Simulation.Dt = 0
	if _, err := New(cfg).Build(1); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected config.ErrInvalid, got %v", err)
	}
}

func TestRunReplicas(t *testing.T) {
	results, err := New(smallConfig()).RunReplicas(context.Background(), 2)
	if err != nil {
		t.Fatalf("replicas failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Measurements[0] == results[1].Measurements[0] {
		t.Error("replicas started from the same cloud")
	}
}

func TestExperimentResume(t *testing.T) {
	first := New(smallConfig())
	if err := first.Setup(); err != nil {
		t.Fatal(err)
	}
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	ens := first.GetSimulator().Ensemble()
	x0 := ens.Position(0)

	cfg := smallConfig()
	cfg.Atoms.Number = 5
	cfg.Atoms.CrossSection = 1e-10
	second := New(cfg)
	if err := second.Resume(ens); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	s := second.GetSimulator()
	if s.Ensemble() != ens || ens.N() != 100 {
		t.Errorf("resume must keep the particles, got %d", ens.N())
	}
	if ens.CrossSection != 1e-10 {
		t.Errorf("species constants not updated: %g", ens.CrossSection)
	}

	result, err := second.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Measurements[0].N != 100 || ens.Position(0) == x0 {
		t.Error("second stage did not continue the cloud")
	}

	bad := smallConfig()
	bad.Simulation.Dt = 0
	if err := New(bad).Resume(ens); err == nil {
		t.Error("expected invalid config to fail")
	}
}
