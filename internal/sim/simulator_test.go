package sim

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/rand"

	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/integrators"
	"github.com/san-kum/coldsim/internal/potential"
)

func testCloud(t *testing.T, n int, seed uint64) *atoms.Ensemble {
	t.Helper()
	e, err := atoms.New(atoms.Rb87(), n)
	if err != nil {
		t.Fatal(err)
	}
	e.InitCloud(1e-5, 5e-5, rand.New(rand.NewSource(seed)))
	return e
}

func testTrap(t *testing.T) potential.Potential {
	t.Helper()
	h, err := potential.NewHarmonic([3]float64{100, 100, 100}, potential.StandardGravity)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func shortConfig() Config {
	cfg := DefaultConfig()
	cfg.Duration = 1e-2
	cfg.Collisions = false
	return cfg
}

func TestSimulatorRun(t *testing.T) {
	sim := New(testCloud(t, 200, 1), integrators.NewRK4(), testTrap(t))

	result, err := sim.Run(context.Background(), shortConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if n := len(result.Measurements); n < 10 || n > 12 {
		t.Errorf("expected about 11 measurements, got %d", n)
	}
	first, last := result.Measurements[0], result.Final()
	if first.Time != 0 || first.N != 200 {
		t.Errorf("unexpected initial measurement: %+v", first)
	}
	if result.Steps < 1000 || result.Steps > 1001 {
		t.Errorf("expected 1000 steps, got %d", result.Steps)
	}

	e0 := first.Kinetic + first.Potential
	e1 := last.Kinetic + last.Potential
	if math.Abs(e1-e0) > 1e-3*math.Abs(e0) {
		t.Errorf("energy drift too large: %g -> %g", e0, e1)
	}
	if result.Events != 0 || last.Interval != 0 {
		t.Error("collision events ran with collisions disabled")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(testCloud(t, 10, 1), integrators.NewRK2(), testTrap(t))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, DtOut: 1, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, DtOut: 1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, DtOut: 1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, DtOut: 1, Duration: -1.0}},
		{"measurement step below dt", Config{Dt: 0.1, DtOut: 0.01, Duration: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type countingObserver struct {
	measurements int
	events       int
	collisions   int
}

func (c *countingObserver) OnMeasurement(Measurement) { c.measurements++ }
func (c *countingObserver) OnEvent(ev Event) {
	c.events++
	c.collisions += ev.Collisions
}

func TestSimulatorCollisions(t *testing.T) {
	e := testCloud(t, 500, 2)
	e.CrossSection = 1e-10
	sim := New(e, integrators.NewRK2(), testTrap(t))
	obs := &countingObserver{}
	sim.AddObserver(obs)

	cfg := shortConfig()
	cfg.Collisions = true
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Events == 0 || result.Collisions == 0 {
		t.Fatalf("expected collisions, got %d events and %d collisions", result.Events, result.Collisions)
	}
	if obs.measurements != len(result.Measurements) {
		t.Errorf("observer saw %d measurements, result has %d", obs.measurements, len(result.Measurements))
	}
	if obs.events != result.Events || obs.collisions != result.Collisions {
		t.Errorf("observer saw %d events / %d collisions, result has %d / %d",
			obs.events, obs.collisions, result.Events, result.Collisions)
	}

	counted := 0.0
	for _, m := range result.Measurements[1:] {
		if m.Interval < cfg.Dt || m.Interval > cfg.DtOut {
			t.Errorf("interval %g outside [%g, %g]", m.Interval, cfg.Dt, cfg.DtOut)
		}
		if m.PeakDensity <= 0 {
			t.Errorf("no density estimate at t=%g", m.Time)
		}
		counted += m.CollisionRate * cfg.DtOut * float64(m.N)
	}
	if math.Round(counted) > float64(result.Collisions) {
		t.Errorf("measured %g collisions, more than the %d that happened", counted, result.Collisions)
	}
}

func TestSimulatorStopsWhenEmpty(t *testing.T) {
	q, err := potential.NewQuadrupole(6.7e3, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	sim := New(testCloud(t, 50, 3), integrators.NewRK4(), q)

	result, err := sim.Run(context.Background(), shortConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.TrapLosses != 50 {
		t.Errorf("expected every atom lost, got %d", result.TrapLosses)
	}
	if result.Steps != 1 || len(result.Measurements) != 1 {
		t.Errorf("expected the run to stop after one step, got %d steps", result.Steps)
	}
}

func TestSimulatorCancel(t *testing.T) {
	sim := New(testCloud(t, 10, 4), integrators.NewRK4(), testTrap(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, shortConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Measurements) != 1 || result.Steps != 0 {
		t.Errorf("expected only the initial measurement, got %d", len(result.Measurements))
	}
}

func TestBatch(t *testing.T) {
	trap := testTrap(t)
	factory := func(seed uint64) (*Simulator, error) {
		e, err := atoms.New(atoms.Rb87(), 50)
		if err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewSource(seed))
		e.InitCloud(1e-5, 5e-5, rng)
		return New(e, integrators.NewRK2(), trap, WithRand(rng)), nil
	}

	results, err := NewBatch(factory, 3, 10).Run(context.Background(), shortConfig())
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Measurements[0] == results[1].Measurements[0] {
		t.Error("replicas share initial conditions")
	}

	if _, err := NewBatch(factory, 0, 1).Run(context.Background(), shortConfig()); !errors.Is(err, ErrNoReplicas) {
		t.Errorf("expected ErrNoReplicas, got %v", err)
	}
}

func TestSimulatorLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	q, err := potential.NewQuadrupole(6.7e3, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	sim := New(testCloud(t, 8, 5), integrators.NewRK2(), q, WithLogger(logger))
	if _, err := sim.Run(context.Background(), shortConfig()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, want := range []string{"run started", "atoms lost", "ensemble empty", "run finished"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("log is missing %q:\n%s", want, buf.String())
		}
	}
}
