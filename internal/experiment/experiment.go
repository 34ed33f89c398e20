// Package experiment turns a configuration into a ready-to-run simulator.
package experiment

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/coltree"
	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: NewRegistry()}
}

// SimConfig converts the file-level configuration into a run configuration.
func SimConfig(cfg *config.Config) sim.Config {
	s := cfg.Simulation
	return sim.Config{
		Duration:   s.Duration,
		Dt:         s.Dt,
		DtOut:      s.DtOut,
		DtEvent:    s.DtEvent,
		Seed:       s.Seed,
		Collisions: s.Collisions,
		Tree: coltree.Options{
			Center:   r3.Vec{},
			Size:     cfg.Tree.Size,
			MaxDepth: cfg.Tree.MaxDepth,
		},
	}
}

// Species extracts the particle constants.
func Species(cfg *config.Config) atoms.Species {
	a := cfg.Atoms
	return atoms.Species{
		Mass:         a.Mass,
		Chi:          a.Chi,
		CrossSection: a.CrossSection,
		VacuumRate:   a.VacuumRate,
		Weight:       a.Weight,
	}
}

// Build creates the simulator for the given seed: a thermal cloud drawn
// from a generator seeded with seed, which then drives the run.
func (e *Experiment) Build(seed uint64, opts ...sim.Option) (*sim.Simulator, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	pot, err := e.registry.GetPotential(e.cfg.Potential)
	if err != nil {
		return nil, err
	}
	stepper, err := e.registry.GetIntegrator(e.cfg.Simulation.Integrator)
	if err != nil {
		return nil, err
	}
	ens, err := atoms.New(Species(e.cfg), e.cfg.Atoms.Number)
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	ens.InitCloud(e.cfg.Atoms.Temperature, e.cfg.Atoms.Radius, rng)

	opts = append([]sim.Option{sim.WithRand(rng)}, opts...)
	return sim.New(ens, stepper, pot, opts...), nil
}

// Resume builds a simulator that continues ens under this configuration:
// the trap, integrator and species constants come from the config, the
// particles and their count from ens. The seed drives collisions and
// vacuum losses only.
func (e *Experiment) Resume(ens *atoms.Ensemble, opts ...sim.Option) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	pot, err := e.registry.GetPotential(e.cfg.Potential)
	if err != nil {
		return err
	}
	stepper, err := e.registry.GetIntegrator(e.cfg.Simulation.Integrator)
	if err != nil {
		return err
	}
	ens.Species = Species(e.cfg)

	rng := rand.New(rand.NewSource(e.cfg.Simulation.Seed))
	opts = append([]sim.Option{sim.WithRand(rng)}, opts...)
	e.simulator = sim.New(ens, stepper, pot, opts...)
	return nil
}

// Setup builds the simulator for the configured seed.
func (e *Experiment) Setup(opts ...sim.Option) error {
	s, err := e.Build(e.cfg.Simulation.Seed, opts...)
	if err != nil {
		return err
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, SimConfig(e.cfg))
}

// RunReplicas runs n independent copies with seeds Seed, Seed+1, ...
func (e *Experiment) RunReplicas(ctx context.Context, n int, opts ...sim.Option) ([]*sim.Result, error) {
	factory := func(seed uint64) (*sim.Simulator, error) {
		return e.Build(seed, opts...)
	}
	return sim.NewBatch(factory, n, e.cfg.Simulation.Seed).Run(ctx, SimConfig(e.cfg))
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config { return e.cfg }
