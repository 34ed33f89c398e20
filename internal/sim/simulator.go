package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/rand"

	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/coltree"
	"github.com/san-kum/coldsim/internal/integrators"
	"github.com/san-kum/coldsim/internal/potential"
)

type Simulator struct {
	ens       *atoms.Ensemble
	stepper   integrators.Stepper
	pot       potential.Potential
	rng       *rand.Rand
	logger    *log.Logger
	observers []Observer
}

type Option func(*Simulator)

// WithLogger sets the logger used for run progress. Runs are silent by default.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithRand sets the generator used for collisions and vacuum losses.
// Without it Run seeds a fresh generator from Config.Seed.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rng = r }
}

// WithObserver registers o before the run starts.
func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

func New(ens *atoms.Ensemble, stepper integrators.Stepper, pot potential.Potential, opts ...Option) *Simulator {
	s := &Simulator{
		ens:       ens,
		stepper:   stepper,
		pot:       pot,
		logger:    log.New(io.Discard),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Ensemble() *atoms.Ensemble { return s.ens }

// Run evolves the ensemble until cfg.Duration or until every particle is
// lost. It measures at t = 0 and then every cfg.DtOut.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	rng := s.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	var sched *coltree.Scheduler
	if cfg.Collisions {
		var err error
		sched, err = coltree.NewScheduler(coltree.New(cfg.Tree), cfg.Dt, cfg.DtOut, cfg.DtEvent)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	result := &Result{
		Measurements: make([]Measurement, 0, int(cfg.Duration/cfg.DtOut)+2),
	}
	n0 := s.ens.N()
	s.logger.Info("run started",
		"atoms", n0,
		"potential", s.pot.Name(),
		"integrator", s.stepper.Name(),
		"collisions", cfg.Collisions,
		"duration", cfg.Duration)

	t := 0.0
	s.ens.Collisions = 0
	s.record(result, s.measure(t, sched, cfg.DtOut))

	tOut := cfg.DtOut
	tEvent := cfg.DtEvent
	if sched != nil {
		tEvent = sched.Interval()
	}
	milestone := n0 / 2

	for step := 0; t < cfg.Duration && s.ens.N() > 0; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.stepper.Step(s.ens, s.pot, cfg.Dt)
		result.TrapLosses += s.pot.Losses(s.ens)
		result.VacuumLosses += s.ens.VacuumLosses(cfg.Dt, rng)
		t += cfg.Dt
		result.Steps++

		if sched != nil && t >= tEvent {
			s.event(result, sched, t, rng)
			tEvent = t + sched.Interval()
		}

		if n := s.ens.N(); n <= milestone && n0 > 0 {
			s.logger.Debug("atoms lost", "t", t, "remaining", n, "initial", n0)
			milestone = n / 2
		}

		if t >= tOut {
			m := s.measure(t, sched, cfg.DtOut)
			if !m.Valid() {
				return result, SimError{Time: t, Step: step, Message: "non-finite measurement"}
			}
			s.record(result, m)
			s.ens.Collisions = 0
			tOut += cfg.DtOut
		}
	}

	if s.ens.N() == 0 {
		s.logger.Warn("ensemble empty", "t", t)
	}
	s.logger.Info("run finished",
		"steps", result.Steps,
		"events", result.Events,
		"collisions", result.Collisions,
		"remaining", s.ens.N(),
		"temperature", result.Final().Temperature)
	return result, nil
}

func (s *Simulator) event(result *Result, sched *coltree.Scheduler, t float64, rng *rand.Rand) {
	before := sched.Interval()
	hits := sched.Event(s.ens, rng)
	result.Events++
	result.Collisions += hits

	ev := Event{
		Time:       t,
		Collisions: hits,
		N:          s.ens.N(),
		Density:    s.ens.PeakDensity,
		Interval:   sched.Interval(),
	}
	if ev.Interval != before {
		s.logger.Debug("event interval adapted", "t", t, "from", before, "to", ev.Interval, "collisions", hits)
	}
	for _, o := range s.observers {
		if eo, ok := o.(EventObserver); ok {
			eo.OnEvent(ev)
		}
	}
}

func (s *Simulator) measure(t float64, sched *coltree.Scheduler, dtOut float64) Measurement {
	n := s.ens.N()
	mean, variance := s.ens.Moments()
	m := Measurement{
		Time:          t,
		Mean:          mean,
		Variance:      variance,
		Kinetic:       s.ens.KineticEnergy(),
		Potential:     s.pot.Energy(s.ens),
		N:             n,
		PeakDensity:   s.ens.PeakDensity,
		CollisionRate: CollisionRate(s.ens.Collisions, dtOut, n),
		Temperature:   s.ens.Temperature(),
	}
	if sched != nil {
		m.Interval = sched.Interval()
	}
	return m
}

func (s *Simulator) record(result *Result, m Measurement) {
	result.Measurements = append(result.Measurements, m)
	for _, o := range s.observers {
		o.OnMeasurement(m)
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.DtOut < cfg.Dt {
		return fmt.Errorf("%w: measurement step %g shorter than dt %g", ErrInvalidConfig, cfg.DtOut, cfg.Dt)
	}
	if s.ens == nil || s.stepper == nil || s.pot == nil {
		return fmt.Errorf("%w: ensemble, integrator and potential are required", ErrInvalidConfig)
	}
	return nil
}
