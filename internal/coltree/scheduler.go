package coltree

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/coldsim/internal/atoms"
)

// ErrIntervalBounds indicates an integration step larger than the
// measurement step, leaving no valid event interval.
var ErrIntervalBounds = errors.New("coltree: event interval bounds inverted")

const (
	// HighFraction is the collision fraction above which the interval halves.
	HighFraction = 0.5
	// LowFraction is the collision fraction below which the interval grows tenfold.
	LowFraction = 0.01
)

// Scheduler runs collision events and adapts the time between them so
// that the fraction of particles colliding per event stays between
// LowFraction and HighFraction.
type Scheduler struct {
	tree     *Tree
	dt       float64
	dtOut    float64
	interval float64
	events   int
	density  float64
}

// NewScheduler returns a scheduler whose interval starts at initial and is
// kept within [dt, dtOut].
func NewScheduler(tree *Tree, dt, dtOut, initial float64) (*Scheduler, error) {
	if dt <= 0 || dt > dtOut {
		return nil, fmt.Errorf("%w: dt=%g dtOut=%g", ErrIntervalBounds, dt, dtOut)
	}
	s := &Scheduler{tree: tree, dt: dt, dtOut: dtOut}
	s.interval = s.clamp(initial)
	return s, nil
}

// Event builds the tree over e, resolves collisions over the current
// interval, records them on e and adapts the interval. It returns the
// number of accepted collisions.
func (s *Scheduler) Event(e *atoms.Ensemble, rng Uniform) int {
	s.density = s.tree.Init(e)
	s.tree.UpdatePointers()
	hits := s.tree.Compute(e, s.interval, rng)

	e.Collisions += hits
	e.PeakDensity = s.density * e.Weight
	s.events++
	s.Adapt(hits, e.N())
	return hits
}

// Adapt updates the interval from the collisions observed among n
// particles and returns the new interval. An empty ensemble counts as a
// zero fraction.
func (s *Scheduler) Adapt(collisions, n int) float64 {
	fraction := 0.0
	if n > 0 {
		fraction = float64(collisions) / float64(n)
	}
	switch {
	case fraction > HighFraction:
		s.interval /= 2
	case fraction < LowFraction:
		s.interval *= 10
	}
	s.interval = s.clamp(s.interval)
	return s.interval
}

func (s *Scheduler) clamp(v float64) float64 {
	return math.Max(s.dt, math.Min(s.dtOut, v))
}

// Interval returns the time until the next event should run.
func (s *Scheduler) Interval() float64 { return s.interval }

// Events returns how many events have run.
func (s *Scheduler) Events() int { return s.events }

// Density returns the raw density proxy of the last event.
func (s *Scheduler) Density() float64 { return s.density }

func (s *Scheduler) Tree() *Tree { return s.tree }
