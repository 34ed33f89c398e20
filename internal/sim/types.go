package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/coltree"
)

// Config drives one run. Times are in seconds.
type Config struct {
	Duration float64
	Dt       float64
	DtOut    float64
	// DtEvent is the initial time between collision events. The
	// scheduler adapts it within [Dt, DtOut].
	DtEvent    float64
	Seed       uint64
	Collisions bool
	Tree       coltree.Options
}

func DefaultConfig() Config {
	return Config{
		Duration:   1,
		Dt:         1e-5,
		DtOut:      1e-3,
		DtEvent:    1e-4,
		Seed:       1,
		Collisions: true,
		Tree:       coltree.DefaultOptions(),
	}
}

// Measurement is one reporting line.
type Measurement struct {
	Time          float64
	Mean          r3.Vec
	Variance      r3.Vec
	Kinetic       float64 // mean kinetic energy, Hz
	Potential     float64 // mean potential energy, Hz
	N             int
	PeakDensity   float64 // m^-3
	CollisionRate float64 // collisions per particle per second
	Temperature   float64 // K
	Interval      float64 // event interval in force, s
}

// Valid reports whether every quantity is finite.
func (m Measurement) Valid() bool {
	for _, v := range m.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Event summarizes one collision event.
type Event struct {
	Time       float64
	Collisions int
	N          int
	Density    float64
	Interval   float64 // interval chosen for the next event
}

// Observer receives every measurement as it is taken.
type Observer interface {
	OnMeasurement(m Measurement)
}

// EventObserver is implemented by observers that also want collision events.
type EventObserver interface {
	OnEvent(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Measurement)

func (f ObserverFunc) OnMeasurement(m Measurement) { f(m) }

type Result struct {
	Measurements []Measurement
	Events       int
	Collisions   int
	Steps        int
	TrapLosses   int
	VacuumLosses int
}

// Final returns the last measurement, or the zero value for an empty result.
func (r *Result) Final() Measurement {
	if len(r.Measurements) == 0 {
		return Measurement{}
	}
	return r.Measurements[len(r.Measurements)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
