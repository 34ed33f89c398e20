package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/coldsim/internal/sim"
)

// Recorder exports measurements and collision events as Prometheus
// metrics. It implements sim.Observer and sim.EventObserver.
type Recorder struct {
	atoms         prometheus.Gauge
	simTime       prometheus.Gauge
	temperature   prometheus.Gauge
	kinetic       prometheus.Gauge
	potential     prometheus.Gauge
	peakDensity   prometheus.Gauge
	collisionRate prometheus.Gauge
	interval      prometheus.Gauge

	measurements    prometheus.Counter
	events          prometheus.Counter
	collisions      prometheus.Counter
	eventCollisions prometheus.Histogram
}

// NewRecorder registers the metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: "coldsim", Name: name, Help: help})
	}
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{Namespace: "coldsim", Name: name, Help: help})
	}

	return &Recorder{
		atoms:         gauge("atoms", "Simulated particles remaining"),
		simTime:       gauge("sim_time_seconds", "Simulated time of the latest measurement"),
		temperature:   gauge("temperature_kelvin", "Kinetic temperature of the cloud"),
		kinetic:       gauge("kinetic_energy_hz", "Mean kinetic energy per particle in Hz"),
		potential:     gauge("potential_energy_hz", "Mean potential energy per particle in Hz"),
		peakDensity:   gauge("peak_density_per_m3", "Peak density estimate"),
		collisionRate: gauge("collision_rate_hz", "Collisions per particle per second"),
		interval:      gauge("event_interval_seconds", "Time between collision events"),

		measurements: counter("measurements_total", "Measurements taken"),
		events:       counter("events_total", "Collision events run"),
		collisions:   counter("collisions_total", "Accepted collisions"),
		eventCollisions: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coldsim",
			Name:      "event_collisions",
			Help:      "Accepted collisions per event",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

func (r *Recorder) OnMeasurement(m sim.Measurement) {
	r.atoms.Set(float64(m.N))
	r.simTime.Set(m.Time)
	r.temperature.Set(m.Temperature)
	r.kinetic.Set(m.Kinetic)
	r.potential.Set(m.Potential)
	r.peakDensity.Set(m.PeakDensity)
	r.collisionRate.Set(m.CollisionRate)
	r.interval.Set(m.Interval)
	r.measurements.Inc()
}

func (r *Recorder) OnEvent(ev sim.Event) {
	r.events.Inc()
	r.collisions.Add(float64(ev.Collisions))
	r.eventCollisions.Observe(float64(ev.Collisions))
	r.interval.Set(ev.Interval)
}
