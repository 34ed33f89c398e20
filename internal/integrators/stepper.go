// Package integrators advances an ensemble through an external potential.
package integrators

import (
	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/potential"
)

// Stepper advances positions and velocities of every particle by dt in
// place. Implementations keep scratch buffers between calls and regrow
// them when the particle count changes.
type Stepper interface {
	Step(e *atoms.Ensemble, pot potential.Potential, dt float64)
	Name() string
}

// grow returns buf resized to n, reallocating only when it is too small.
func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

// probe returns a view of e whose positions are pos, for evaluating
// accelerations at trial positions.
func probe(e *atoms.Ensemble, pos []float64) *atoms.Ensemble {
	return &atoms.Ensemble{Species: e.Species, Pos: pos, Vel: e.Vel}
}
