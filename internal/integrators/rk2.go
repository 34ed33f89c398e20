package integrators

import (
	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/potential"
)

// RK2 is the explicit midpoint method.
type RK2 struct {
	acc, mid []float64
}

func NewRK2() *RK2 {
	return &RK2{}
}

func (r *RK2) Name() string { return "rk2" }

func (r *RK2) ensureScratch(n int) {
	r.acc = grow(r.acc, n)
	r.mid = grow(r.mid, n)
}

func (r *RK2) Step(e *atoms.Ensemble, pot potential.Potential, dt float64) {
	n := len(e.Pos)
	r.ensureScratch(n)

	pot.Accelerations(e, r.acc)
	half := 0.5 * dt
	for i := 0; i < n; i++ {
		r.mid[i] = e.Pos[i] + half*e.Vel[i]
	}
	// velocity at the midpoint, before acc is overwritten
	for i := 0; i < n; i++ {
		e.Pos[i] += dt * (e.Vel[i] + half*r.acc[i])
	}
	pot.Accelerations(probe(e, r.mid), r.acc)
	for i := 0; i < n; i++ {
		e.Vel[i] += dt * r.acc[i]
	}
}
