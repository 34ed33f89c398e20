package integrators

import (
	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/potential"
)

// RK4 is the classical fourth-order Runge-Kutta method applied to
// x'' = a(x) with state (x, v).
type RK4 struct {
	k1, k2, k3, k4 []float64 // accelerations
	scratch        []float64 // trial positions
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	r.k1 = grow(r.k1, n)
	r.k2 = grow(r.k2, n)
	r.k3 = grow(r.k3, n)
	r.k4 = grow(r.k4, n)
	r.scratch = grow(r.scratch, n)
}

func (r *RK4) Step(e *atoms.Ensemble, pot potential.Potential, dt float64) {
	n := len(e.Pos)
	r.ensureScratch(n)
	x, v := e.Pos, e.Vel
	view := probe(e, r.scratch)
	half := 0.5 * dt

	pot.Accelerations(e, r.k1)

	// position slopes are v, v+h/2*k1, v+h/2*k2, v+h*k3
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + half*v[i]
	}
	pot.Accelerations(view, r.k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + half*(v[i]+half*r.k1[i])
	}
	pot.Accelerations(view, r.k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*(v[i]+half*r.k2[i])
	}
	pot.Accelerations(view, r.k4)

	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		x[i] += dt * (v[i] + dt6*(r.k1[i]+r.k2[i]+r.k3[i]))
		v[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
}
