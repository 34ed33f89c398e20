package integrators

import (
	"github.com/san-kum/coldsim/internal/atoms"
	"github.com/san-kum/coldsim/internal/potential"
)

// Verlet is the velocity Verlet scheme. It is symplectic, so the trap
// energy of a collisionless cloud does not drift.
type Verlet struct {
	acc, accNew []float64
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) ensureScratch(n int) {
	v.acc = grow(v.acc, n)
	v.accNew = grow(v.accNew, n)
}

func (v *Verlet) Step(e *atoms.Ensemble, pot potential.Potential, dt float64) {
	n := len(e.Pos)
	v.ensureScratch(n)

	// collisions and losses change velocities and ordering between steps,
	// so the previous acceleration is not reused
	pot.Accelerations(e, v.acc)
	dt2 := 0.5 * dt * dt
	for i := 0; i < n; i++ {
		e.Pos[i] += e.Vel[i]*dt + v.acc[i]*dt2
	}

	pot.Accelerations(e, v.accNew)
	halfDt := 0.5 * dt
	for i := 0; i < n; i++ {
		e.Vel[i] += (v.acc[i] + v.accNew[i]) * halfDt
	}
}
