package coltree

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/atoms"
)

// Uniform draws from [0, 1). *golang.org/x/exp/rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// Compute walks the linked tree and runs one stochastic collision test per
// pair cell, over an interval dt. It returns the number of accepted
// collisions. Velocities of colliding particles are rewritten in place;
// positions are not touched. Compute links the tree first if
// UpdatePointers has not run since the last Init.
func (t *Tree) Compute(e *atoms.Ensemble, dt float64, rng Uniform) int {
	if len(t.nodes) == 0 {
		return 0
	}
	if !t.linked {
		t.UpdatePointers()
	}
	crit := 2 * dt * e.CrossSection
	hits := 0
	for n := root; n != none; {
		nd := &t.nodes[n]
		switch nd.kind {
		case pair:
			if t.collide(e, nd.a, nd.b, nd.size, crit, rng) {
				hits++
			}
			n = nd.skip
		case crowd:
			// disjoint consecutive pairs; an odd member out sits this event out
			for i := nd.a; i != none; {
				j := t.chain[i]
				if j == none {
					break
				}
				if t.collide(e, i, j, nd.size, crit, rng) {
					hits++
				}
				i = t.chain[j]
			}
			n = nd.skip
		default:
			n = nd.next
		}
	}
	return hits
}

func (t *Tree) collide(e *atoms.Ensemble, i, j int32, size, crit float64, rng Uniform) bool {
	vi, vj := e.Velocity(int(i)), e.Velocity(int(j))
	v := r3.Norm(r3.Sub(vi, vj))
	if !Accept(size*size*size, crit, v, rng.Float64()) {
		return false
	}
	vi, vj = Scatter(vi, vj, rng)
	e.SetVelocity(int(i), vi)
	e.SetVelocity(int(j), vj)
	return true
}

// Accept reports whether a pair with relative speed v in a cell of volume
// invRho collides, given the uniform draw u and crit = 2*dt*sigma.
func Accept(invRho, crit, v, u float64) bool {
	return invRho*u < crit*v
}

// Scatter returns the post-collision velocities of an elastic collision
// between equal masses. The center-of-mass velocity and the relative
// speed are preserved. The polar angle is isotropic; the azimuth pair
// (cos, sin) is drawn like the polar one, so it is not uniform in angle.
func Scatter(vi, vj r3.Vec, rng Uniform) (r3.Vec, r3.Vec) {
	cm := r3.Scale(0.5, r3.Add(vi, vj))
	half := 0.5 * r3.Norm(r3.Sub(vi, vj))

	cosTheta := 2*rng.Float64() - 1
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	cosPhi := 2*rng.Float64() - 1
	sinPhi := math.Sqrt(1 - cosPhi*cosPhi)

	d := r3.Vec{
		X: half * sinTheta * cosPhi,
		Y: half * sinTheta * sinPhi,
		Z: half * cosTheta,
	}
	return r3.Add(cm, d), r3.Sub(cm, d)
}
