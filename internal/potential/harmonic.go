package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/coldsim/internal/atoms"
)

// Harmonic is an anisotropic harmonic trap with no losses.
type Harmonic struct {
	Nu      [3]float64 // trap frequencies per axis, Hz
	Gravity float64    // m/s^2

	omega2 [3]float64
}

func NewHarmonic(nu [3]float64, gravity float64) (*Harmonic, error) {
	h := &Harmonic{Nu: nu, Gravity: gravity}
	for d, f := range nu {
		if f < 0 {
			return nil, fmt.Errorf("%w: axis %d: %g", ErrFrequency, d, f)
		}
		w := 2 * math.Pi * f
		h.omega2[d] = w * w
	}
	return h, nil
}

func (h *Harmonic) Name() string { return "harmonic" }

// Omega2 returns the squared angular frequency of each axis.
func (h *Harmonic) Omega2() [3]float64 { return h.omega2 }

func (h *Harmonic) Accelerations(e *atoms.Ensemble, acc []float64) {
	for i := 0; i < e.N(); i++ {
		ii := 3 * i
		for d := 0; d < 3; d++ {
			acc[ii+d] = -h.omega2[d] * e.Pos[ii+d]
		}
		acc[ii+2] -= h.Gravity
	}
}

func (h *Harmonic) Energy(e *atoms.Ensemble) float64 {
	n := e.N()
	if n == 0 {
		return 0
	}
	var spring, sumZ float64
	for i := 0; i < n; i++ {
		ii := 3 * i
		for d := 0; d < 3; d++ {
			x := e.Pos[ii+d]
			spring += h.omega2[d] * x * x
		}
		sumZ += e.Pos[ii+2]
	}
	spring *= 0.5 * e.Mass * (atoms.ProtonMass / atoms.Planck) / float64(n)
	return spring + gravityEnergy(h.Gravity, e.Mass, sumZ, n)
}

func (h *Harmonic) Losses(*atoms.Ensemble) int { return 0 }
