package potential

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/atoms"
)

// Quadrupole is a linear magnetic trap of finite depth. The field modulus
// grows as b' * sqrt(x^2 + y^2 + 4z^2), the strong axis being z.
type Quadrupole struct {
	Gradient float64 // Gauss/m
	Depth    float64 // RF evaporation threshold, Hz
	Gravity  float64 // m/s^2
}

func NewQuadrupole(gradient, depth, gravity float64) (*Quadrupole, error) {
	if gradient <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrGradient, gradient)
	}
	if depth <= 0 {
		depth = math.Inf(1)
	}
	return &Quadrupole{Gradient: gradient, Depth: depth, Gravity: gravity}, nil
}

func (q *Quadrupole) Name() string { return "quadrupole" }

func radius2(x, y, z float64) float64 {
	return x*x + y*y + 4*z*z
}

func (q *Quadrupole) Accelerations(e *atoms.Ensemble, acc []float64) {
	coeff := -(atoms.Planck / atoms.ProtonMass) * q.Gradient * e.Chi / e.Mass
	for i := 0; i < e.N(); i++ {
		ii := 3 * i
		x, y, z := e.Pos[ii], e.Pos[ii+1], e.Pos[ii+2]
		r := math.Sqrt(radius2(x, y, z))
		if r == 0 {
			acc[ii], acc[ii+1], acc[ii+2] = 0, 0, -q.Gravity
			continue
		}
		k := coeff / r
		acc[ii] = k * x
		acc[ii+1] = k * y
		acc[ii+2] = 4*k*z - q.Gravity
	}
}

func (q *Quadrupole) Energy(e *atoms.Ensemble) float64 {
	n := e.N()
	if n == 0 {
		return 0
	}
	var sumR, sumZ float64
	for i := 0; i < n; i++ {
		ii := 3 * i
		x, y, z := e.Pos[ii], e.Pos[ii+1], e.Pos[ii+2]
		sumR += math.Sqrt(radius2(x, y, z))
		sumZ += z
	}
	return q.Gradient*e.Chi*sumR/float64(n) + gravityEnergy(q.Gravity, e.Mass, sumZ, n)
}

// Losses removes particles beyond the RF knife, where the Zeeman energy
// reaches Depth, and particles that cross the field zero too fast to
// follow it adiabatically (Majorana spin flips).
func (q *Quadrupole) Losses(e *atoms.Ensemble) int {
	knife := q.Depth / (e.Chi * q.Gradient)
	knife *= knife
	majorana := e.Chi * q.Gradient

	lost := 0
	for i := 0; i < e.N(); {
		ii := 3 * i
		r2 := radius2(e.Pos[ii], e.Pos[ii+1], e.Pos[ii+2])
		if r2 >= knife || r3.Norm(e.Velocity(i))/r2 > majorana {
			e.Remove(i)
			lost++
			continue
		}
		i++
	}
	return lost
}
