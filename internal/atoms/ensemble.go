package atoms

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNegativeCount indicates an ensemble requested with fewer than zero particles.
	ErrNegativeCount = errors.New("atoms: negative particle count")

	// ErrSpecies indicates a species with a non-positive mass.
	ErrSpecies = errors.New("atoms: invalid species")
)

// Rand is the part of a pseudo-random generator the ensemble draws from.
// *golang.org/x/exp/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	NormFloat64() float64
}

// Species describes the physical constants shared by every particle.
type Species struct {
	Mass         float64 // proton masses
	Chi          float64 // magnetic susceptibility, Hz/Gauss
	CrossSection float64 // m^2
	VacuumRate   float64 // Hz
	Weight       float64 // physical atoms per simulated particle
}

// Rb87 is the default species: rubidium 87 in a low-field-seeking state.
func Rb87() Species {
	return Species{
		Mass:         87,
		Chi:          1.4e6,
		CrossSection: 8 * math.Pi * 5.3e-9 * 5.3e-9,
		VacuumRate:   0,
		Weight:       1,
	}
}

// Ensemble is a cloud of identical particles.
type Ensemble struct {
	Species

	Pos []float64
	Vel []float64

	// Collisions counts accepted collisions since the last measurement.
	Collisions int
	// PeakDensity is the latest peak density estimate in m^-3.
	PeakDensity float64
}

// New allocates an ensemble of n particles at rest at the origin.
func New(sp Species, n int) (*Ensemble, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, n)
	}
	if sp.Mass <= 0 {
		return nil, fmt.Errorf("%w: mass %g", ErrSpecies, sp.Mass)
	}
	if sp.Weight <= 0 {
		sp.Weight = 1
	}
	return &Ensemble{
		Species: sp,
		Pos:     make([]float64, 3*n),
		Vel:     make([]float64, 3*n),
	}, nil
}

// N returns the current particle count.
func (e *Ensemble) N() int { return len(e.Pos) / 3 }

// InitCloud draws Gaussian positions with rms radius per axis and
// Maxwell-Boltzmann velocities at the given temperature in kelvin.
func (e *Ensemble) InitCloud(temperature, radius float64, rng Rand) {
	v := e.ThermalVelocity(temperature)
	for i := range e.Pos {
		e.Pos[i] = radius * rng.NormFloat64()
		e.Vel[i] = v * rng.NormFloat64()
	}
}

// ThermalVelocity is the rms velocity per axis, sqrt(kB T / m).
func (e *Ensemble) ThermalVelocity(temperature float64) float64 {
	return math.Sqrt(Boltzmann * temperature / (e.Mass * ProtonMass))
}

func (e *Ensemble) Position(i int) r3.Vec {
	ii := 3 * i
	return r3.Vec{X: e.Pos[ii], Y: e.Pos[ii+1], Z: e.Pos[ii+2]}
}

func (e *Ensemble) Velocity(i int) r3.Vec {
	ii := 3 * i
	return r3.Vec{X: e.Vel[ii], Y: e.Vel[ii+1], Z: e.Vel[ii+2]}
}

func (e *Ensemble) SetPosition(i int, p r3.Vec) {
	ii := 3 * i
	e.Pos[ii], e.Pos[ii+1], e.Pos[ii+2] = p.X, p.Y, p.Z
}

func (e *Ensemble) SetVelocity(i int, v r3.Vec) {
	ii := 3 * i
	e.Vel[ii], e.Vel[ii+1], e.Vel[ii+2] = v.X, v.Y, v.Z
}

// Remove drops particle i by moving the last particle into its slot.
// Indices other than i and the last one are unchanged.
func (e *Ensemble) Remove(i int) {
	last := e.N() - 1
	if i != last {
		copy(e.Pos[3*i:3*i+3], e.Pos[3*last:3*last+3])
		copy(e.Vel[3*i:3*i+3], e.Vel[3*last:3*last+3])
	}
	e.Pos = e.Pos[:3*last]
	e.Vel = e.Vel[:3*last]
}

// VacuumLosses removes each particle with probability 1-exp(-rate*dt)
// and returns how many were lost.
func (e *Ensemble) VacuumLosses(dt float64, rng Rand) int {
	if e.VacuumRate <= 0 {
		return 0
	}
	p := -math.Expm1(-e.VacuumRate * dt)
	lost := 0
	for i := 0; i < e.N(); {
		if rng.Float64() < p {
			e.Remove(i)
			lost++
			continue
		}
		i++
	}
	return lost
}

// KineticEnergy returns the mean kinetic energy per particle in Hz.
func (e *Ensemble) KineticEnergy() float64 {
	n := e.N()
	if n == 0 {
		return 0
	}
	v2 := floats.Dot(e.Vel, e.Vel)
	return 0.5 * e.Mass * (ProtonMass / Planck) * v2 / float64(n)
}

// Temperature converts the mean kinetic energy to kelvin.
func (e *Ensemble) Temperature() float64 {
	return 2.0 / 3.0 * e.KineticEnergy() * Planck / Boltzmann
}

// Moments returns the mean and population variance of the positions per axis.
func (e *Ensemble) Moments() (mean, variance r3.Vec) {
	n := e.N()
	if n == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	col := make([]float64, n)
	var m, v [3]float64
	for d := 0; d < 3; d++ {
		for i := 0; i < n; i++ {
			col[i] = e.Pos[3*i+d]
		}
		m[d], v[d] = stat.PopMeanVariance(col, nil)
	}
	return r3.Vec{X: m[0], Y: m[1], Z: m[2]}, r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Momentum returns the summed velocity, proportional to total momentum.
func (e *Ensemble) Momentum() r3.Vec {
	var p r3.Vec
	for i := 0; i < e.N(); i++ {
		p = r3.Add(p, e.Velocity(i))
	}
	return p
}

// Clone returns a deep copy.
func (e *Ensemble) Clone() *Ensemble {
	c := *e
	c.Pos = append([]float64(nil), e.Pos...)
	c.Vel = append([]float64(nil), e.Vel...)
	return &c
}
