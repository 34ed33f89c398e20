// Package potential models the external traps that confine an ensemble.
//
// Energies are expressed in Hz (E/h) and masses in proton masses, the
// units used throughout internal/atoms.
package potential

import (
	"errors"

	"github.com/san-kum/coldsim/internal/atoms"
)

// StandardGravity is the default gravitational acceleration in m/s^2.
const StandardGravity = 9.81

var (
	// ErrGradient indicates a quadrupole with a non-positive field gradient.
	ErrGradient = errors.New("potential: gradient must be positive")

	// ErrFrequency indicates a harmonic trap with a negative frequency.
	ErrFrequency = errors.New("potential: frequency must not be negative")
)

// Potential is an external trap acting on every particle of an ensemble.
type Potential interface {
	// Accelerations writes the acceleration of every particle into acc,
	// which must hold 3*N values.
	Accelerations(e *atoms.Ensemble, acc []float64)
	// Energy returns the mean potential energy per particle in Hz.
	Energy(e *atoms.Ensemble) float64
	// Losses removes the particles the trap can no longer hold and
	// returns how many were removed.
	Losses(e *atoms.Ensemble) int
	Name() string
}

// gravityEnergy converts the summed height of n particles into a mean
// gravitational energy in Hz.
func gravityEnergy(g, mass, sumZ float64, n int) float64 {
	return g * mass * (atoms.ProtonMass / atoms.Planck) * sumZ / float64(n)
}
