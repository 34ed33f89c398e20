package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/integrators"
	"github.com/san-kum/coldsim/internal/potential"
)

var (
	ErrUnknownPotential  = errors.New("experiment: unknown potential")
	ErrUnknownIntegrator = errors.New("experiment: unknown integrator")
)

type Registry struct {
	potentials  map[string]func(config.PotentialConfig) (potential.Potential, error)
	integrators map[string]func() integrators.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		potentials:  make(map[string]func(config.PotentialConfig) (potential.Potential, error)),
		integrators: make(map[string]func() integrators.Stepper),
	}

	r.potentials["quadrupole"] = func(p config.PotentialConfig) (potential.Potential, error) {
		return potential.NewQuadrupole(p.GradB, p.Depth, p.Gravity)
	}
	r.potentials["harmonic"] = func(p config.PotentialConfig) (potential.Potential, error) {
		return potential.NewHarmonic([3]float64{p.NuX, p.NuY, p.NuZ}, p.Gravity)
	}

	r.integrators["rk2"] = func() integrators.Stepper { return integrators.NewRK2() }
	r.integrators["rk4"] = func() integrators.Stepper { return integrators.NewRK4() }
	r.integrators["verlet"] = func() integrators.Stepper { return integrators.NewVerlet() }

	return r
}

func (r *Registry) GetPotential(p config.PotentialConfig) (potential.Potential, error) {
	fn, ok := r.potentials[p.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPotential, p.Type)
	}
	return fn(p)
}

func (r *Registry) GetIntegrator(name string) (integrators.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) ListPotentials() []string { return sortedKeys(r.potentials) }

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
