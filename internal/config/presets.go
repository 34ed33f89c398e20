package config

import "sort"

func preset(edit func(*Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

// Presets holds named starting points per potential.
var Presets = map[string]map[string]*Config{
	"quadrupole": {
		"evaporation": preset(func(c *Config) {
			c.Atoms.Number = 20000
			c.Atoms.Temperature = 2e-4
			c.Potential.Depth = 4e6
			c.Simulation.Duration = 2
		}),
		"majorana": preset(func(c *Config) {
			c.Atoms.Temperature = 1e-5
			c.Atoms.Radius = 1e-4
			c.Potential.GradB = 2e3
			c.Simulation.Duration = 0.5
		}),
		"collisionless": preset(func(c *Config) {
			c.Simulation.Collisions = false
			c.Simulation.Duration = 0.2
		}),
	},
	"harmonic": {
		"thermalization": preset(func(c *Config) {
			c.Potential.Type = "harmonic"
			c.Potential.NuX, c.Potential.NuY, c.Potential.NuZ = 50, 50, 200
			c.Atoms.Temperature = 1e-5
			c.Atoms.Radius = 1e-4
			c.Atoms.CrossSection = 1e-12
			c.Simulation.Duration = 0.5
		}),
		"oscillation": preset(func(c *Config) {
			c.Potential.Type = "harmonic"
			c.Potential.Gravity = 0
			c.Atoms.Number = 1000
			c.Simulation.Collisions = false
			c.Simulation.Integrator = "verlet"
			c.Simulation.Duration = 0.1
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(potential, name string) *Config {
	potentialPresets, ok := Presets[potential]
	if !ok {
		return nil
	}
	cfg, ok := potentialPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the preset names of a potential in sorted order.
func ListPresets(potential string) []string {
	potentialPresets, ok := Presets[potential]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(potentialPresets))
	for name := range potentialPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
