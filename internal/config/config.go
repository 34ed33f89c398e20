package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/coldsim/internal/atoms"
)

const (
	DefaultDt       = 1e-5
	DefaultDtOut    = 1e-3
	DefaultDtEvent  = 1e-4
	DefaultDuration = 1.0
	DefaultAtoms    = 10000
	DefaultGradB    = 6.7e3
	DefaultDepth    = 1e7
	DefaultNu       = 100.0
	DefaultGravity  = 9.81
	DefaultTreeSize = 1.0
	DefaultMaxDepth = 40
)

// ErrInvalid indicates a configuration value out of range.
var ErrInvalid = errors.New("config: invalid value")

// Known component names.
var (
	Potentials  = []string{"quadrupole", "harmonic"}
	Integrators = []string{"rk2", "rk4", "verlet"}
)

type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Atoms      AtomsConfig      `yaml:"atoms"`
	Potential  PotentialConfig  `yaml:"potential"`
	Tree       TreeConfig       `yaml:"tree"`
}

type SimulationConfig struct {
	Integrator string  `yaml:"integrator" gcfg:"integrator"`
	Duration   float64 `yaml:"duration" gcfg:"time"`
	Dt         float64 `yaml:"dt" gcfg:"dt"`
	DtOut      float64 `yaml:"dt_out" gcfg:"dtOut"`
	DtEvent    float64 `yaml:"dt_event" gcfg:"dtEvent"`
	Seed       uint64  `yaml:"seed" gcfg:"seed"`
	Collisions bool    `yaml:"collisions" gcfg:"collisions"`
}

type AtomsConfig struct {
	Number       int     `yaml:"number" gcfg:"n"`
	Mass         float64 `yaml:"mass" gcfg:"mass"`
	Chi          float64 `yaml:"chi" gcfg:"chi"`
	CrossSection float64 `yaml:"cross_section" gcfg:"sigma"`
	VacuumRate   float64 `yaml:"vacuum_rate" gcfg:"vacuumRate"`
	Weight       float64 `yaml:"weight" gcfg:"weight"`
	Temperature  float64 `yaml:"temperature" gcfg:"temperature"`
	Radius       float64 `yaml:"radius" gcfg:"radius"`
}

type PotentialConfig struct {
	Type    string  `yaml:"type" gcfg:"type"`
	Gravity float64 `yaml:"gravity" gcfg:"gravity"`
	GradB   float64 `yaml:"grad_b" gcfg:"gradB"`
	Depth   float64 `yaml:"depth" gcfg:"depth"`
	NuX     float64 `yaml:"nu_x" gcfg:"nu-x"`
	NuY     float64 `yaml:"nu_y" gcfg:"nu-y"`
	NuZ     float64 `yaml:"nu_z" gcfg:"nu-z"`
}

type TreeConfig struct {
	Size     float64 `yaml:"size" gcfg:"size"`
	MaxDepth int     `yaml:"max_depth" gcfg:"maxDepth"`
}

func DefaultConfig() *Config {
	rb := atoms.Rb87()
	return &Config{
		Simulation: SimulationConfig{
			Integrator: "rk4",
			Duration:   DefaultDuration,
			Dt:         DefaultDt,
			DtOut:      DefaultDtOut,
			DtEvent:    DefaultDtEvent,
			Seed:       1,
			Collisions: true,
		},
		Atoms: AtomsConfig{
			Number:       DefaultAtoms,
			Mass:         rb.Mass,
			Chi:          rb.Chi,
			CrossSection: rb.CrossSection,
			Weight:       rb.Weight,
			Temperature:  1e-4,
			Radius:       1e-3,
		},
		Potential: PotentialConfig{
			Type:    "quadrupole",
			Gravity: DefaultGravity,
			GradB:   DefaultGradB,
			Depth:   DefaultDepth,
			NuX:     DefaultNu,
			NuY:     DefaultNu,
			NuZ:     DefaultNu,
		},
		Tree: TreeConfig{
			Size:     DefaultTreeSize,
			MaxDepth: DefaultMaxDepth,
		},
	}
}

// IsINI reports whether path names an INI-style file.
func IsINI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg", ".gcfg":
		return true
	}
	return false
}

// Load reads a YAML or INI file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if IsINI(path) {
		if err := gcfg.ReadFileInto(cfg, path); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as INI or YAML depending on the extension of path.
func Save(path string, cfg *Config) error {
	var data []byte
	if IsINI(path) {
		var b strings.Builder
		if err := cfg.WriteINI(&b); err != nil {
			return err
		}
		data = []byte(b.String())
	} else {
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(key string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, key, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	s := c.Simulation
	switch {
	case s.Dt <= 0:
		return invalid("simulation.dt", "must be positive, got %g", s.Dt)
	case s.Duration <= 0:
		return invalid("simulation.duration", "must be positive, got %g", s.Duration)
	case s.DtOut < s.Dt:
		return invalid("simulation.dt_out", "%g is shorter than dt %g", s.DtOut, s.Dt)
	case s.Collisions && (s.DtEvent < s.Dt || s.DtEvent > s.DtOut):
		return invalid("simulation.dt_event", "%g outside [%g, %g]", s.DtEvent, s.Dt, s.DtOut)
	case !slices.Contains(Integrators, s.Integrator):
		return invalid("simulation.integrator", "unknown %q, want one of %v", s.Integrator, Integrators)
	}

	a := c.Atoms
	switch {
	case a.Number <= 0:
		return invalid("atoms.number", "must be positive, got %d", a.Number)
	case a.Mass <= 0:
		return invalid("atoms.mass", "must be positive, got %g", a.Mass)
	case a.CrossSection < 0:
		return invalid("atoms.cross_section", "must not be negative, got %g", a.CrossSection)
	case a.VacuumRate < 0:
		return invalid("atoms.vacuum_rate", "must not be negative, got %g", a.VacuumRate)
	case a.Temperature < 0:
		return invalid("atoms.temperature", "must not be negative, got %g", a.Temperature)
	case a.Radius < 0:
		return invalid("atoms.radius", "must not be negative, got %g", a.Radius)
	}

	p := c.Potential
	if !slices.Contains(Potentials, p.Type) {
		return invalid("potential.type", "unknown %q, want one of %v", p.Type, Potentials)
	}
	if p.Type == "quadrupole" && p.GradB <= 0 {
		return invalid("potential.grad_b", "must be positive, got %g", p.GradB)
	}

	if c.Tree.Size <= 0 {
		return invalid("tree.size", "must be positive, got %g", c.Tree.Size)
	}
	if c.Tree.MaxDepth <= 0 || c.Tree.MaxDepth > 60 {
		return invalid("tree.max_depth", "must be in [1, 60], got %d", c.Tree.MaxDepth)
	}
	return nil
}
