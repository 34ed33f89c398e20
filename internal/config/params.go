package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownParam is returned for a key Set and Get do not know.
var ErrUnknownParam = errors.New("config: unknown parameter")

var floatParams = map[string]func(*Config) *float64{
	"simulation.duration":  func(c *Config) *float64 { return &c.Simulation.Duration },
	"simulation.dt":        func(c *Config) *float64 { return &c.Simulation.Dt },
	"simulation.dt_out":    func(c *Config) *float64 { return &c.Simulation.DtOut },
	"simulation.dt_event":  func(c *Config) *float64 { return &c.Simulation.DtEvent },
	"atoms.mass":           func(c *Config) *float64 { return &c.Atoms.Mass },
	"atoms.chi":            func(c *Config) *float64 { return &c.Atoms.Chi },
	"atoms.cross_section":  func(c *Config) *float64 { return &c.Atoms.CrossSection },
	"atoms.vacuum_rate":    func(c *Config) *float64 { return &c.Atoms.VacuumRate },
	"atoms.weight":         func(c *Config) *float64 { return &c.Atoms.Weight },
	"atoms.temperature":    func(c *Config) *float64 { return &c.Atoms.Temperature },
	"atoms.radius":         func(c *Config) *float64 { return &c.Atoms.Radius },
	"potential.gravity":    func(c *Config) *float64 { return &c.Potential.Gravity },
	"potential.grad_b":     func(c *Config) *float64 { return &c.Potential.GradB },
	"potential.depth":      func(c *Config) *float64 { return &c.Potential.Depth },
	"potential.nu_x":       func(c *Config) *float64 { return &c.Potential.NuX },
	"potential.nu_y":       func(c *Config) *float64 { return &c.Potential.NuY },
	"potential.nu_z":       func(c *Config) *float64 { return &c.Potential.NuZ },
	"tree.size":            func(c *Config) *float64 { return &c.Tree.Size },
}

var intParams = map[string]func(*Config) *int{
	"atoms.number":   func(c *Config) *int { return &c.Atoms.Number },
	"tree.max_depth": func(c *Config) *int { return &c.Tree.MaxDepth },
}

// ParamKeys lists the numeric keys accepted by Set, sorted.
func ParamKeys() []string {
	keys := make([]string, 0, len(floatParams)+len(intParams)+1)
	for k := range floatParams {
		keys = append(keys, k)
	}
	for k := range intParams {
		keys = append(keys, k)
	}
	keys = append(keys, "simulation.seed")
	sort.Strings(keys)
	return keys
}

// Set assigns a numeric parameter by its dotted YAML key. Integer keys
// reject values with a fractional part.
func (c *Config) Set(key string, value float64) error {
	if p, ok := floatParams[key]; ok {
		*p(c) = value
		return nil
	}
	if value != math.Trunc(value) {
		if _, ok := intParams[key]; ok || key == "simulation.seed" {
			return fmt.Errorf("%w: %s: %g is not an integer", ErrInvalid, key, value)
		}
	}
	if p, ok := intParams[key]; ok {
		*p(c) = int(value)
		return nil
	}
	if key == "simulation.seed" {
		if value < 0 {
			return fmt.Errorf("%w: %s: must not be negative", ErrInvalid, key)
		}
		c.Simulation.Seed = uint64(value)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownParam, key)
}

// Get reads a numeric parameter by its dotted YAML key.
func (c *Config) Get(key string) (float64, error) {
	if p, ok := floatParams[key]; ok {
		return *p(c), nil
	}
	if p, ok := intParams[key]; ok {
		return float64(*p(c)), nil
	}
	if key == "simulation.seed" {
		return float64(c.Simulation.Seed), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownParam, key)
}

// ParseAssignment splits "key=v1,v2,..." into the key and its values.
func ParseAssignment(s string) (string, []float64, error) {
	key, list, ok := strings.Cut(s, "=")
	if !ok || key == "" || list == "" {
		return "", nil, fmt.Errorf("%w: want key=value[,value...], got %q", ErrInvalid, s)
	}
	fields := strings.Split(list, ",")
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}
		values = append(values, v)
	}
	return strings.TrimSpace(key), values, nil
}
