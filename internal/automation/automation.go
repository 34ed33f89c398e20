// Package automation runs scripted multi-stage experiments described in
// YAML, such as a staged RF evaporation where each stage lowers the knife
// and continues the cloud of the previous one.
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/experiment"
	"github.com/san-kum/coldsim/internal/sim"
)

var ErrScenario = errors.New("automation: invalid scenario")

// Scenario defines a scripted simulation sequence. Settings carry over
// from one step to the next; the first step starts from Preset (looked up
// across all potentials) or from the base configuration.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single stage. Set takes dotted config keys as
// accepted by config.Config.Set. With Continue the stage evolves the
// particles left by the previous stage instead of a fresh cloud.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Potential  string             `yaml:"potential"`
	Integrator string             `yaml:"integrator"`
	Collisions *bool              `yaml:"collisions"`
	Set        map[string]float64 `yaml:"set"`
	Continue   bool               `yaml:"continue"`
}

// StepResult is the outcome of one stage. Offset is the simulated time at
// which the stage started, counting from the first stage.
type StepResult struct {
	Name   string
	Offset float64
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScenario, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrScenario)
	}
	if s.Steps[0].Continue {
		return fmt.Errorf("%w: first step cannot continue", ErrScenario)
	}
	if s.Preset != "" && findPreset(s.Preset) == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrScenario, s.Preset)
	}
	return nil
}

func findPreset(name string) *config.Config {
	for _, pot := range config.Potentials {
		if cfg := config.GetPreset(pot, name); cfg != nil {
			return cfg
		}
	}
	return nil
}

// stepConfig applies a step on top of the previous configuration.
func stepConfig(prev config.Config, step ScenarioStep) (*config.Config, error) {
	cfg := prev
	if step.Potential != "" {
		cfg.Potential.Type = step.Potential
	}
	if step.Integrator != "" {
		cfg.Simulation.Integrator = step.Integrator
	}
	if step.Collisions != nil {
		cfg.Simulation.Collisions = *step.Collisions
	}

	keys := make([]string, 0, len(step.Set))
	for k := range step.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cfg.Set(k, step.Set[k]); err != nil {
			return nil, err
		}
	}
	return &cfg, cfg.Validate()
}

// RunScenario executes all steps in order. opts are applied to every
// stage's simulator. The results of completed stages are returned along
// with the first error.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, logger *log.Logger, opts ...sim.Option) ([]StepResult, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cfg := base
	if scenario.Preset != "" {
		cfg = findPreset(scenario.Preset)
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	var prev *experiment.Experiment
	offset := 0.0

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", name, "continue", step.Continue)

		stepCfg, err := stepConfig(*cfg, step)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		exp := experiment.New(stepCfg)
		if step.Continue {
			err = exp.Resume(prev.GetSimulator().Ensemble(), opts...)
		} else {
			err = exp.Setup(opts...)
		}
		if err != nil {
			return results, fmt.Errorf("step %d (%s) setup: %w", i+1, name, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		results = append(results, StepResult{Name: name, Offset: offset, Config: stepCfg, Result: result})
		offset += result.Final().Time
		prev, cfg = exp, stepCfg
	}
	return results, nil
}
