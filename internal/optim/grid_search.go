// Package optim searches configuration space for the run that minimizes
// an objective, such as the RF knife depth that yields the highest
// phase-space density after evaporation.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/experiment"
	"github.com/san-kum/coldsim/internal/sim"
)

var ErrUnknownObjective = errors.New("optim: unknown objective")

// Objective scores a run; lower is better.
type Objective func(*sim.Result) float64

// Objectives are the named scores accepted by the sweep command.
var Objectives = map[string]Objective{
	"temperature": func(r *sim.Result) float64 { return r.Final().Temperature },
	"atoms":       func(r *sim.Result) float64 { return -float64(r.Final().N) },
	// N/T^3 scales like the peak phase-space density in a harmonic trap
	"psd": func(r *sim.Result) float64 {
		f := r.Final()
		if f.N == 0 || f.Temperature <= 0 {
			return 0
		}
		return -float64(f.N) / math.Pow(f.Temperature, 3)
	},
}

func GetObjective(name string) (Objective, error) {
	o, ok := Objectives[name]
	if !ok {
		names := make([]string, 0, len(Objectives))
		for k := range Objectives {
			names = append(names, k)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownObjective, name, names)
	}
	return o, nil
}

// Trial is one evaluated grid point. Err is set when the point could not
// be built or run; its Value is then +Inf.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch checks that every name is a config parameter key with at
// least one value.
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters for %d ranges", len(params), len(ranges))
	}
	probe := config.DefaultConfig()
	for i, name := range params {
		if _, err := probe.Get(name); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: no values for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points returns every combination in row-major order, the last parameter
// varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.collect(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*out = append(*out, point)
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.collect(depth+1, current, out)
	}
	delete(current, name)
}

// Search runs every grid point on a copy of base, in parallel, and returns
// the best trial followed by all trials in grid order. Points that fail to
// validate or run are reported, not fatal; cancellation is.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (Trial, []Trial, error) {
	points := g.Points()
	trials := make([]Trial, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, point := range points {
		i, point := i, point
		eg.Go(func() error {
			trials[i] = evaluate(ctx, base, point, objective)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Value: math.Inf(1)}
	for _, t := range trials {
		if t.Err == nil && (best.Params == nil || t.Value < best.Value) {
			best = t
		}
	}
	if best.Params == nil {
		return best, trials, fmt.Errorf("optim: every grid point failed: %w", trials[0].Err)
	}
	return best, trials, nil
}

func evaluate(ctx context.Context, base *config.Config, point map[string]float64, objective Objective) Trial {
	trial := Trial{Params: point, Value: math.Inf(1)}
	cfg := *base
	for k, v := range point {
		if err := cfg.Set(k, v); err != nil {
			trial.Err = err
			return trial
		}
	}

	exp := experiment.New(&cfg)
	if err := exp.Setup(); err != nil {
		trial.Err = err
		return trial
	}
	result, err := exp.Run(ctx)
	if err != nil {
		trial.Err = err
		return trial
	}
	trial.Value = objective(result)
	return trial
}
