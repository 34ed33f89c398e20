package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/experiment"
	"github.com/san-kum/coldsim/internal/metrics"
	"github.com/san-kum/coldsim/internal/sim"
	"github.com/san-kum/coldsim/internal/storage"
	"github.com/san-kum/coldsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if replicas < 1 {
		return fmt.Errorf("replicas must be at least 1, got %d", replicas)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := []sim.Option{sim.WithLogger(logger)}
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, sim.WithObserver(metrics.NewRecorder(reg)))
		go func() {
			if err := metrics.Serve(ctx, metricsAddr, reg, logger); err != nil {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	exp := experiment.New(cfg)
	out := cmd.OutOrStdout()
	if replicas > 1 {
		return runReplicas(ctx, out, exp, st, opts, logger)
	}

	if !quiet {
		fmt.Fprintln(out, "# "+strings.Join(sim.Columns, "\t"))
		opts = append(opts, sim.WithObserver(measurementPrinter(out)))
	}
	if err := exp.Setup(opts...); err != nil {
		return err
	}

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	id, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	logger.Info("run stored", "id", id, "elapsed", time.Since(start).Round(time.Millisecond))
	printSummary(out, result)
	fmt.Fprintf(out, "run saved: %s\n", id)
	return nil
}

func runReplicas(ctx context.Context, out io.Writer, exp *experiment.Experiment, st *storage.Store, opts []sim.Option, logger *log.Logger) error {
	cfg := exp.Config()
	results, err := exp.RunReplicas(ctx, replicas, opts...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEED\tFINAL_N\tFINAL_T\tCOLLISIONS")
	temps := make([]float64, 0, len(results))
	for i, res := range results {
		c := *cfg
		c.Simulation.Seed = cfg.Simulation.Seed + uint64(i)
		id, err := st.Save(&c, res)
		if err != nil {
			return err
		}
		final := res.Final()
		temps = append(temps, final.Temperature)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4e\t%d\n", id, c.Simulation.Seed, final.N, final.Temperature, res.Collisions)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := stat.MeanStdDev(temps, nil)
	logger.Info("replicas finished", "n", len(results))
	fmt.Fprintf(out, "final temperature: %.4e ± %.1e K\n", mean, std)
	return nil
}

// measurementPrinter writes one tab separated line per measurement in
// sim.Columns order.
func measurementPrinter(w io.Writer) sim.Observer {
	return sim.ObserverFunc(func(m sim.Measurement) {
		fmt.Fprintln(w, measurementLine(m))
	})
}

func measurementLine(m sim.Measurement) string {
	vals := m.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(parts, "\t")
}

func printSummary(out io.Writer, result *sim.Result) {
	final := result.Final()
	fmt.Fprintf(out, "steps: %d, events: %d, collisions: %d\n", result.Steps, result.Events, result.Collisions)
	fmt.Fprintf(out, "losses: trap %d, vacuum %d, remaining %d\n", result.TrapLosses, result.VacuumLosses, final.N)
	fmt.Fprintf(out, "final temperature: %.4e K\n", final.Temperature)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := experiment.New(cfg).Build(cfg.Simulation.Seed)
	if err != nil {
		return err
	}
	run := func(ctx context.Context, feed *viz.Feed) (*sim.Result, error) {
		s.AddObserver(feed)
		return s.Run(ctx, experiment.SimConfig(cfg))
	}

	title := fmt.Sprintf("%s trap, %d atoms, %s", cfg.Potential.Type, cfg.Atoms.Number, cfg.Simulation.Integrator)
	model := viz.NewModel(cmd.Context(), title, cfg.Simulation.Duration, s.Ensemble(), run)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	m := final.(viz.Model)
	if !m.Done() {
		fmt.Fprintln(cmd.OutOrStdout(), "run cancelled")
		return nil
	}
	result, err := m.Result()
	if err != nil {
		return err
	}
	id, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), result)
	fmt.Fprintf(cmd.OutOrStdout(), "run saved: %s\n", id)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = config.Integrators
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL_N\tFINAL_T\tENERGY_DRIFT\tTIME_MS")

	for _, name := range names {
		c := *cfg
		c.Simulation.Integrator = name
		exp := experiment.New(&c)
		drift := metrics.NewEnergyDrift()
		if err := exp.Setup(sim.WithObserver(drift)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)

		final := result.Final()
		fmt.Fprintf(w, "%s\t%d\t%.4e\t%.2e\t%d\n", name, final.N, final.Temperature, drift.Value(), elapsed.Milliseconds())
	}
	return w.Flush()
}
