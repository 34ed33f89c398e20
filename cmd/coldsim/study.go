package main

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/coldsim/internal/analysis"
	"github.com/san-kum/coldsim/internal/automation"
	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/optim"
	"github.com/san-kum/coldsim/internal/sim"
	"github.com/san-kum/coldsim/internal/storage"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ms, err := st.LoadMeasurements(args[0])
	if err != nil {
		return err
	}
	report, err := analysis.Analyze(ms)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d samples over %.4g s\n\n", args[0], report.Samples, report.Duration)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tFREQUENCY_HZ\tAMPLITUDE")
	for _, o := range report.Oscillations {
		fmt.Fprintf(w, "%s\t%.2f\t%.3e\n", o.Field, o.Frequency, o.Amplitude)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nloss rate: %.4g Hz (lifetime %.4g s, %d points)\n", report.Loss.Rate, report.Loss.Lifetime, report.Loss.Points)
	fmt.Fprintf(out, "temperature: %.4e -> %.4e K\n", report.TempStart, report.TempEnd)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	for _, f := range []string{xField, yField} {
		if !slices.Contains(sim.Columns, f) {
			return fmt.Errorf("unknown field: %s (available: %v)", f, sim.Columns)
		}
	}

	st := storage.New(dataDir)
	ms, err := st.LoadMeasurements(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s vs %s (o start, * end)\n", yField, xField)
	fmt.Fprint(out, analysis.PortraitToASCII(analysis.Portrait(ms, xField, yField), 60, 20))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweeps) == 0 {
		return fmt.Errorf("at least one --param key=v1,v2,... is required (keys: %s)", strings.Join(config.ParamKeys(), ", "))
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	obj, err := optim.GetObjective(objective)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweeps))
	ranges := make([][]float64, 0, len(sweeps))
	for _, s := range sweeps {
		key, values, err := config.ParseAssignment(s)
		if err != nil {
			return err
		}
		names = append(names, key)
		ranges = append(ranges, values)
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	best, trials, err := grid.Search(cmd.Context(), cfg, obj)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(objective))
	for _, t := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", t.Params[n])
		}
		if t.Err != nil {
			fmt.Fprintf(w, "error: %v\n", t.Err)
			continue
		}
		fmt.Fprintf(w, "%.4e\n", t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "best: %s (%s = %.4e)\n", formatParams(best.Params), objective, best.Value)
	return nil
}

func formatParams(p map[string]float64) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, runErr := automation.RunScenario(cmd.Context(), sc, base, logger)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTART_S\tFINAL_N\tFINAL_T\tCOLLISIONS\tID")
	for _, r := range results {
		id, err := st.Save(r.Config, r.Result)
		if err != nil {
			return err
		}
		final := r.Result.Final()
		fmt.Fprintf(w, "%s\t%.4g\t%d\t%.4e\t%d\t%s\n", r.Name, r.Offset, final.N, final.Temperature, r.Result.Collisions, id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
