package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/coldsim/internal/analysis"
	"github.com/san-kum/coldsim/internal/export"
	"github.com/san-kum/coldsim/internal/sim"
	"github.com/san-kum/coldsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOTENTIAL\tINTEGRATOR\tATOMS\tFINAL_N\tFINAL_T\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3e\t%s\n",
			run.ID, run.Potential, run.Integrator, run.Atoms,
			run.Summary.FinalAtoms, run.Summary.FinalTemperature,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	if !slices.Contains(sim.Columns, field) {
		return fmt.Errorf("unknown field: %s (available: %v)", field, sim.Columns)
	}

	st := storage.New(dataDir)
	ms, err := st.LoadMeasurements(args[0])
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		return fmt.Errorf("run %s has no measurements", args[0])
	}

	data := make([]float64, len(ms))
	for i, m := range ms {
		data[i], _ = m.Field(field)
	}

	caption := fmt.Sprintf("%s vs time (%s, t = %g..%g s)", field, args[0], ms[0].Time, ms[len(ms)-1].Time)
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// outputWriter opens --output, falling back to the command's stdout.
func outputWriter(cmd *cobra.Command) (io.Writer, func() error, error) {
	if output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ms, err := st.LoadMeasurements(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, ms); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	ms, err := st.LoadMeasurements(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, ms); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	if !slices.Contains(sim.Columns, field) {
		return fmt.Errorf("unknown field: %s (available: %v)", field, sim.Columns)
	}

	st := storage.New(dataDir)
	ms, err := st.LoadMeasurements(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	opts := export.PlotOptions{Title: fmt.Sprintf("%s vs time (%s)", field, args[0])}
	if err := export.PlotSVG(w, analysis.Column(ms, "time"), analysis.Column(ms, field), opts); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}
