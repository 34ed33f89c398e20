package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/coldsim/internal/config"
)

var (
	dataDir  string
	logLevel string

	configFile    string
	presetName    string
	potentialName string
	integrator    string
	numAtoms      int
	dt            float64
	dtOut         float64
	dtEvent       float64
	duration      float64
	seed          uint64
	sigma         float64
	noCollisions  bool

	metricsAddr string
	replicas    int
	quiet       bool

	field  string
	output string

	xField    string
	yField    string
	sweeps    []string
	objective string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coldsim",
		Short:         "direct simulation Monte Carlo of cold atoms in magnetic traps",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".coldsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its measurements",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address during the run")
	runCmd.Flags().IntVar(&replicas, "replicas", 1, "independent runs with consecutive seeds")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print measurements")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal dashboard",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "run the same cloud with each integrator and compare energy drift",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	configCmd := &cobra.Command{
		Use:   "config [file]",
		Short: "write the resolved configuration (INI for .ini/.cfg/.gcfg, YAML otherwise)",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one measurement column of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "n", "column to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run measurements to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and measurements to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export one measurement column of a run as an SVG plot",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&field, "field", "n", "column to plot")
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [potential]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			potentials := config.Potentials
			if len(args) == 1 {
				if !slices.Contains(config.Potentials, args[0]) {
					return fmt.Errorf("unknown potential: %s (available: %v)", args[0], config.Potentials)
				}
				potentials = args[:1]
			}
			for _, p := range potentials {
				fmt.Fprintf(out, "presets for %s:\n", p)
				for _, name := range config.ListPresets(p) {
					fmt.Fprintf(out, "  %s\n", name)
				}
			}
			return nil
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "trap oscillation frequencies and loss rate of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one measurement column against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xField, "x", "var_z", "column for the x axis")
	phaseCmd.Flags().StringVar(&yField, "y", "temperature", "column for the y axis")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over config parameters for the best objective",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweeps, "param", nil, "parameter grid as key=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&objective, "objective", "psd", "objective to minimize (atoms, psd, temperature)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a multi-stage YAML scenario and store every stage",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addSimFlags(scenarioCmd)

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, configCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd,
		analyzeCmd, phaseCmd, sweepCmd, scenarioCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	f.StringVar(&presetName, "preset", "", "use preset configuration")
	f.StringVar(&potentialName, "potential", def.Potential.Type, "trap potential (quadrupole, harmonic)")
	f.StringVar(&integrator, "integrator", def.Simulation.Integrator, "integrator (rk2, rk4, verlet)")
	f.IntVar(&numAtoms, "atoms", def.Atoms.Number, "number of simulated particles")
	f.Float64Var(&dt, "dt", def.Simulation.Dt, "integration step in seconds")
	f.Float64Var(&dtOut, "dt-out", def.Simulation.DtOut, "measurement interval in seconds")
	f.Float64Var(&dtEvent, "dt-event", def.Simulation.DtEvent, "initial collision event interval in seconds")
	f.Float64Var(&duration, "time", def.Simulation.Duration, "simulated duration in seconds")
	f.Uint64Var(&seed, "seed", def.Simulation.Seed, "random seed")
	f.Float64Var(&sigma, "sigma", def.Atoms.CrossSection, "collision cross section in m^2")
	f.BoolVar(&noCollisions, "no-collisions", false, "disable collisions")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.DefaultConfig()

	if presetName != "" {
		var p *config.Config
		if flags.Changed("potential") {
			p = config.GetPreset(potentialName, presetName)
		} else {
			for _, pot := range config.Potentials {
				if p = config.GetPreset(pot, presetName); p != nil {
					break
				}
			}
		}
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets(potentialName))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("potential") {
		cfg.Potential.Type = potentialName
	}
	if flags.Changed("integrator") {
		cfg.Simulation.Integrator = integrator
	}
	if flags.Changed("atoms") {
		cfg.Atoms.Number = numAtoms
	}
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("dt-out") {
		cfg.Simulation.DtOut = dtOut
	}
	if flags.Changed("dt-event") {
		cfg.Simulation.DtEvent = dtEvent
	}
	if flags.Changed("time") {
		cfg.Simulation.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("sigma") {
		cfg.Atoms.CrossSection = sigma
	}
	if noCollisions {
		cfg.Simulation.Collisions = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "coldsim",
		ReportTimestamp: true,
	}), nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "config written: %s\n", args[0])
	return nil
}
