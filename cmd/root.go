package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/observatory-sim/observatory-sim/sim"
	"github.com/observatory-sim/observatory-sim/sim/cluster"
	"github.com/observatory-sim/observatory-sim/sim/trace"
	"github.com/observatory-sim/observatory-sim/sim/workload"
)

var (
	configPath      string  // Path to the key/value or YAML configuration file
	configFormat    string  // auto, kv or yaml
	speedFactor     float64 // Global speed factor dividing every simulated delay
	roundIntervalMs uint64  // Unscaled pause between client rounds
	maxRounds       int     // Rounds per client (0 = run until interrupted)
	logLevel        string  // Log verbosity level
	debugLog        bool    // Write logs to output.log instead of stdout
	traceOut        string  // Optional CSV trace output path
	metricsAddr     string  // Optional listen address for /metrics and /api/summary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "observatory-sim",
	Short: "Concurrent simulation of observatories distributing work to servers",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the observatory simulation",
	Run: func(cmd *cobra.Command, args []string) {
		closer, err := configureLogging(logLevel, debugLog, debugLogFile)
		if err != nil {
			logrus.Fatalf("Could not set up logging: %v", err)
		}
		defer func() { _ = closer.Close() }()

		logrus.Info("Loading configuration")
		scenario, err := workload.LoadScenario(configPath, configFormat)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		config := scenario.Apply(sim.SimConfig{
			SpeedFactor:     speedFactor,
			RoundIntervalMs: roundIntervalMs,
			MaxRounds:       maxRounds,
		}, cmd.Flags().Changed("speed"), cmd.Flags().Changed("round-interval"))

		logrus.Infof("Starting simulation with %d servers, %d clients, speed factor=%v, round interval=%dms, rounds=%d",
			len(scenario.Servers), len(scenario.Clients), config.SpeedFactor, config.RoundIntervalMs, config.MaxRounds)

		st := trace.NewSimulationTrace()
		reg := prometheus.NewRegistry()
		s, err := cluster.NewSimulation(scenario.Servers, scenario.Clients, config,
			cluster.WithObserver(st),
			cluster.WithObserver(cluster.NewPrometheusObserver(reg)),
		)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		if metricsAddr != "" {
			monitor := startMonitor(metricsAddr, newMonitorRouter(reg, st))
			defer func() { _ = monitor.Close() }()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startTime := time.Now()
		runErr := s.Run(ctx)
		logrus.Infof("Simulation stopped after %v", time.Since(startTime))

		if err := saveResults(os.Stdout, st, traceOut); err != nil {
			logrus.Errorf("Saving results: %v", err)
		}
		if runErr != nil {
			logrus.Fatalf("%v", runErr)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd loads a configuration file and reports whether it is usable.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file and print the normalized scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, err := workload.LoadScenario(configPath, configFormat)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(scenario.Spec())
		if err != nil {
			return fmt.Errorf("marshaling scenario: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// saveResults prints the trace summary as JSON to w and, if tracePath is set,
// writes the full trace as CSV.
func saveResults(w io.Writer, st *trace.SimulationTrace, tracePath string) error {
	data, err := json.MarshalIndent(trace.Summarize(st), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintln(w, string(data))

	if tracePath == "" {
		return nil
	}
	f, err := os.Create(tracePath)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := trace.WriteCSV(f, st); err != nil {
		return fmt.Errorf("writing trace %s: %w", tracePath, err)
	}
	logrus.Infof("Trace written to %s", tracePath)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&configPath, "config", "config", "Path to the configuration file (key/value or YAML)")
		c.Flags().StringVar(&configFormat, "format", workload.FormatAuto, "Configuration format (auto, kv, yaml)")
	}

	runCmd.Flags().Float64Var(&speedFactor, "speed", sim.DefaultSpeedFactor, "Global speed factor; every simulated delay is divided by it")
	runCmd.Flags().Uint64Var(&roundIntervalMs, "round-interval", sim.DefaultRoundIntervalMs, "Pause between client rounds in ms, before scaling")
	runCmd.Flags().IntVar(&maxRounds, "rounds", 0, "Rounds per client; 0 runs until interrupted")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().BoolVar(&debugLog, "debug", false, "Write logs to "+debugLogFile+" instead of stdout")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write service and round records to this CSV file")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /api/summary on this address (e.g. :9090)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
