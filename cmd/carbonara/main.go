package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sevki/carbonara/internal/config"
	"github.com/sevki/carbonara/internal/history"
	"github.com/sevki/carbonara/internal/logger"
	"github.com/sevki/carbonara/internal/measure"
	"github.com/sevki/carbonara/internal/report"
)

func main() {
	root := newRootCommand()
	root.AddCommand(newLogCommand())

	if err := root.Execute(); err != nil {
		logger.ErrorWithCode(err).Msg("measurement failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carbonara [flags] -- command [args...]",
		Short: "Measure the energy cost of running a command",
		Long: `carbonara is like time(1), but for energy: it runs a command and
reports how much energy the host consumed while it ran, using RAPL
hardware counters, ACPI battery telemetry, or a TDP estimate.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringP("method", "m", "auto", "measurement method (auto, rapl, acpi, tdp)")
	flags.IntP("interval", "i", 100, "sampling interval in milliseconds")
	flags.IntP("duration", "d", 1000, "sampling duration in milliseconds")
	flags.StringP("format", "f", "human", "output format (human, json, csv)")
	flags.Float64P("co2e", "c", 436.0, "emissions factor in grams CO2e per kWh")
	flags.Float64("tdp", measure.DefaultTDPWatts, "assumed TDP in watts for the estimate fallback")
	flags.String("history", "", "append the result to a SQLite history database at this path")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("verbose", false, "enable verbose logging")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logger.Init(cfg.Debug, cfg.Verbose)

	measureCfg, err := cfg.MeasureConfig()
	if err != nil {
		return err
	}
	engine, err := measure.New(measureCfg)
	if err != nil {
		return err
	}

	// The measured command's exit status never fails the measurement;
	// the engine only needs the workload to run and terminate.
	workload := func() {
		child := exec.Command(args[0], args[1:]...)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		if err := child.Run(); err != nil {
			logger.Warn().Err(err).Str("command", args[0]).Msg("measured command did not exit cleanly")
		}
	}

	m, err := engine.Measure(workload)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	out, err := report.Render(m, format, cfg.CO2ePerKWh)
	if err != nil {
		return err
	}
	fmt.Println(out)

	if cfg.HistoryDB != "" {
		if err := record(cfg.HistoryDB, strings.Join(args, " "), m, cfg.CO2ePerKWh); err != nil {
			logger.Warn().Err(err).Msg("failed to record measurement history")
		}
	}

	return nil
}

func record(path, command string, m *measure.Measurement, gramsPerKWh float64) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(command, m, m.CO2e(gramsPerKWh))
}

func newLogCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log <history.db>",
		Short: "Show recent measurements from a history database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tCOMMAND\tENERGY (J)\tAVG (W)\tPEAK (W)\tDURATION (s)\tCO2e (g)\tMETHOD")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.4f\t%s\n",
					e.TakenAt.Format("2006-01-02 15:04:05"), e.Command,
					e.EnergyJoules, e.AveragePowerWatts, e.PeakPowerWatts,
					e.DurationSeconds, e.CO2eGrams, e.Method)
			}

			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "number", "n", 10, "number of entries to show")

	return cmd
}
