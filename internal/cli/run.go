package cli

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/consist/internal/render"
	"github.com/mesh-intelligence/consist/internal/scenario"
	"github.com/mesh-intelligence/consist/pkg/types"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Validate a scenario and build its initial trains",
		Long: "Load and validate a scenario file, compose the initial trains and verify\n" +
			"their chains. No steps are executed.",
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			rep, err := scenario.NewRunner(a.log).Build(s)
			if err != nil {
				return runError(err)
			}
			a.log.Debug("scenario checked", "file", args[0], "trains", len(rep.Trains), "steps", len(s.Steps))
			return a.report(cmd, rep)
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print the resulting trains",
		Long: "Load a scenario file, compose the initial trains and execute every step in\n" +
			"order. Rejected steps are reported and leave the trains unchanged.",
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			var opts []scenario.RunnerOption
			reg := prometheus.NewRegistry()
			if metricsFile != "" {
				m, err := scenario.NewMetrics(reg)
				if err != nil {
					return sysError(fmt.Errorf("register metrics: %w", err))
				}
				opts = append(opts, scenario.WithMetrics(m))
			}

			rep, err := scenario.NewRunner(a.log, opts...).Run(s)
			if err != nil {
				return runError(err)
			}
			if err := a.report(cmd, rep); err != nil {
				return err
			}

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					return sysError(fmt.Errorf("write metrics: %w", err))
				}
				a.log.Debug("metrics written", "file", metricsFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write step and train metrics in Prometheus text format to this file")
	return cmd
}

// loadScenario reads a scenario file. Every failure is the user's: a missing
// file, malformed YAML or an invalid scenario.
func loadScenario(path string) (*scenario.Scenario, error) {
	s, err := scenario.Load(path)
	if err != nil {
		return nil, userError(err)
	}
	return s, nil
}

// runError classifies an error from building or running a scenario. A train
// that cannot take its initial wagons is a user error; anything else means a
// chain invariant broke.
func runError(err error) error {
	if errors.Is(err, scenario.ErrInitialComposition) {
		return userError(err)
	}
	return sysError(err)
}

// report writes rep in the configured output format.
func (a *app) report(cmd *cobra.Command, rep *scenario.Report) error {
	var err error
	if a.cfg.Output == types.OutputJSON {
		err = render.JSON(cmd.OutOrStdout(), rep)
	} else {
		err = render.Text(cmd.OutOrStdout(), rep)
	}
	if err != nil {
		return sysError(fmt.Errorf("write report: %w", err))
	}
	return nil
}
