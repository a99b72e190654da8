package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/production-planner/internal/adapters/metrics"
	"github.com/andrescamacho/production-planner/internal/adapters/tables"
	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/application/planning/commands"
	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/infrastructure/logging"
	"github.com/andrescamacho/production-planner/pkg/utils"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	var (
		save        bool
		format      string
		metricsFile string
		solverName  string
	)

	cmd := &cobra.Command{
		Use:   "plan <recipes.csv> <supply.csv> <demand.csv> <priorities.csv> [time-period]",
		Short: "Compute a production plan",
		Long: `Compute a value-maximizing production plan from the four input tables.

Tables are CSV files with a header row:
  recipes:    producer, output commodity, input commodity, input amount, max output
  supply:     commodity, amount, is flow (1 = per time period)
  demand:     commodity, amount, is flow (1 = per time period)
  priorities: commodity, importance

A negative max output means the producer has no capacity limit. When the time
period is omitted, planner.default_time_period is used.

Exit codes:
  0  feasible plan
  1  configuration or run store failure
  2  invalid or unreadable input
  3  infeasible, unbounded or failed solve

Examples:
  planner plan recipes.csv supply.csv demand.csv priorities.csv 1
  planner plan recipes.csv supply.csv demand.csv priorities.csv --save
  planner plan recipes.csv supply.csv demand.csv priorities.csv 2 --format json --metrics-file planner.prom`,
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if solverName != "" {
				cfg.Planner.Solver = solverName
			}
			if metricsFile != "" {
				cfg.Metrics.Textfile = metricsFile
			}
			if format != FormatText && format != FormatJSON {
				return fmt.Errorf("unsupported report format: %s", format)
			}

			timePeriod := cfg.Planner.DefaultTimePeriod
			if len(args) == 5 {
				timePeriod, err = parseTimePeriod(args[4])
				if err != nil {
					return err
				}
			}

			rt, err := newRuntime(cfg, runtimeOptions{
				solver:  true,
				store:   save,
				metrics: cfg.Metrics.Enabled || cfg.Metrics.Textfile != "",
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			runID := utils.GenerateRunID("plan")
			logger := logging.NewRunLoggerFromConfig(runID, cfg.Logging)
			ctx := common.WithLogger(cmd.Context(), logger)

			resp, err := rt.mediator.Send(ctx, &commands.RunPlanCommand{
				RunID:      runID,
				Tables:     tables.NewFileSource(args[0], args[1], args[2], args[3]),
				TimePeriod: timePeriod,
				Save:       save,
			})
			if writeErr := writeMetrics(cfg.Metrics.Textfile); writeErr != nil && err == nil {
				err = writeErr
			}
			if err != nil {
				return err
			}

			result := resp.(*commands.RunPlanResponse)
			if err := WriteReport(cmd.OutOrStdout(), result.Record, format); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			if result.Saved {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved planning run %s\n", result.Record.ID)
			}

			if !result.Record.IsFeasible() {
				return &ErrNoPlan{
					RunID:   result.Record.ID,
					Status:  result.Record.SolveStatus,
					Message: result.Record.Message,
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Persist the run and its log lines to the run store")
	cmd.Flags().StringVar(&format, "format", FormatText, "Report format: text or json")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	cmd.Flags().StringVar(&solverName, "solver", "", "Override planner.solver (simplex or exhaustive)")

	return cmd
}

func parseTimePeriod(arg string) (float64, error) {
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, economy.NewValidationError(economy.ErrorKindInvalidParameter, "", 0, "time_period",
			fmt.Sprintf("time period must be a number, got %q", arg))
	}
	return value, nil
}

// writeMetrics exports the registry when a textfile is configured
func writeMetrics(path string) error {
	if path == "" || !metrics.IsEnabled() {
		return nil
	}
	return metrics.WriteTextfile(path)
}
