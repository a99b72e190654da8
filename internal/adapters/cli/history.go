package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/production-planner/internal/application/planning/queries"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// NewHistoryCommand creates the history command with subcommands
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved planning runs",
		Long: `Inspect planning runs saved with 'planner plan --save'.

Examples:
  planner history list
  planner history list --limit 5
  planner history show plan-a3f8e2b1
  planner history show plan-a3f8e2b1 --logs --level WARN`,
	}

	// Add subcommands
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())

	return cmd
}

// newHistoryListCommand creates the history list subcommand
func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openHistory()
			if err != nil {
				return err
			}
			defer rt.Close()

			resp, err := rt.mediator.Send(cmd.Context(), &queries.ListRunsQuery{Limit: limit})
			if err != nil {
				return err
			}

			runs := resp.(*queries.ListRunsResponse).Runs
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved planning runs")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tCREATED\tSOLVER\tSTATUS\tOBJECTIVE\tPERIOD\tPRODUCERS")
			for _, run := range runs {
				objective := "-"
				if run.Feasible {
					objective = fmt.Sprintf("%.4f", run.Objective)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%d\n",
					run.ID,
					run.CreatedAt.Format(time.RFC3339),
					run.Solver,
					run.SolveStatus,
					objective,
					run.TimePeriod,
					run.Producers,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", queries.DefaultListLimit, "Maximum number of runs to list")

	return cmd
}

// newHistoryShowCommand creates the history show subcommand
func newHistoryShowCommand() *cobra.Command {
	var (
		format   string
		withLogs bool
		level    string
	)

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the report of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openHistory()
			if err != nil {
				return err
			}
			defer rt.Close()

			query := &queries.GetRunQuery{RunID: args[0], IncludeLogs: withLogs}
			if level != "" {
				upper := strings.ToUpper(level)
				query.LogLevel = &upper
			}

			resp, err := rt.mediator.Send(cmd.Context(), query)
			if err != nil {
				return err
			}
			result := resp.(*queries.GetRunResponse)

			out := cmd.OutOrStdout()
			if format == FormatText {
				fmt.Fprintf(out, "Run: %s (%s, solver %s, time period %g)\n\n",
					result.Run.ID, result.Run.CreatedAt.Format(time.RFC3339), result.Run.Solver, result.Run.TimePeriod)
			}
			if err := WriteReport(out, result.Run, format); err != nil {
				return err
			}
			if withLogs {
				writeLogs(out, result.Logs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatText, "Report format: text or json")
	cmd.Flags().BoolVar(&withLogs, "logs", false, "Also print the run's log lines")
	cmd.Flags().StringVar(&level, "level", "", "Only print log lines of this level")

	return cmd
}

func openHistory() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newRuntime(cfg, runtimeOptions{store: true})
}

func writeLogs(w io.Writer, logs []planning.RunLogEntry) {
	fmt.Fprintln(w, "\nLogs")
	if len(logs) == 0 {
		fmt.Fprintln(w, "    (none)")
		return
	}
	for _, entry := range logs {
		fmt.Fprintf(w, "    [%s] %s: %s\n", entry.Timestamp.Format(time.RFC3339), entry.Level, entry.Message)
	}
}
