package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/production-planner/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Production planner - value-maximizing plans for a closed economy",
		Long: `Production planner reads recipe, supply, demand and priority tables,
solves the resulting linear program and reports the production plan
together with the final commodity balances.

Examples:
  planner plan recipes.csv supply.csv demand.csv priorities.csv 1
  planner plan recipes.csv supply.csv demand.csv priorities.csv 7 --save --format json
  planner history list --limit 5
  planner history show plan-a3f8e2b1 --logs
  planner config show`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: planner.yaml in ., ./configs or /etc/planner)")

	// Add command groups
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// loadConfig loads configuration honouring the --config flag
func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configPath)
}

// Execute runs the root command and exits with the mapped exit code
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitCode(err))
	}
}
