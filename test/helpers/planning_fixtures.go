package helpers

import (
	"context"
	"testing"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
)

// CreateToolEconomy builds tables for one forge turning 2 iron into 1 tool,
// with 20 iron supplied and 5 tools demanded
func CreateToolEconomy(maxOutput float64) economy.Tables {
	return economy.Tables{
		Recipes: []economy.RecipeRow{
			{Row: 1, Producer: "forge", OutputCommodity: "tool", InputCommodity: "iron", InputAmount: 2, MaxOutput: maxOutput},
		},
		Supply: []economy.FlowRow{{Row: 1, Commodity: "iron", Amount: 20}},
		Demand: []economy.FlowRow{{Row: 1, Commodity: "tool", Amount: 5}},
		Priorities: []economy.PriorityRow{
			{Row: 1, Commodity: "tool", Importance: 10},
			{Row: 2, Commodity: "iron", Importance: 1},
		},
	}
}

// CreateReportedRun drives a run over tables to the REPORTED state with solver
func CreateReportedRun(t *testing.T, id string, tables economy.Tables, solver planning.Solver, clock shared.Clock) *planning.Run {
	t.Helper()

	model, err := economy.NewModel(tables, 1)
	if err != nil {
		t.Fatalf("failed to build model: %v", err)
	}

	run := planning.NewRun(id, clock)
	if err := run.LoadTables(model); err != nil {
		t.Fatalf("failed to load tables: %v", err)
	}
	if err := run.Execute(context.Background(), solver, planning.DefaultProductionThreshold); err != nil {
		t.Fatalf("failed to execute run: %v", err)
	}
	return run
}
