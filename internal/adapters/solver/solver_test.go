package solver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/production-planner/internal/adapters/solver"
	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

func backends() []planning.Solver {
	return []planning.Solver{
		solver.NewSimplexSolver(0),
		solver.NewExhaustiveSolver(0),
	}
}

func formulate(t *testing.T, tables economy.Tables) *planning.Problem {
	t.Helper()
	model, err := economy.NewModel(tables, 1)
	require.NoError(t, err)
	require.NoError(t, model.Ledger().InitializeMaterials())
	problem, err := planning.Formulate(model)
	require.NoError(t, err)
	return problem
}

// one forge turning 2 iron into 1 tool
func toolEconomy(maxOutput float64) economy.Tables {
	return economy.Tables{
		Recipes: []economy.RecipeRow{
			{Row: 1, Producer: "forge", OutputCommodity: "tool", InputCommodity: "iron", InputAmount: 2, MaxOutput: maxOutput},
		},
		Supply:     []economy.FlowRow{{Row: 1, Commodity: "iron", Amount: 20}},
		Demand:     []economy.FlowRow{{Row: 1, Commodity: "tool", Amount: 5}},
		Priorities: []economy.PriorityRow{{Row: 1, Commodity: "tool", Importance: 10}, {Row: 2, Commodity: "iron", Importance: 1}},
	}
}

// smelter and jeweler compete for 10 ore
func oreEconomy(jewelerCap float64) economy.Tables {
	return economy.Tables{
		Recipes: []economy.RecipeRow{
			{Row: 1, Producer: "jeweler", OutputCommodity: "gem", InputCommodity: "ore", InputAmount: 2, MaxOutput: jewelerCap},
			{Row: 2, Producer: "smelter", OutputCommodity: "metal", InputCommodity: "ore", InputAmount: 1, MaxOutput: -1},
		},
		Supply: []economy.FlowRow{{Row: 1, Commodity: "ore", Amount: 10}},
		Priorities: []economy.PriorityRow{
			{Row: 1, Commodity: "metal", Importance: 3},
			{Row: 2, Commodity: "gem", Importance: 8},
			{Row: 3, Commodity: "ore", Importance: 1},
		},
	}
}

func TestSolvers_ToolEconomyFillsCapacity(t *testing.T) {
	problem := formulate(t, toolEconomy(10))

	for _, s := range backends() {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Solve(context.Background(), problem)

			require.NoError(t, err)
			require.Equal(t, planning.SolveStatusOptimal, result.Status)
			assert.InDeltaSlice(t, []float64{10}, result.X, 1e-6)
			assert.InDelta(t, -80, result.Objective, 1e-6)
			assert.Equal(t, "Optimization terminated successfully.", result.Message)
		})
	}
}

func TestSolvers_ToolEconomyCappedAtDemand(t *testing.T) {
	problem := formulate(t, toolEconomy(5))

	for _, s := range backends() {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Solve(context.Background(), problem)

			require.NoError(t, err)
			require.Equal(t, planning.SolveStatusOptimal, result.Status)
			assert.InDeltaSlice(t, []float64{5}, result.X, 1e-6)
		})
	}
}

func TestSolvers_MissingInputIsInfeasible(t *testing.T) {
	tables := toolEconomy(10)
	tables.Supply = nil

	problem := formulate(t, tables)

	for _, s := range backends() {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Solve(context.Background(), problem)

			require.NoError(t, err)
			assert.Equal(t, planning.SolveStatusInfeasible, result.Status)
			assert.Empty(t, result.X)
			assert.Equal(t, "The problem is infeasible.", result.Message)
		})
	}
}

func TestSolvers_CompetingProducersMaximizeValue(t *testing.T) {
	tests := []struct {
		name      string
		cap       float64
		expected  []float64
		objective float64
	}{
		// gem is worth 6 per unit (3 per ore), metal 2 per unit (2 per ore)
		{name: "uncapped jeweler takes all ore", cap: -1, expected: []float64{5, 0}, objective: -30},
		{name: "capped jeweler leaves ore to smelter", cap: 3, expected: []float64{3, 4}, objective: -26},
	}

	for _, tt := range tests {
		problem := formulate(t, oreEconomy(tt.cap))
		for _, s := range backends() {
			t.Run(tt.name+"/"+s.Name(), func(t *testing.T) {
				result, err := s.Solve(context.Background(), problem)

				require.NoError(t, err)
				require.Equal(t, planning.SolveStatusOptimal, result.Status)
				assert.InDeltaSlice(t, tt.expected, result.X, 1e-6)
				assert.InDelta(t, tt.objective, result.Objective, 1e-6)
			})
		}
	}
}

func TestSolvers_FreeOutputIsUnbounded(t *testing.T) {
	problem := formulate(t, economy.Tables{
		Recipes: []economy.RecipeRow{
			{Row: 1, Producer: "condenser", OutputCommodity: "water", InputCommodity: "air", InputAmount: 0, MaxOutput: -1},
		},
		Priorities: []economy.PriorityRow{{Row: 1, Commodity: "water", Importance: 5}},
	})

	for _, s := range backends() {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Solve(context.Background(), problem)

			require.NoError(t, err)
			assert.Equal(t, planning.SolveStatusUnbounded, result.Status)
		})
	}
}

// drill makes flour from nothing and cooker turns it into meal; neither is capped
func TestSolvers_FreeInputChainIsUnbounded(t *testing.T) {
	problem := formulate(t, economy.Tables{
		Recipes: []economy.RecipeRow{
			{Row: 1, Producer: "brewer", OutputCommodity: "grain", InputCommodity: "grain", InputAmount: 1.5, MaxOutput: 5},
			{Row: 2, Producer: "cooker", OutputCommodity: "meal", InputCommodity: "flour", InputAmount: 2.5, MaxOutput: -1},
			{Row: 3, Producer: "drill", OutputCommodity: "flour", InputCommodity: "flour", InputAmount: 0, MaxOutput: -1},
			{Row: 4, Producer: "oven", OutputCommodity: "meal", InputCommodity: "flour", InputAmount: 0, MaxOutput: -1},
			{Row: 5, Producer: "oven", OutputCommodity: "meal", InputCommodity: "grain", InputAmount: 0.5, MaxOutput: -1},
		},
		Supply: []economy.FlowRow{
			{Row: 1, Commodity: "grain", Amount: 7},
			{Row: 2, Commodity: "meal", Amount: 1},
		},
		Demand: []economy.FlowRow{
			{Row: 1, Commodity: "flour", Amount: 3},
			{Row: 2, Commodity: "grain", Amount: 1},
			{Row: 3, Commodity: "meal", Amount: 1},
		},
		Priorities: []economy.PriorityRow{{Row: 1, Commodity: "meal", Importance: 1}},
	})
	require.Equal(t, []string{"brewer", "cooker", "drill", "oven"}, problem.Producers)

	for _, s := range backends() {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Solve(context.Background(), problem)

			require.NoError(t, err)
			assert.Equal(t, planning.SolveStatusUnbounded, result.Status)
			assert.Empty(t, result.X)
		})
	}
}

func TestSolvers_SelfLoopProducerStaysIdle(t *testing.T) {
	tables := toolEconomy(10)
	tables.Recipes = append(tables.Recipes,
		economy.RecipeRow{Row: 2, Producer: "echo", OutputCommodity: "iron", InputCommodity: "iron", InputAmount: 1, MaxOutput: -1})
	problem := formulate(t, tables)

	for _, s := range backends() {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Solve(context.Background(), problem)

			require.NoError(t, err)
			require.Equal(t, planning.SolveStatusOptimal, result.Status)
			assert.InDeltaSlice(t, []float64{0, 10}, result.X, 1e-6)
		})
	}
}

func TestSolvers_EmptyProblem(t *testing.T) {
	for _, s := range backends() {
		t.Run(s.Name(), func(t *testing.T) {
			result, err := s.Solve(context.Background(), &planning.Problem{})

			require.NoError(t, err)
			assert.Equal(t, planning.SolveStatusOptimal, result.Status)
			assert.Empty(t, result.X)
		})
	}
}

func TestSolvers_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	problem := formulate(t, toolEconomy(10))

	for _, s := range backends() {
		_, err := s.Solve(ctx, problem)
		assert.ErrorIs(t, err, context.Canceled, s.Name())
	}
}

func TestExhaustiveSolver_RefusesLargeSearch(t *testing.T) {
	problem := formulate(t, oreEconomy(3))

	result, err := solver.NewExhaustiveSolver(5).Solve(context.Background(), problem)

	require.NoError(t, err)
	assert.Equal(t, planning.SolveStatusFailed, result.Status)
	assert.Contains(t, result.Message, "exceed the limit of 5")
}

func TestNew(t *testing.T) {
	s, err := solver.New("exhaustive", solver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "exhaustive", s.Name())

	s, err = solver.New("", solver.Options{Tolerance: 1e-8})
	require.NoError(t, err)
	assert.Equal(t, "simplex", s.Name())

	_, err = solver.New("interior-point", solver.Options{})
	assert.Error(t, err)
}
