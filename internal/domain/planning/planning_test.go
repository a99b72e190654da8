package planning_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
)

// stubSolver returns a canned result
type stubSolver struct {
	result *planning.SolveResult
	err    error
	calls  int
}

func (s *stubSolver) Name() string { return "stub" }

func (s *stubSolver) Solve(_ context.Context, _ *planning.Problem) (*planning.SolveResult, error) {
	s.calls++
	return s.result, s.err
}

func optimal(x ...float64) *stubSolver {
	return &stubSolver{result: &planning.SolveResult{
		Status:  planning.SolveStatusOptimal,
		X:       x,
		Message: "Optimization terminated successfully.",
	}}
}

// forge: 2 iron + 0.5 coal -> tool (max 10); mine: 1 coal -> iron (unbounded)
func forgeModel(t *testing.T) *economy.Model {
	t.Helper()
	model, err := economy.NewModel(economy.Tables{
		Recipes: []economy.RecipeRow{
			{Row: 1, Producer: "forge", OutputCommodity: "tool", InputCommodity: "iron", InputAmount: 2, MaxOutput: 10},
			{Row: 2, Producer: "forge", OutputCommodity: "tool", InputCommodity: "coal", InputAmount: 0.5, MaxOutput: 10},
			{Row: 3, Producer: "mine", OutputCommodity: "iron", InputCommodity: "coal", InputAmount: 1, MaxOutput: -1},
		},
		Supply: []economy.FlowRow{
			{Row: 1, Commodity: "iron", Amount: 20},
			{Row: 2, Commodity: "coal", Amount: 8},
		},
		Demand: []economy.FlowRow{
			{Row: 1, Commodity: "tool", Amount: 5},
		},
		Priorities: []economy.PriorityRow{
			{Row: 1, Commodity: "tool", Importance: 10},
			{Row: 2, Commodity: "iron", Importance: 1},
			{Row: 3, Commodity: "coal", Importance: 2},
		},
	}, 1)
	require.NoError(t, err)
	return model
}

func TestFormulate_BuildsCanonicalProblem(t *testing.T) {
	model := forgeModel(t)
	require.NoError(t, model.Ledger().InitializeMaterials())

	problem, err := planning.Formulate(model)

	require.NoError(t, err)
	assert.Equal(t, []string{"forge", "mine"}, problem.Producers)
	assert.Equal(t, []string{"coal", "iron", "tool"}, problem.Commodities)

	// forge value = 10 - 2*1 - 0.5*2 = 7; mine value = 1 - 1*2 = -1
	assert.InDeltaSlice(t, []float64{-7, 1}, problem.Objective, 1e-12)

	assert.Equal(t, []float64{0.5, 1}, problem.Row(0), "coal consumed by both")
	assert.Equal(t, []float64{2, -1}, problem.Row(1), "iron consumed by forge, produced by mine")
	assert.Equal(t, []float64{-1, 0}, problem.Row(2), "tool produced by forge")
	assert.Equal(t, []float64{8, 20, -5}, problem.RHS)

	assert.Equal(t, planning.Bound{Lower: 0, Upper: 10}, problem.Bounds[0])
	assert.True(t, problem.Bounds[1].Unbounded)
	assert.Equal(t, economy.UnboundedCapacitySentinel, problem.Bounds[1].UpperOr(economy.UnboundedCapacitySentinel))
}

func TestFormulate_RequiresInitializedMaterials(t *testing.T) {
	_, err := planning.Formulate(forgeModel(t))

	var notInit *planning.ErrMaterialsNotInitialized
	assert.True(t, errors.As(err, &notInit))
}

func TestProblem_MaxViolation(t *testing.T) {
	model := forgeModel(t)
	require.NoError(t, model.Ledger().InitializeMaterials())
	problem, err := planning.Formulate(model)
	require.NoError(t, err)

	assert.Equal(t, 0.0, problem.MaxViolation([]float64{5, 0}))
	assert.InDelta(t, 5.0, problem.MaxViolation([]float64{0, 0}), 1e-12, "tool demand unmet")
	assert.InDelta(t, 2.0, problem.MaxViolation([]float64{12, 4}), 1e-12, "forge over capacity")
}

func TestAssemblePlan_AppliesProductionAboveThreshold(t *testing.T) {
	model := forgeModel(t)
	require.NoError(t, model.Ledger().InitializeMaterials())
	problem, err := planning.Formulate(model)
	require.NoError(t, err)

	plan, err := planning.AssemblePlan(model, problem, []float64{6, 1e-7}, planning.DefaultProductionThreshold)

	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	entry := plan.Entries[0]
	assert.Equal(t, "forge", entry.Producer)
	assert.Equal(t, "tool", entry.OutputCommodity)
	assert.Equal(t, []planning.CommodityAmount{
		{Commodity: "coal", Amount: 3},
		{Commodity: "iron", Amount: 12},
	}, entry.SortedCosts())
	assert.Equal(t, 15.0, entry.TotalCost())
	assert.Equal(t, 6.0, plan.ProducedBy("forge"))

	ledger := model.Ledger()
	assert.Equal(t, 5.0, ledger.Materials("coal"))
	assert.Equal(t, 8.0, ledger.Materials("iron"))
	assert.Equal(t, 1.0, ledger.Materials("tool"))
}

func TestAssemblePlan_RejectsWrongVectorLength(t *testing.T) {
	model := forgeModel(t)
	require.NoError(t, model.Ledger().InitializeMaterials())
	problem, err := planning.Formulate(model)
	require.NoError(t, err)

	_, err = planning.AssemblePlan(model, problem, []float64{1}, planning.DefaultProductionThreshold)

	var shape *planning.ErrSolutionShape
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, 2, shape.Expected)
	assert.Equal(t, 1, shape.Actual)
}

func TestBalanceReport_ClassifiesCommodities(t *testing.T) {
	model := forgeModel(t)
	ledger := model.Ledger()
	require.NoError(t, ledger.InitializeMaterials())

	report := planning.NewBalanceReport(ledger)

	assert.False(t, report.IsBalanced())
	assert.Equal(t, []planning.CommodityBalance{{Commodity: "tool", Materials: -5, Demand: 5}}, report.Unbalanced)
	assert.True(t, report.IsCommodityBalanced("iron"))
	assert.False(t, report.IsCommodityBalanced("tool"))
	require.Len(t, report.FinalState, 3)
	for _, fs := range report.FinalState {
		b, _ := ledger.Balance(fs.Commodity)
		assert.Equal(t, b.Materials+b.Demand, fs.Ending)
		assert.Equal(t, b.Supply, fs.StartingSupply)
	}
}

func TestRun_ExecuteOptimal(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	run := planning.NewRun("run-1", clock)
	require.NoError(t, run.LoadTables(forgeModel(t)))
	solver := optimal(5, 0)

	err := run.Execute(context.Background(), solver, planning.DefaultProductionThreshold)

	require.NoError(t, err)
	assert.Equal(t, planning.RunStatusReported, run.Status())
	assert.True(t, run.IsFeasible())
	assert.Equal(t, "stub", run.SolverName())
	assert.True(t, run.Report().IsBalanced())
	require.NotNil(t, run.CompletedAt())
	assert.Equal(t, 1, solver.calls)

	record := run.Record()
	assert.Equal(t, "run-1", record.ID)
	assert.Equal(t, planning.SolveStatusOptimal, record.SolveStatus)
	assert.Equal(t, []string{"forge", "mine"}, record.Producers)
	assert.Len(t, record.Entries, 1)
	assert.True(t, record.IsFeasible())
}

func TestRun_ExecuteInfeasibleSkipsAssembly(t *testing.T) {
	run := planning.NewRun("run-2", nil)
	require.NoError(t, run.LoadTables(forgeModel(t)))
	solver := &stubSolver{result: &planning.SolveResult{
		Status:  planning.SolveStatusInfeasible,
		Message: "The problem is infeasible.",
	}}

	err := run.Execute(context.Background(), solver, planning.DefaultProductionThreshold)

	require.NoError(t, err)
	assert.Equal(t, planning.RunStatusReported, run.Status())
	assert.False(t, run.IsFeasible())
	assert.True(t, run.Plan().IsEmpty())
	assert.Equal(t, []planning.CommodityBalance{{Commodity: "tool", Materials: -5, Demand: 5}}, run.Report().Unbalanced)
}

func TestRun_RejectsOutOfOrderTransitions(t *testing.T) {
	run := planning.NewRun("run-3", nil)

	err := run.Formulate()

	var invalid *planning.ErrInvalidRunState
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, planning.RunStatusUnloaded, invalid.CurrentState)

	var domainErr *shared.DomainError
	require.True(t, errors.As(run.LoadTables(nil), &domainErr))
	assert.Equal(t, planning.RunStatusUnloaded, run.Status())

	require.NoError(t, run.LoadTables(forgeModel(t)))
	assert.Error(t, run.LoadTables(forgeModel(t)))
	assert.Error(t, run.AssemblePlan(planning.DefaultProductionThreshold))
	assert.Error(t, run.Finish())
}

func TestRun_SolverShapeMismatchIsAnError(t *testing.T) {
	run := planning.NewRun("run-4", nil)
	require.NoError(t, run.LoadTables(forgeModel(t)))
	require.NoError(t, run.Formulate())

	err := run.Solve(context.Background(), optimal(1))

	var shape *planning.ErrSolutionShape
	assert.True(t, errors.As(err, &shape))
	assert.Equal(t, planning.RunStatusFormulated, run.Status())
}

func TestRun_SnapshotRerunIsIdempotent(t *testing.T) {
	model := forgeModel(t)
	pristine := model.Ledger().Snapshot()

	first := planning.NewRun("a", nil)
	require.NoError(t, first.LoadTables(model))
	require.NoError(t, first.Execute(context.Background(), optimal(5, 0), planning.DefaultProductionThreshold))

	second := planning.NewRun("b", nil)
	require.NoError(t, second.LoadTables(model.WithLedger(pristine)))
	require.NoError(t, second.Execute(context.Background(), optimal(5, 0), planning.DefaultProductionThreshold))

	assert.Equal(t, first.Problem(), second.Problem())
	assert.Equal(t, first.Plan(), second.Plan())
	assert.Equal(t, first.Report(), second.Report())
}
