package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

type runPlanCommand struct{}

func gather(t *testing.T) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := Registry.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, family := range families {
		byName[family.GetName()] = family
	}
	return byName
}

func labelsOf(metric *dto.Metric) map[string]string {
	labels := make(map[string]string)
	for _, pair := range metric.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	return labels
}

func setupRegistry(t *testing.T) *PlanningMetricsCollector {
	t.Helper()
	InitRegistry()
	t.Cleanup(Disable)

	collector := NewPlanningMetricsCollector("")
	require.NoError(t, collector.Register())
	SetGlobalPlanningCollector(collector)
	return collector
}

func TestPlanningMetrics_RecordRunCompletion(t *testing.T) {
	// Arrange
	setupRegistry(t)
	record := &planning.RunRecord{
		ID:          "plan-1",
		Solver:      "simplex",
		SolveStatus: planning.SolveStatusOptimal,
		Objective:   -80,
		Entries: []planning.PlanEntry{
			{Producer: "forge", Amount: 10, OutputCommodity: "tool", Costs: map[string]float64{"iron": 20}},
		},
		Report: &planning.BalanceReport{
			Balanced: []planning.CommodityBalance{
				{Commodity: "iron", Materials: 0, Demand: 0},
				{Commodity: "tool", Materials: 5, Demand: 5},
			},
		},
	}

	// Act
	RecordRunCompletion(record, 20*time.Millisecond)

	// Assert
	families := gather(t)

	runs := families["planner_planning_runs_total"]
	require.NotNil(t, runs)
	require.Len(t, runs.GetMetric(), 1)
	assert.Equal(t, map[string]string{"solver": "simplex", "solve_status": "OPTIMAL"}, labelsOf(runs.GetMetric()[0]))
	assert.Equal(t, 1.0, runs.GetMetric()[0].GetCounter().GetValue())

	objective := families["planner_planning_objective_value"]
	require.NotNil(t, objective)
	assert.Equal(t, -80.0, objective.GetMetric()[0].GetGauge().GetValue())

	produced := families["planner_planning_produced_amount"]
	require.NotNil(t, produced)
	assert.Equal(t, map[string]string{"producer": "forge", "commodity": "tool"}, labelsOf(produced.GetMetric()[0]))
	assert.Equal(t, 10.0, produced.GetMetric()[0].GetGauge().GetValue())

	materials := families["planner_planning_commodity_materials"]
	require.NotNil(t, materials)
	assert.Len(t, materials.GetMetric(), 2)

	duration := families["planner_planning_run_duration_seconds"]
	require.NotNil(t, duration)
	assert.Equal(t, uint64(1), duration.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestPlanningMetrics_InfeasibleRunLeavesObjectiveUnset(t *testing.T) {
	setupRegistry(t)

	RecordRunCompletion(&planning.RunRecord{
		Solver:      "exhaustive",
		SolveStatus: planning.SolveStatusInfeasible,
		Report: &planning.BalanceReport{
			Unbalanced: []planning.CommodityBalance{{Commodity: "tool", Materials: -5, Demand: 5}},
		},
	}, time.Millisecond)

	families := gather(t)
	assert.Nil(t, families["planner_planning_objective_value"])
	unbalanced := families["planner_planning_unbalanced_commodities"]
	require.NotNil(t, unbalanced)
	assert.Equal(t, 1.0, unbalanced.GetMetric()[0].GetGauge().GetValue())
}

func TestPlanningMetrics_RecordValidationFailure(t *testing.T) {
	setupRegistry(t)

	RecordValidationFailure("SCHEMA_ERROR")
	RecordValidationFailure("SCHEMA_ERROR")

	failures := gather(t)["planner_planning_validation_failures_total"]
	require.NotNil(t, failures)
	assert.Equal(t, 2.0, failures.GetMetric()[0].GetCounter().GetValue())
}

func TestGlobalRecorders_NoOpWhenDisabled(t *testing.T) {
	Disable()

	assert.False(t, IsEnabled())
	assert.NotPanics(t, func() {
		RecordRunCompletion(&planning.RunRecord{}, time.Second)
		RecordValidationFailure("SCHEMA_ERROR")
	})
	assert.NoError(t, WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestWriteTextfile(t *testing.T) {
	setupRegistry(t)
	RecordValidationFailure("NON_NUMERIC_FIELD")
	path := filepath.Join(t.TempDir(), "planner.prom")

	require.NoError(t, WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `planner_planning_validation_failures_total{kind="NON_NUMERIC_FIELD"} 1`)
}

func TestPrometheusMiddleware_RecordsOutcome(t *testing.T) {
	// Arrange
	InitRegistry()
	t.Cleanup(Disable)
	collector := NewCommandMetricsCollector("")
	require.NoError(t, collector.Register())
	middleware := PrometheusMiddleware(collector)

	ok := func(ctx context.Context, request common.Request) (common.Response, error) { return "done", nil }
	failing := func(ctx context.Context, request common.Request) (common.Response, error) {
		return nil, errors.New("boom")
	}

	// Act
	response, err := middleware(context.Background(), &runPlanCommand{}, ok)
	require.NoError(t, err)
	_, err = middleware(context.Background(), &runPlanCommand{}, failing)

	// Assert
	assert.Equal(t, "done", response)
	assert.Error(t, err)

	total := gather(t)["planner_planning_commands_total"]
	require.NotNil(t, total)
	statuses := map[string]float64{}
	for _, metric := range total.GetMetric() {
		labels := labelsOf(metric)
		assert.Equal(t, "runPlanCommand", labels["command"])
		statuses[labels["status"]] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"success": 1, "error": 1}, statuses)
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	middleware := PrometheusMiddleware(nil)

	response, err := middleware(context.Background(), &runPlanCommand{},
		func(ctx context.Context, request common.Request) (common.Response, error) { return "done", nil })

	require.NoError(t, err)
	assert.Equal(t, "done", response)
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "runPlanCommand", extractCommandName(&runPlanCommand{}))
	assert.Equal(t, "runPlanCommand", extractCommandName(runPlanCommand{}))
	assert.Equal(t, "UnknownCommand", extractCommandName(nil))
}
