package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/production-planner/internal/adapters/persistence"
	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/application/planning/commands"
	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
	"github.com/andrescamacho/production-planner/internal/infrastructure/logging"
	"github.com/andrescamacho/production-planner/test/helpers"
)

type staticTables struct {
	tables economy.Tables
	err    error
}

func (s staticTables) Load(ctx context.Context) (economy.Tables, error) {
	return s.tables, s.err
}

func newClock() *shared.MockClock {
	return shared.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
}

func TestRunPlanHandler_OptimalPlan(t *testing.T) {
	// Arrange
	solver := helpers.NewMockSolver(5)
	handler := commands.NewRunPlanHandler(solver, nil, nil, newClock(), 0)
	cmd := &commands.RunPlanCommand{
		RunID:      "plan-test",
		Tables:     staticTables{tables: helpers.CreateToolEconomy(5)},
		TimePeriod: 1,
	}

	// Act
	resp, err := handler.Handle(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunPlanResponse)
	assert.False(t, result.Saved)
	assert.Equal(t, 1, solver.CallCount())
	assert.Equal(t, "plan-test", result.Record.ID)
	assert.Equal(t, planning.RunStatusReported, result.Record.Status)
	assert.True(t, result.Record.IsFeasible())
	require.Len(t, result.Record.Entries, 1)
	assert.Equal(t, 5.0, result.Record.Entries[0].Amount)
	assert.True(t, result.Record.Report.IsBalanced())
}

func TestRunPlanHandler_GeneratesRunID(t *testing.T) {
	handler := commands.NewRunPlanHandler(helpers.NewMockSolver(5), nil, nil, nil, 0)

	resp, err := handler.Handle(context.Background(), &commands.RunPlanCommand{
		Tables:     staticTables{tables: helpers.CreateToolEconomy(5)},
		TimePeriod: 1,
	})

	require.NoError(t, err)
	assert.Regexp(t, `^plan-[0-9a-f]{8}$`, resp.(*commands.RunPlanResponse).Record.ID)
}

func TestRunPlanHandler_InfeasibleIsNotAnError(t *testing.T) {
	// Arrange
	tables := helpers.CreateToolEconomy(10)
	tables.Supply = nil
	handler := commands.NewRunPlanHandler(helpers.NewInfeasibleMockSolver(), nil, nil, newClock(), 0)

	// Act
	resp, err := handler.Handle(context.Background(), &commands.RunPlanCommand{
		RunID:      "plan-infeasible",
		Tables:     staticTables{tables: tables},
		TimePeriod: 1,
	})

	// Assert
	require.NoError(t, err)
	record := resp.(*commands.RunPlanResponse).Record
	assert.False(t, record.IsFeasible())
	assert.Empty(t, record.Entries)
	assert.Equal(t, []planning.CommodityBalance{{Commodity: "tool", Materials: -5, Demand: 5}}, record.Report.Unbalanced)
}

func TestRunPlanHandler_ValidationErrorStopsBeforeSolving(t *testing.T) {
	// Arrange
	tables := helpers.CreateToolEconomy(5)
	tables.Priorities = append(tables.Priorities, economy.PriorityRow{Row: 3, Commodity: "tool", Importance: 4})
	solver := helpers.NewMockSolver(5)
	handler := commands.NewRunPlanHandler(solver, nil, nil, newClock(), 0)

	// Act
	_, err := handler.Handle(context.Background(), &commands.RunPlanCommand{
		Tables:     staticTables{tables: tables},
		TimePeriod: 1,
	})

	// Assert
	var validationErr *economy.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, economy.ErrorKindDuplicatePriority, validationErr.Kind)
	assert.Equal(t, 0, solver.CallCount())
}

func TestRunPlanHandler_SourceErrorIsReturned(t *testing.T) {
	sourceErr := errors.New("disk on fire")
	handler := commands.NewRunPlanHandler(helpers.NewMockSolver(5), nil, nil, newClock(), 0)

	_, err := handler.Handle(context.Background(), &commands.RunPlanCommand{
		Tables:     staticTables{err: sourceErr},
		TimePeriod: 1,
	})

	assert.ErrorIs(t, err, sourceErr)
}

func TestRunPlanHandler_SolverErrorIsWrapped(t *testing.T) {
	solver := helpers.NewMockSolver(5)
	solver.SetError(context.Canceled)
	handler := commands.NewRunPlanHandler(solver, nil, nil, newClock(), 0)

	_, err := handler.Handle(context.Background(), &commands.RunPlanCommand{
		RunID:      "plan-cancelled",
		Tables:     staticTables{tables: helpers.CreateToolEconomy(5)},
		TimePeriod: 1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "plan-cancelled")
}

func TestRunPlanHandler_SaveRequiresRepository(t *testing.T) {
	handler := commands.NewRunPlanHandler(helpers.NewMockSolver(5), nil, nil, newClock(), 0)

	_, err := handler.Handle(context.Background(), &commands.RunPlanCommand{
		Tables:     staticTables{tables: helpers.CreateToolEconomy(5)},
		TimePeriod: 1,
		Save:       true,
	})

	assert.Error(t, err)
}

func TestRunPlanHandler_SavesRunAndLogs(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	runRepo := persistence.NewGormPlanningRunRepository(db)
	logRepo := persistence.NewGormRunLogRepository(db)
	clock := newClock()
	handler := commands.NewRunPlanHandler(helpers.NewMockSolver(5), runRepo, logRepo, clock, 0)

	var out bytes.Buffer
	logger := logging.NewStdRunLogger("plan-saved", &out, "debug", "text", clock)
	ctx := common.WithLogger(context.Background(), logger)

	// Act
	resp, err := handler.Handle(ctx, &commands.RunPlanCommand{
		RunID:      "plan-saved",
		Tables:     staticTables{tables: helpers.CreateToolEconomy(5)},
		TimePeriod: 1,
		Save:       true,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.(*commands.RunPlanResponse).Saved)

	stored, err := runRepo.FindByID(context.Background(), "plan-saved")
	require.NoError(t, err)
	assert.Equal(t, planning.SolveStatusOptimal, stored.SolveStatus)

	logs, err := logRepo.GetLogs(context.Background(), "plan-saved", 0, nil)
	require.NoError(t, err)
	messages := make([]string, len(logs))
	for i, entry := range logs {
		messages[i] = entry.Message
	}
	assert.Equal(t, []string{"Tables loaded", "Problem formulated", "Plan assembled", "Planning run saved"}, messages)
	assert.Contains(t, out.String(), "Plan assembled")
}

func TestRunPlanHandler_RejectsWrongRequestType(t *testing.T) {
	handler := commands.NewRunPlanHandler(helpers.NewMockSolver(), nil, nil, nil, 0)

	_, err := handler.Handle(context.Background(), "not a command")

	assert.Error(t, err)
}
