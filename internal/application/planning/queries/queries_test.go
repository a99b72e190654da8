package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/production-planner/internal/adapters/persistence"
	"github.com/andrescamacho/production-planner/internal/application/planning/queries"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
	"github.com/andrescamacho/production-planner/test/helpers"
)

func seedRuns(t *testing.T, repo planning.RunRepository, ids ...string) {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	for _, id := range ids {
		run := helpers.CreateReportedRun(t, id, helpers.CreateToolEconomy(5), helpers.NewMockSolver(5), clock)
		require.NoError(t, repo.Save(context.Background(), run))
		clock.Advance(time.Minute)
	}
}

func TestGetRunHandler_WithLogs(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	runRepo := persistence.NewGormPlanningRunRepository(db)
	logRepo := persistence.NewGormRunLogRepository(db)
	seedRuns(t, runRepo, "plan-a")
	require.NoError(t, logRepo.Append(context.Background(), []planning.RunLogEntry{
		{RunID: "plan-a", Timestamp: time.Now(), Level: "INFO", Message: "Tables loaded"},
		{RunID: "plan-a", Timestamp: time.Now(), Level: "WARN", Message: "Commodities left unbalanced"},
	}))
	handler := queries.NewGetRunHandler(runRepo, logRepo)
	level := "WARN"

	// Act
	resp, err := handler.Handle(context.Background(), &queries.GetRunQuery{
		RunID:       "plan-a",
		IncludeLogs: true,
		LogLevel:    &level,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*queries.GetRunResponse)
	assert.Equal(t, "plan-a", result.Run.ID)
	require.Len(t, result.Logs, 1)
	assert.Equal(t, "Commodities left unbalanced", result.Logs[0].Message)
}

func TestGetRunHandler_NotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := queries.NewGetRunHandler(persistence.NewGormPlanningRunRepository(db), nil)

	_, err := handler.Handle(context.Background(), &queries.GetRunQuery{RunID: "nope"})

	var notFound *planning.ErrRunNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestGetRunHandler_RequiresRunID(t *testing.T) {
	handler := queries.NewGetRunHandler(nil, nil)

	_, err := handler.Handle(context.Background(), &queries.GetRunQuery{})

	assert.Error(t, err)
}

func TestListRunsHandler(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	runRepo := persistence.NewGormPlanningRunRepository(db)
	seedRuns(t, runRepo, "plan-1", "plan-2", "plan-3")
	handler := queries.NewListRunsHandler(runRepo)

	// Act
	resp, err := handler.Handle(context.Background(), &queries.ListRunsQuery{Limit: 2})

	// Assert
	require.NoError(t, err)
	runs := resp.(*queries.ListRunsResponse).Runs
	require.Len(t, runs, 2)
	assert.Equal(t, "plan-3", runs[0].ID)
	assert.Equal(t, "plan-2", runs[1].ID)
	assert.Equal(t, "mock", runs[0].Solver)
	assert.Equal(t, "OPTIMAL", runs[0].SolveStatus)
	assert.True(t, runs[0].Feasible)
	assert.Equal(t, 1, runs[0].Producers)
}
