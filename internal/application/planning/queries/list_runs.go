package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// DefaultListLimit caps the history listing when no limit is given
const DefaultListLimit = 20

// ListRunsQuery lists persisted planning runs, newest first
type ListRunsQuery struct {
	Limit int
}

// ListRunsResponse represents the result of the query
type ListRunsResponse struct {
	Runs []*RunSummaryDTO
}

// RunSummaryDTO is one line of the run history
type RunSummaryDTO struct {
	ID          string
	CreatedAt   time.Time
	Solver      string
	SolveStatus string
	Objective   float64
	TimePeriod  float64
	Producers   int
	Feasible    bool
}

// ListRunsHandler handles the ListRuns query
type ListRunsHandler struct {
	runRepo planning.RunRepository
}

// NewListRunsHandler creates a new ListRunsHandler
func NewListRunsHandler(runRepo planning.RunRepository) *ListRunsHandler {
	return &ListRunsHandler{runRepo: runRepo}
}

// Handle executes the ListRuns query
func (h *ListRunsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListRunsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRunsQuery")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	records, err := h.runRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list planning runs: %w", err)
	}

	dtos := make([]*RunSummaryDTO, len(records))
	for i, record := range records {
		dtos[i] = h.toDTO(record)
	}

	return &ListRunsResponse{Runs: dtos}, nil
}

func (h *ListRunsHandler) toDTO(record *planning.RunRecord) *RunSummaryDTO {
	return &RunSummaryDTO{
		ID:          record.ID,
		CreatedAt:   record.CreatedAt,
		Solver:      record.Solver,
		SolveStatus: string(record.SolveStatus),
		Objective:   record.Objective,
		TimePeriod:  record.TimePeriod,
		Producers:   len(record.Producers),
		Feasible:    record.IsFeasible(),
	}
}
