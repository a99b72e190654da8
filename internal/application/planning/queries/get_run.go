package queries

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// GetRunQuery retrieves a persisted planning run, optionally with its log lines
type GetRunQuery struct {
	RunID       string
	IncludeLogs bool
	LogLevel    *string // Optional level filter (DEBUG, INFO, WARN, ERROR)
	LogLimit    int     // Non-positive returns every line
}

// GetRunResponse represents the result of the query
type GetRunResponse struct {
	Run  *planning.RunRecord
	Logs []planning.RunLogEntry
}

// GetRunHandler handles the GetRun query
type GetRunHandler struct {
	runRepo planning.RunRepository
	logRepo planning.RunLogRepository
}

// NewGetRunHandler creates a new GetRunHandler
func NewGetRunHandler(runRepo planning.RunRepository, logRepo planning.RunLogRepository) *GetRunHandler {
	return &GetRunHandler{
		runRepo: runRepo,
		logRepo: logRepo,
	}
}

// Handle executes the GetRun query
func (h *GetRunHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetRunQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetRunQuery")
	}
	if query.RunID == "" {
		return nil, fmt.Errorf("run_id is required")
	}

	response := &GetRunResponse{}

	// The run and its log lines live in separate tables; fetch both at once
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		record, err := h.runRepo.FindByID(gctx, query.RunID)
		if err != nil {
			return err
		}
		response.Run = record
		return nil
	})
	if query.IncludeLogs && h.logRepo != nil {
		g.Go(func() error {
			logs, err := h.logRepo.GetLogs(gctx, query.RunID, query.LogLimit, query.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to get logs of run %s: %w", query.RunID, err)
			}
			response.Logs = logs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return response, nil
}
