package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/production-planner/internal/adapters/metrics"
	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
	"github.com/andrescamacho/production-planner/pkg/utils"
)

// TableSource yields the four input tables of a run
type TableSource interface {
	Load(ctx context.Context) (economy.Tables, error)
}

// LogCollector is implemented by run loggers that keep the lines they printed
type LogCollector interface {
	Entries() []planning.RunLogEntry
}

// RunPlanCommand loads the tables, solves the production problem and reports
// the resulting balances
type RunPlanCommand struct {
	RunID      string // Generated when empty
	Tables     TableSource
	TimePeriod float64
	Save       bool // Persist the run and its log lines
}

// RunPlanResponse represents the result of a planning run
type RunPlanResponse struct {
	Run      *planning.Run
	Record   *planning.RunRecord
	Saved    bool
	Duration time.Duration
}

// RunPlanHandler handles the RunPlan command
type RunPlanHandler struct {
	solver    planning.Solver
	runRepo   planning.RunRepository
	logRepo   planning.RunLogRepository
	clock     shared.Clock
	threshold float64
}

// NewRunPlanHandler creates a new RunPlanHandler.
// runRepo and logRepo may be nil when runs are never saved.
func NewRunPlanHandler(
	solver planning.Solver,
	runRepo planning.RunRepository,
	logRepo planning.RunLogRepository,
	clock shared.Clock,
	threshold float64,
) *RunPlanHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if threshold <= 0 {
		threshold = planning.DefaultProductionThreshold
	}
	return &RunPlanHandler{
		solver:    solver,
		runRepo:   runRepo,
		logRepo:   logRepo,
		clock:     clock,
		threshold: threshold,
	}
}

// Handle executes the RunPlan command
func (h *RunPlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunPlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunPlanCommand")
	}
	if cmd.Tables == nil {
		return nil, fmt.Errorf("tables source is required")
	}
	if cmd.Save && h.runRepo == nil {
		return nil, fmt.Errorf("cannot save run: no run repository configured")
	}

	logger := common.LoggerFromContext(ctx)
	runID := cmd.RunID
	if runID == "" {
		runID = utils.GenerateRunID("plan")
	}
	start := h.clock.Now()

	model, err := h.loadModel(ctx, cmd)
	if err != nil {
		h.recordValidationFailure(err)
		logger.Log("ERROR", "Input tables rejected", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return nil, err
	}
	logger.Log("INFO", "Tables loaded", map[string]interface{}{
		"run_id":      runID,
		"producers":   model.Producers().Len(),
		"commodities": model.Commodities().Len(),
		"time_period": model.TimePeriod(),
	})

	run := planning.NewRun(runID, h.clock)
	if err := run.LoadTables(model); err != nil {
		return nil, err
	}
	if err := run.Execute(ctx, h.solver, h.threshold); err != nil {
		logger.Log("ERROR", "Planning run failed", map[string]interface{}{
			"run_id": runID,
			"status": string(run.Status()),
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("planning run %s failed: %w", runID, err)
	}

	h.logOutcome(logger, run)

	duration := h.clock.Now().Sub(start)
	record := run.Record()
	metrics.RecordRunCompletion(record, duration)

	response := &RunPlanResponse{
		Run:      run,
		Record:   record,
		Duration: duration,
	}

	if cmd.Save {
		if err := h.runRepo.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to save planning run: %w", err)
		}
		logger.Log("INFO", "Planning run saved", map[string]interface{}{"run_id": runID})
		h.saveLogs(ctx, logger)
		response.Saved = true
	}

	return response, nil
}

func (h *RunPlanHandler) loadModel(ctx context.Context, cmd *RunPlanCommand) (*economy.Model, error) {
	tables, err := cmd.Tables.Load(ctx)
	if err != nil {
		return nil, err
	}
	return economy.NewModel(tables, cmd.TimePeriod)
}

func (h *RunPlanHandler) recordValidationFailure(err error) {
	var validationErr *economy.ValidationError
	if errors.As(err, &validationErr) {
		metrics.RecordValidationFailure(string(validationErr.Kind))
	}
}

func (h *RunPlanHandler) logOutcome(logger common.RunLogger, run *planning.Run) {
	problem := run.Problem()
	logger.Log("DEBUG", "Problem formulated", map[string]interface{}{
		"run_id":      run.ID(),
		"variables":   problem.NumVariables(),
		"constraints": problem.NumConstraints(),
	})

	result := run.Result()
	if !run.IsFeasible() {
		logger.Log("WARN", "Solver returned no plan", map[string]interface{}{
			"run_id":  run.ID(),
			"solver":  run.SolverName(),
			"status":  string(result.Status),
			"message": result.Message,
		})
	} else {
		logger.Log("INFO", "Plan assembled", map[string]interface{}{
			"run_id":    run.ID(),
			"solver":    run.SolverName(),
			"objective": result.Objective,
			"entries":   len(run.Plan().Entries),
		})
	}

	report := run.Report()
	if !report.IsBalanced() {
		commodities := make([]string, len(report.Unbalanced))
		for i, b := range report.Unbalanced {
			commodities[i] = b.Commodity
		}
		logger.Log("WARN", "Commodities left unbalanced", map[string]interface{}{
			"run_id":      run.ID(),
			"commodities": commodities,
		})
	}
}

// saveLogs persists the lines captured by the context logger. A failure here
// does not fail the run.
func (h *RunPlanHandler) saveLogs(ctx context.Context, logger common.RunLogger) {
	collector, ok := logger.(LogCollector)
	if !ok || h.logRepo == nil {
		return
	}
	if err := h.logRepo.Append(ctx, collector.Entries()); err != nil {
		logger.Log("ERROR", "Failed to persist run logs", map[string]interface{}{"error": err.Error()})
	}
}
