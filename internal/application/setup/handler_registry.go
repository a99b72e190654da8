package setup

import (
	"reflect"

	"github.com/andrescamacho/production-planner/internal/adapters/metrics"
	"github.com/andrescamacho/production-planner/internal/application/common"
	planningCommands "github.com/andrescamacho/production-planner/internal/application/planning/commands"
	planningQueries "github.com/andrescamacho/production-planner/internal/application/planning/queries"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	solver    planning.Solver
	runRepo   planning.RunRepository
	logRepo   planning.RunLogRepository
	clock     shared.Clock
	threshold float64

	commandMetrics *metrics.CommandMetricsCollector
}

// NewHandlerRegistry creates a new handler registry with required dependencies.
// runRepo and logRepo may be nil; history handlers are then not registered.
func NewHandlerRegistry(
	solver planning.Solver,
	runRepo planning.RunRepository,
	logRepo planning.RunLogRepository,
	clock shared.Clock,
	threshold float64,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		solver:    solver,
		runRepo:   runRepo,
		logRepo:   logRepo,
		clock:     clock,
		threshold: threshold,
	}
}

// WithCommandMetrics records the duration and outcome of every request
func (r *HandlerRegistry) WithCommandMetrics(collector *metrics.CommandMetricsCollector) *HandlerRegistry {
	r.commandMetrics = collector
	return r
}

// RegisterPlanningHandlers registers the planning command handler with the mediator
//
// This method registers:
//   - RunPlanCommand → RunPlanHandler
func (r *HandlerRegistry) RegisterPlanningHandlers(m common.Mediator) error {
	runPlanHandler := planningCommands.NewRunPlanHandler(r.solver, r.runRepo, r.logRepo, r.clock, r.threshold)
	return m.Register(
		reflect.TypeOf(&planningCommands.RunPlanCommand{}),
		runPlanHandler,
	)
}

// RegisterHistoryHandlers registers the run history query handlers with the mediator
//
// This method registers:
//   - GetRunQuery → GetRunHandler
//   - ListRunsQuery → ListRunsHandler
func (r *HandlerRegistry) RegisterHistoryHandlers(m common.Mediator) error {
	getRunHandler := planningQueries.NewGetRunHandler(r.runRepo, r.logRepo)
	if err := m.Register(
		reflect.TypeOf(&planningQueries.GetRunQuery{}),
		getRunHandler,
	); err != nil {
		return err
	}

	listRunsHandler := planningQueries.NewListRunsHandler(r.runRepo)
	if err := m.Register(
		reflect.TypeOf(&planningQueries.ListRunsQuery{}),
		listRunsHandler,
	); err != nil {
		return err
	}

	return nil
}

// CreateConfiguredMediator creates a new mediator with all available handlers registered
func (r *HandlerRegistry) CreateConfiguredMediator() (common.Mediator, error) {
	m := common.NewMediator()

	if r.commandMetrics != nil {
		m.Use(metrics.PrometheusMiddleware(r.commandMetrics))
	}

	if r.solver != nil {
		if err := r.RegisterPlanningHandlers(m); err != nil {
			return nil, err
		}
	}

	// Register history handlers if a run store is available
	if r.runRepo != nil {
		if err := r.RegisterHistoryHandlers(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
