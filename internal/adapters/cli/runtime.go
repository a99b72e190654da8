package cli

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/production-planner/internal/adapters/metrics"
	"github.com/andrescamacho/production-planner/internal/adapters/persistence"
	"github.com/andrescamacho/production-planner/internal/adapters/solver"
	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/application/setup"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/infrastructure/config"
	"github.com/andrescamacho/production-planner/internal/infrastructure/database"
)

// runtimeOptions selects which dependencies a command needs
type runtimeOptions struct {
	solver  bool
	store   bool
	metrics bool
}

// runtime bundles the wired dependencies of one CLI invocation
type runtime struct {
	cfg      *config.Config
	mediator common.Mediator
	db       *gorm.DB
}

func newRuntime(cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	var backend planning.Solver
	if opts.solver {
		var err error
		backend, err = solver.New(cfg.Planner.Solver, solver.Options{
			Tolerance:       cfg.Planner.Tolerance,
			MaxCombinations: cfg.Planner.MaxCombinations,
		})
		if err != nil {
			return nil, err
		}
	}

	var runRepo planning.RunRepository
	var logRepo planning.RunLogRepository
	if opts.store {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to run store: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to migrate run store: %w", err)
		}
		rt.db = db
		runRepo = persistence.NewGormPlanningRunRepository(db)
		logRepo = persistence.NewGormRunLogRepository(db)
	}

	registry := setup.NewHandlerRegistry(backend, runRepo, logRepo, nil, cfg.Planner.ProductionThreshold)

	if opts.metrics {
		commandMetrics, err := initMetrics(cfg.Metrics.Namespace)
		if err != nil {
			rt.Close()
			return nil, err
		}
		registry.WithCommandMetrics(commandMetrics)
	}

	m, err := registry.CreateConfiguredMediator()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to configure handlers: %w", err)
	}
	rt.mediator = m

	return rt, nil
}

// initMetrics creates a fresh registry with the planning and command collectors
func initMetrics(namespace string) (*metrics.CommandMetricsCollector, error) {
	metrics.InitRegistry()

	planningCollector := metrics.NewPlanningMetricsCollector(namespace)
	if err := planningCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register planning metrics: %w", err)
	}
	metrics.SetGlobalPlanningCollector(planningCollector)

	commandCollector := metrics.NewCommandMetricsCollector(namespace)
	if err := commandCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	return commandCollector, nil
}

// Close releases the run store connection, if any
func (r *runtime) Close() {
	if r.db != nil {
		database.Close(r.db)
		r.db = nil
	}
}
