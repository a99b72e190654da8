package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
)

// RunStatus is the pipeline stage a planning run has reached
type RunStatus string

const (
	// RunStatusUnloaded indicates no tables have been loaded yet
	RunStatusUnloaded RunStatus = "UNLOADED"

	// RunStatusTablesLoaded indicates a validated model is attached
	RunStatusTablesLoaded RunStatus = "TABLES_LOADED"

	// RunStatusFormulated indicates materials are initialized and the LP is built
	RunStatusFormulated RunStatus = "FORMULATED"

	// RunStatusSolvedOptimal indicates the solver found an optimal plan
	RunStatusSolvedOptimal RunStatus = "SOLVED_OPTIMAL"

	// RunStatusSolvedInfeasible indicates the solver returned any non-optimal status
	RunStatusSolvedInfeasible RunStatus = "SOLVED_INFEASIBLE"

	// RunStatusPlanAssembled indicates the plan was applied to the ledger
	RunStatusPlanAssembled RunStatus = "PLAN_ASSEMBLED"

	// RunStatusReported indicates the balance report is final
	RunStatusReported RunStatus = "REPORTED"
)

// Run is the aggregate root of one planning invocation. It owns the model,
// the formulated problem, the solver outcome, the plan and the report, and only
// moves forward through:
//
//	UNLOADED → TABLES_LOADED → FORMULATED → SOLVED_OPTIMAL → PLAN_ASSEMBLED → REPORTED
//	                                      ↘ SOLVED_INFEASIBLE ─────────────↗
//
// A Run is not safe for concurrent use; concurrent planning needs separate runs.
type Run struct {
	id          string
	status      RunStatus
	solverName  string
	model       *economy.Model
	problem     *Problem
	result      *SolveResult
	plan        *Plan
	report      *BalanceReport
	createdAt   time.Time
	updatedAt   time.Time
	completedAt *time.Time
	clock       shared.Clock
}

// NewRun creates a run in UNLOADED state.
// If clock is nil, uses RealClock (production behavior)
func NewRun(id string, clock shared.Clock) *Run {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	now := clock.Now()
	return &Run{
		id:        id,
		status:    RunStatusUnloaded,
		createdAt: now,
		updatedAt: now,
		clock:     clock,
	}
}

// Getters

func (r *Run) ID() string              { return r.id }
func (r *Run) Status() RunStatus       { return r.status }
func (r *Run) SolverName() string      { return r.solverName }
func (r *Run) Model() *economy.Model   { return r.model }
func (r *Run) Problem() *Problem       { return r.problem }
func (r *Run) Result() *SolveResult    { return r.result }
func (r *Run) Plan() *Plan             { return r.plan }
func (r *Run) Report() *BalanceReport  { return r.report }
func (r *Run) CreatedAt() time.Time    { return r.createdAt }
func (r *Run) UpdatedAt() time.Time    { return r.updatedAt }
func (r *Run) CompletedAt() *time.Time { return r.completedAt }

// IsFeasible reports whether the solver produced an optimal plan
func (r *Run) IsFeasible() bool {
	return r.result != nil && r.result.Status.IsOptimal()
}

// State transitions

// LoadTables attaches a validated model
func (r *Run) LoadTables(model *economy.Model) error {
	if r.status != RunStatusUnloaded {
		return r.invalid("load tables into")
	}
	if model == nil {
		return shared.NewDomainError("model cannot be nil")
	}

	r.model = model
	r.transition(RunStatusTablesLoaded)
	return nil
}

// Formulate initializes the materials balance and builds the linear program
func (r *Run) Formulate() error {
	if r.status != RunStatusTablesLoaded {
		return r.invalid("formulate")
	}

	if err := r.model.Ledger().InitializeMaterials(); err != nil {
		return err
	}
	problem, err := Formulate(r.model)
	if err != nil {
		return err
	}

	r.problem = problem
	r.transition(RunStatusFormulated)
	return nil
}

// Solve hands the problem to the solver. A non-optimal outcome is recorded, not
// returned as an error.
func (r *Run) Solve(ctx context.Context, solver Solver) error {
	if r.status != RunStatusFormulated {
		return r.invalid("solve")
	}

	result, err := solver.Solve(ctx, r.problem)
	if err != nil {
		return fmt.Errorf("solver %s failed: %w", solver.Name(), err)
	}
	if result.Status.IsOptimal() && len(result.X) != r.problem.NumVariables() {
		return &ErrSolutionShape{Expected: r.problem.NumVariables(), Actual: len(result.X)}
	}

	r.solverName = solver.Name()
	r.result = result
	if result.Status.IsOptimal() {
		r.transition(RunStatusSolvedOptimal)
	} else {
		r.transition(RunStatusSolvedInfeasible)
	}
	return nil
}

// AssemblePlan applies the optimal solution to the ledger
func (r *Run) AssemblePlan(threshold float64) error {
	if r.status != RunStatusSolvedOptimal {
		return r.invalid("assemble plan for")
	}

	plan, err := AssemblePlan(r.model, r.problem, r.result.X, threshold)
	if err != nil {
		return err
	}

	r.plan = plan
	r.transition(RunStatusPlanAssembled)
	return nil
}

// Finish builds the balance report and closes the run
func (r *Run) Finish() error {
	if r.status != RunStatusPlanAssembled && r.status != RunStatusSolvedInfeasible {
		return r.invalid("report")
	}

	if r.plan == nil {
		r.plan = &Plan{}
	}
	r.report = NewBalanceReport(r.model.Ledger())
	r.transition(RunStatusReported)
	now := r.updatedAt
	r.completedAt = &now
	return nil
}

// Execute drives a run with loaded tables through every remaining stage
func (r *Run) Execute(ctx context.Context, solver Solver, threshold float64) error {
	if err := r.Formulate(); err != nil {
		return err
	}
	if err := r.Solve(ctx, solver); err != nil {
		return err
	}
	if r.status == RunStatusSolvedOptimal {
		if err := r.AssemblePlan(threshold); err != nil {
			return err
		}
	}
	return r.Finish()
}

func (r *Run) transition(status RunStatus) {
	r.status = status
	r.updatedAt = r.clock.Now()
}

func (r *Run) invalid(attempted string) error {
	return &ErrInvalidRunState{CurrentState: r.status, Attempted: attempted}
}

// String provides human-readable representation
func (r *Run) String() string {
	return fmt.Sprintf("PlanningRun[%s, status=%s, solver=%s]", r.id, r.status, r.solverName)
}
