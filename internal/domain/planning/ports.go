package planning

import (
	"context"
	"time"
)

// SolveStatus is the outcome reported by a solver backend
type SolveStatus string

const (
	// SolveStatusOptimal indicates an optimal solution was found
	SolveStatusOptimal SolveStatus = "OPTIMAL"

	// SolveStatusInfeasible indicates no point satisfies the constraints and bounds
	SolveStatusInfeasible SolveStatus = "INFEASIBLE"

	// SolveStatusUnbounded indicates the objective can decrease without limit
	SolveStatusUnbounded SolveStatus = "UNBOUNDED"

	// SolveStatusFailed indicates the backend gave up for numerical or size reasons
	SolveStatusFailed SolveStatus = "FAILED"
)

// IsOptimal reports whether the status carries a usable solution
func (s SolveStatus) IsOptimal() bool {
	return s == SolveStatusOptimal
}

// SolveResult is the backend's answer to one Problem.
// X and Objective are only meaningful when Status is optimal.
type SolveResult struct {
	Status    SolveStatus
	X         []float64
	Objective float64
	Message   string
}

// Solver solves linear programs. Any non-optimal status is returned as data;
// the error return is reserved for misuse (e.g. a malformed problem or a
// cancelled context).
type Solver interface {
	Name() string
	Solve(ctx context.Context, problem *Problem) (*SolveResult, error)
}

// RunRepository persists finished planning runs
type RunRepository interface {
	// Save persists a reported run
	Save(ctx context.Context, run *Run) error

	// FindByID retrieves a persisted run
	FindByID(ctx context.Context, id string) (*RunRecord, error)

	// List returns the most recent runs first
	List(ctx context.Context, limit int) ([]*RunRecord, error)
}

// RunLogEntry is one log line captured while a run executed
type RunLogEntry struct {
	RunID     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// RunLogRepository stores the log lines of persisted runs
type RunLogRepository interface {
	// Append stores entries in order
	Append(ctx context.Context, entries []RunLogEntry) error

	// GetLogs returns a run's entries oldest first, optionally filtered by level
	GetLogs(ctx context.Context, runID string, limit int, level *string) ([]RunLogEntry, error)
}
