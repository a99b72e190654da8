package cli

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/production-planner/internal/adapters/tables"
	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// Process exit codes
const (
	ExitOK           = 0
	ExitFailure      = 1 // configuration, database and other failures
	ExitInvalidInput = 2 // unreadable or invalid tables, bad time period
	ExitNoPlan       = 3 // infeasible, unbounded or failed solve
)

// ErrNoPlan indicates the run finished without an optimal plan. The report has
// already been written when it is returned.
type ErrNoPlan struct {
	RunID   string
	Status  planning.SolveStatus
	Message string
}

func (e *ErrNoPlan) Error() string {
	return fmt.Sprintf("planning run %s produced no plan (%s): %s", e.RunID, e.Status, e.Message)
}

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var validationErr *economy.ValidationError
	var inputErr *tables.ErrInputFile
	var noPlan *ErrNoPlan
	switch {
	case errors.As(err, &validationErr), errors.As(err, &inputErr):
		return ExitInvalidInput
	case errors.As(err, &noPlan):
		return ExitNoPlan
	default:
		return ExitFailure
	}
}
