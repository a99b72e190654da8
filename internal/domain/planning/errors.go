package planning

import "fmt"

// ErrInvalidRunState indicates an illegal planning run transition
type ErrInvalidRunState struct {
	CurrentState RunStatus
	Attempted    string
}

func (e *ErrInvalidRunState) Error() string {
	return fmt.Sprintf("cannot %s planning run in %s state", e.Attempted, e.CurrentState)
}

// ErrMaterialsNotInitialized indicates formulation was attempted before the
// ledger's materials balance was set up
type ErrMaterialsNotInitialized struct{}

func (e *ErrMaterialsNotInitialized) Error() string {
	return "materials balance must be initialized before formulation"
}

// ErrSolutionShape indicates a solver returned a vector that does not match the problem
type ErrSolutionShape struct {
	Expected int
	Actual   int
}

func (e *ErrSolutionShape) Error() string {
	return fmt.Sprintf("solution vector has %d entries, expected %d", e.Actual, e.Expected)
}

// ErrRunNotFound indicates a persisted run does not exist
type ErrRunNotFound struct {
	ID string
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("planning run not found: %s", e.ID)
}
