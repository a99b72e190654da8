package helpers

import (
	"context"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// MockSolver is a test double for planning.Solver that returns a canned result
type MockSolver struct {
	result    *planning.SolveResult
	err       error
	callCount int
	lastInput *planning.Problem
}

// NewMockSolver creates a MockSolver reporting an optimal solution x
func NewMockSolver(x ...float64) *MockSolver {
	return &MockSolver{result: &planning.SolveResult{
		Status:  planning.SolveStatusOptimal,
		X:       x,
		Message: "Optimization terminated successfully.",
	}}
}

// NewInfeasibleMockSolver creates a MockSolver reporting infeasibility
func NewInfeasibleMockSolver() *MockSolver {
	return &MockSolver{result: &planning.SolveResult{
		Status:  planning.SolveStatusInfeasible,
		Message: "The problem is infeasible.",
	}}
}

// Name implements planning.Solver
func (m *MockSolver) Name() string {
	return "mock"
}

// Solve implements planning.Solver
func (m *MockSolver) Solve(ctx context.Context, problem *planning.Problem) (*planning.SolveResult, error) {
	m.callCount++
	m.lastInput = problem
	if m.err != nil {
		return nil, m.err
	}
	if m.result.Status.IsOptimal() && len(m.result.X) == problem.NumVariables() {
		m.result.Objective = problem.ObjectiveValue(m.result.X)
	}
	return m.result, nil
}

// SetError makes every Solve call fail with err
func (m *MockSolver) SetError(err error) {
	m.err = err
}

// CallCount returns how many times Solve was called
func (m *MockSolver) CallCount() int {
	return m.callCount
}

// LastProblem returns the problem passed to the most recent Solve call
func (m *MockSolver) LastProblem() *planning.Problem {
	return m.lastInput
}
