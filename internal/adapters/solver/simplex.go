package solver

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

const (
	// DefaultTolerance is the pivot tolerance handed to the simplex method
	DefaultTolerance = 1e-9

	messageOptimal    = "Optimization terminated successfully."
	messageInfeasible = "The problem is infeasible."
	messageUnbounded  = "The problem is unbounded."
)

// SimplexSolver solves planning problems with gonum's simplex implementation.
//
// The inequality problem is rewritten in standard form
//
//	minimize cᵀz  subject to  Az = b, z >= 0
//
// with one slack column per commodity row and one per finite upper bound.
// Rows with a negative right-hand side are negated so b >= 0.
type SimplexSolver struct {
	tolerance float64
}

// NewSimplexSolver creates a simplex backend. A non-positive tolerance selects DefaultTolerance.
func NewSimplexSolver(tolerance float64) *SimplexSolver {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &SimplexSolver{tolerance: tolerance}
}

// Name identifies the backend in logs and persisted runs
func (s *SimplexSolver) Name() string {
	return NameSimplex
}

// Solve implements planning.Solver
func (s *SimplexSolver) Solve(ctx context.Context, problem *planning.Problem) (*planning.SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateProblem(problem); err != nil {
		return nil, err
	}

	logger := common.LoggerFromContext(ctx)
	n := problem.NumVariables()
	if n == 0 {
		return &planning.SolveResult{Status: planning.SolveStatusOptimal, X: []float64{}, Message: messageOptimal}, nil
	}

	x := make([]float64, n)

	// gonum rejects all-zero columns, so variables that touch no commodity row
	// are settled here from their cost and bound alone
	var active []int
	unboundedDirection := false
	for i := 0; i < n; i++ {
		if !columnIsZero(problem, i) {
			active = append(active, i)
			continue
		}
		cost := problem.Objective[i]
		switch {
		case cost >= 0:
			x[i] = problem.Bounds[i].Lower
		case problem.Bounds[i].Unbounded:
			unboundedDirection = true
		default:
			x[i] = problem.Bounds[i].Upper
		}
	}

	c, a, b := standardForm(problem, active)

	logger.Log("DEBUG", "Solving standard form problem", map[string]interface{}{
		"solver":      NameSimplex,
		"rows":        len(b),
		"columns":     len(c),
		"zero_column": n - len(active),
	})

	_, z, err := lp.Simplex(c, a, b, s.tolerance, nil)
	if err != nil {
		return statusFromError(err), nil
	}
	if unboundedDirection {
		return &planning.SolveResult{Status: planning.SolveStatusUnbounded, Message: messageUnbounded}, nil
	}

	for k, i := range active {
		x[i] = clampNonNegative(z[k])
	}

	return &planning.SolveResult{
		Status:    planning.SolveStatusOptimal,
		X:         x,
		Objective: problem.ObjectiveValue(x),
		Message:   messageOptimal,
	}, nil
}

// standardForm builds c, A and b over the active variables
func standardForm(problem *planning.Problem, active []int) ([]float64, mat.Matrix, []float64) {
	m := problem.NumConstraints()

	var bounded []int
	for _, i := range active {
		if !problem.Bounds[i].Unbounded {
			bounded = append(bounded, i)
		}
	}

	rows := m + len(bounded)
	cols := len(active) + m + len(bounded)

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	for k, i := range active {
		c[k] = problem.Objective[i]
	}

	for j := 0; j < m; j++ {
		rhs := problem.RHS[j]
		sign := 1.0
		if rhs < 0 {
			sign = -1
		}
		for k, i := range active {
			a.Set(j, k, sign*problem.Coefficient(j, i))
		}
		a.Set(j, len(active)+j, sign)
		b[j] = sign * rhs
	}

	column := make(map[int]int, len(active))
	for k, i := range active {
		column[i] = k
	}
	for r, i := range bounded {
		row := m + r
		a.Set(row, column[i], 1)
		a.Set(row, len(active)+m+r, 1)
		b[row] = problem.Bounds[i].Upper
	}

	return c, a, b
}

func statusFromError(err error) *planning.SolveResult {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &planning.SolveResult{Status: planning.SolveStatusInfeasible, Message: messageInfeasible}
	case errors.Is(err, lp.ErrUnbounded):
		return &planning.SolveResult{Status: planning.SolveStatusUnbounded, Message: messageUnbounded}
	default:
		return &planning.SolveResult{Status: planning.SolveStatusFailed, Message: fmt.Sprintf("Solver failed: %v", err)}
	}
}

func columnIsZero(problem *planning.Problem, i int) bool {
	for j := 0; j < problem.NumConstraints(); j++ {
		if problem.Coefficient(j, i) != 0 {
			return false
		}
	}
	return true
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func validateProblem(problem *planning.Problem) error {
	if problem == nil {
		return fmt.Errorf("problem cannot be nil")
	}
	n := problem.NumVariables()
	if len(problem.Objective) != n || len(problem.Bounds) != n {
		return fmt.Errorf("problem has %d variables but %d objective coefficients and %d bounds",
			n, len(problem.Objective), len(problem.Bounds))
	}
	if len(problem.RHS) != problem.NumConstraints() {
		return fmt.Errorf("problem has %d constraints but %d right-hand sides",
			problem.NumConstraints(), len(problem.RHS))
	}
	return nil
}
