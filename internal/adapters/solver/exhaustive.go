package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// DefaultMaxCombinations caps the number of candidate vertices the exhaustive backend visits
const DefaultMaxCombinations = 250000

// feasibilitySlack is the constraint violation accepted for a candidate vertex
const feasibilitySlack = 1e-7

// ExhaustiveSolver enumerates every vertex of the feasible polytope and keeps
// the cheapest one. It is exponential in the problem size and only meant for
// small instances, where it serves as an independent check on the simplex backend.
//
// Unbounded variables get the artificial cap economy.UnboundedCapacitySentinel.
// The search is repeated with twice that cap; an objective that still improves
// means the problem is unbounded.
type ExhaustiveSolver struct {
	maxCombinations int
	ceiling         float64
}

// NewExhaustiveSolver creates an exhaustive backend. A non-positive limit selects DefaultMaxCombinations.
func NewExhaustiveSolver(maxCombinations int) *ExhaustiveSolver {
	if maxCombinations <= 0 {
		maxCombinations = DefaultMaxCombinations
	}
	return &ExhaustiveSolver{maxCombinations: maxCombinations, ceiling: economy.UnboundedCapacitySentinel}
}

// Name identifies the backend in logs and persisted runs
func (s *ExhaustiveSolver) Name() string {
	return NameExhaustive
}

// Solve implements planning.Solver
func (s *ExhaustiveSolver) Solve(ctx context.Context, problem *planning.Problem) (*planning.SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateProblem(problem); err != nil {
		return nil, err
	}

	n := problem.NumVariables()
	if n == 0 {
		return &planning.SolveResult{Status: planning.SolveStatusOptimal, X: []float64{}, Message: messageOptimal}, nil
	}

	halfspaces := problem.NumConstraints() + 2*n
	candidates := combin.GeneralizedBinomial(float64(halfspaces), float64(n))
	if candidates > float64(s.maxCombinations) {
		return &planning.SolveResult{
			Status:  planning.SolveStatusFailed,
			Message: fmt.Sprintf("Solver failed: %.0f candidate vertices exceed the limit of %d", candidates, s.maxCombinations),
		}, nil
	}

	common.LoggerFromContext(ctx).Log("DEBUG", "Enumerating vertices", map[string]interface{}{
		"solver":     NameExhaustive,
		"variables":  n,
		"halfspaces": halfspaces,
		"candidates": int(candidates),
	})

	x, objective, found, err := s.bestVertex(ctx, problem, s.ceiling)
	if err != nil {
		return nil, err
	}
	if !found {
		return &planning.SolveResult{Status: planning.SolveStatusInfeasible, Message: messageInfeasible}, nil
	}

	if hasUnboundedVariable(problem) {
		_, wider, _, err := s.bestVertex(ctx, problem, 2*s.ceiling)
		if err != nil {
			return nil, err
		}
		if wider < objective-math.Max(1, math.Abs(objective))*1e-9 {
			return &planning.SolveResult{Status: planning.SolveStatusUnbounded, Message: messageUnbounded}, nil
		}
	}

	return &planning.SolveResult{
		Status:    planning.SolveStatusOptimal,
		X:         x,
		Objective: objective,
		Message:   messageOptimal,
	}, nil
}

// bestVertex returns the feasible vertex with the lowest objective. The
// halfspaces are the commodity rows, then -x_i <= 0, then x_i <= upper_i.
// Ties keep the first vertex in enumeration order.
func (s *ExhaustiveSolver) bestVertex(ctx context.Context, problem *planning.Problem, ceiling float64) ([]float64, float64, bool, error) {
	n := problem.NumVariables()
	m := problem.NumConstraints()
	total := m + 2*n

	normals := mat.NewDense(total, n, nil)
	offsets := make([]float64, total)
	for j := 0; j < m; j++ {
		normals.SetRow(j, problem.Row(j))
		offsets[j] = problem.RHS[j]
	}
	for i := 0; i < n; i++ {
		normals.Set(m+i, i, -1)
		offsets[m+i] = -problem.Bounds[i].Lower
		normals.Set(m+n+i, i, 1)
		offsets[m+n+i] = problem.Bounds[i].UpperOr(ceiling)
	}

	var (
		best      []float64
		bestValue = math.Inf(1)
		found     bool
	)

	system := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)
	var solution mat.VecDense

	gen := combin.NewCombinationGenerator(total, n)
	combination := make([]int, n)
	for visited := 0; gen.Next(); visited++ {
		if visited%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, false, err
			}
		}
		gen.Combination(combination)
		for r, h := range combination {
			system.SetRow(r, normals.RawRowView(h))
			rhs.SetVec(r, offsets[h])
		}
		if err := solution.SolveVec(system, rhs); err != nil {
			continue
		}

		x := make([]float64, n)
		for i := range x {
			x[i] = solution.AtVec(i)
		}
		if !withinHalfspaces(normals, offsets, x) {
			continue
		}

		value := problem.ObjectiveValue(x)
		if value < bestValue-1e-12 {
			for i := range x {
				x[i] = clampNonNegative(x[i])
			}
			best, bestValue, found = x, value, true
		}
	}

	return best, bestValue, found, nil
}

// withinHalfspaces accepts x when every row holds up to a slack relative to
// the row's magnitude, so vertices with huge terms are not lost to rounding
func withinHalfspaces(normals *mat.Dense, offsets []float64, x []float64) bool {
	point := mat.NewVecDense(len(x), x)
	var lhs mat.VecDense
	lhs.MulVec(normals, point)
	for h, b := range offsets {
		var terms float64
		for i, a := range normals.RawRowView(h) {
			terms += math.Abs(a * x[i])
		}
		scale := math.Max(1, math.Max(math.Abs(b), terms))
		if lhs.AtVec(h) > b+feasibilitySlack*scale {
			return false
		}
	}
	return true
}

func hasUnboundedVariable(problem *planning.Problem) bool {
	for _, b := range problem.Bounds {
		if b.Unbounded {
			return true
		}
	}
	return false
}
