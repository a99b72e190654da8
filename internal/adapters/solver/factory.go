package solver

import (
	"fmt"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// Backend names accepted by New
const (
	NameSimplex    = "simplex"
	NameExhaustive = "exhaustive"
)

// Options tunes the selected backend
type Options struct {
	Tolerance       float64
	MaxCombinations int
}

// New returns the solver backend registered under name
func New(name string, opts Options) (planning.Solver, error) {
	switch name {
	case NameSimplex, "":
		return NewSimplexSolver(opts.Tolerance), nil
	case NameExhaustive:
		return NewExhaustiveSolver(opts.MaxCombinations), nil
	default:
		return nil, fmt.Errorf("unknown solver backend %q (expected %s or %s)", name, NameSimplex, NameExhaustive)
	}
}
