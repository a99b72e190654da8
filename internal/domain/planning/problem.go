package planning

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Bound is the admissible range of one decision variable
type Bound struct {
	Lower float64
	// Upper is meaningful only when Unbounded is false
	Upper     float64
	Unbounded bool
}

// UpperOr returns the upper bound, or fallback when the variable has no cap
func (b Bound) UpperOr(fallback float64) float64 {
	if b.Unbounded {
		return fallback
	}
	return b.Upper
}

// Problem is a linear program in inequality form:
//
//	minimize    Objectiveᵀ x
//	subject to  Constraints · x <= RHS
//	            Bounds[i].Lower <= x[i] <= Bounds[i].Upper
//
// Column i refers to Producers[i] and row j to Commodities[j]; both follow the
// canonical name ordering.
type Problem struct {
	Producers   []string
	Commodities []string
	Objective   []float64
	// Constraints is len(Commodities) x len(Producers); nil when there are no producers
	Constraints *mat.Dense
	RHS         []float64
	Bounds      []Bound
}

// NumVariables returns the number of decision variables
func (p *Problem) NumVariables() int {
	return len(p.Producers)
}

// NumConstraints returns the number of inequality rows
func (p *Problem) NumConstraints() int {
	return len(p.Commodities)
}

// Coefficient returns the constraint coefficient of producer i in commodity row j
func (p *Problem) Coefficient(j, i int) float64 {
	if p.Constraints == nil {
		return 0
	}
	return p.Constraints.At(j, i)
}

// Row returns a copy of constraint row j
func (p *Problem) Row(j int) []float64 {
	if p.Constraints == nil {
		return nil
	}
	return mat.Row(nil, j, p.Constraints)
}

// ObjectiveValue evaluates the objective at x
func (p *Problem) ObjectiveValue(x []float64) float64 {
	var value float64
	for i, c := range p.Objective {
		value += c * x[i]
	}
	return value
}

// MaxViolation returns the largest amount by which x breaks a constraint or bound;
// zero means x is feasible
func (p *Problem) MaxViolation(x []float64) float64 {
	var worst float64
	for j := range p.Commodities {
		var lhs float64
		for i := range p.Producers {
			lhs += p.Coefficient(j, i) * x[i]
		}
		worst = math.Max(worst, lhs-p.RHS[j])
	}
	for i, b := range p.Bounds {
		worst = math.Max(worst, b.Lower-x[i])
		if !b.Unbounded {
			worst = math.Max(worst, x[i]-b.Upper)
		}
	}
	return worst
}
