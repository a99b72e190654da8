package shared

import "math"

const (
	// AmountTolerance absorbs rounding noise in parsed quantities and capacity comparisons
	AmountTolerance = 1e-5
)

// ApproxEqual reports whether a and b differ by less than tol
func ApproxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}
