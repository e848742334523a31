package normalize

import "math"

// Default balance tolerances: 2% relative or 50 currency units, whichever is larger.
const (
	DefaultRelativeTolerance = 0.02
	DefaultAbsoluteTolerance = 50.0
)

// Tolerance bounds how far a supplied subtotal may drift from its recomputed value.
type Tolerance struct {
	Relative float64
	Absolute float64
}

// DefaultTolerance returns the standard balance tolerance.
func DefaultTolerance() Tolerance {
	return Tolerance{Relative: DefaultRelativeTolerance, Absolute: DefaultAbsoluteTolerance}
}

// Allowed returns the permitted gap between actual and expected.
func (t Tolerance) Allowed(actual, expected float64) float64 {
	relative := t.Relative * math.Max(math.Abs(actual), math.Abs(expected))
	return math.Max(t.Absolute, relative)
}

// BalanceCheck reports whether actual reconciles with expected within tol.
func BalanceCheck(actual, expected float64, tol Tolerance) bool {
	return math.Abs(actual-expected) <= tol.Allowed(actual, expected)
}
