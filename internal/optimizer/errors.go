package optimizer

import "errors"

// Error taxonomy of the optimizer. Input and configuration errors are
// caller mistakes detected before any decision variable exists. A missing
// solution is an expected business outcome and stays distinguishable from
// an adapter failure; match with errors.Is.
var (
	// ErrInvalidInput marks a malformed spend vector.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration marks a malformed instrument definition.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoSolution means the solver returned a non-optimal status or an
	// undefined objective.
	ErrNoSolution = errors.New("no solution")

	// ErrSolverUnavailable means the solver adapter itself failed.
	ErrSolverUnavailable = errors.New("solver unavailable")
)
