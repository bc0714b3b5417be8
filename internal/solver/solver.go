// Package solver defines the narrow contract between the optimizer core
// and an external MILP engine, and provides an lp_solve-backed
// implementation. The core submits a model and receives a status, the
// variable values, and the objective value; nothing else crosses the
// boundary.
package solver

import "cardmax/internal/milp"

// Status is the outcome class of a solve attempt.
type Status int

const (
	// StatusOptimal means the engine proved an optimal solution.
	StatusOptimal Status = iota
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusUnbounded means the objective can grow without limit.
	StatusUnbounded
	// StatusError covers every other engine outcome.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "error"
	}
}

// Solution carries everything the result extractor needs: the status, the
// objective value, and every variable value keyed by variable name.
type Solution struct {
	Status    Status
	Objective float64
	Values    map[string]float64
}

// Solver solves one self-contained model per call. Implementations must be
// safe for concurrent calls with independently constructed models. A
// returned error means the engine itself failed; a non-optimal Status is a
// normal outcome, not an error.
type Solver interface {
	Solve(model *milp.Model) (Solution, error)
}
