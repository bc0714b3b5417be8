package solver

import (
	"fmt"

	"github.com/draffensperger/golp"
	"go.uber.org/zap"

	"cardmax/internal/milp"
)

// LPSolve solves models with the lp_solve engine through the golp binding.
// Each call builds an isolated engine instance, so concurrent calls are
// safe as long as each submits its own model.
type LPSolve struct {
	logger *zap.Logger
}

// NewLPSolve constructs an LPSolve adapter.
func NewLPSolve(logger *zap.Logger) *LPSolve {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LPSolve{logger: logger}
}

// Solve translates the model into lp_solve form, runs the engine, and maps
// the outcome back to the narrow contract.
func (s *LPSolve) Solve(model *milp.Model) (Solution, error) {
	vars := model.Vars()
	if len(vars) == 0 {
		// A variable-free model is trivially optimal at its constant objective.
		return Solution{
			Status:    StatusOptimal,
			Objective: model.Objective().Constant(),
			Values:    map[string]float64{},
		}, nil
	}

	cols := make(map[*milp.Var]int, len(vars))
	lp := golp.NewLP(0, len(vars))
	lp.SetVerboseLevel(golp.IMPORTANT)

	for i, v := range vars {
		cols[v] = i
		lp.SetColName(i, v.Name())
		if v.Kind() == milp.Binary {
			lp.SetInt(i, true)
			if err := lp.AddConstraintSparse([]golp.Entry{{Col: i, Val: 1}}, golp.LE, 1); err != nil {
				return Solution{Status: StatusError}, fmt.Errorf("bound binary %s: %w", v.Name(), err)
			}
		}
	}

	for _, c := range model.Constraints() {
		terms := c.Expr.Terms()
		entries := make([]golp.Entry, 0, len(terms))
		for _, t := range terms {
			entries = append(entries, golp.Entry{Col: cols[t.Var], Val: t.Coef})
		}
		var ct golp.ConstraintType
		switch c.Sense {
		case milp.LessOrEqual:
			ct = golp.LE
		case milp.GreaterOrEqual:
			ct = golp.GE
		default:
			ct = golp.EQ
		}
		// Constants move to the right-hand side.
		rhs := c.RHS - c.Expr.Constant()
		if err := lp.AddConstraintSparse(entries, ct, rhs); err != nil {
			return Solution{Status: StatusError}, fmt.Errorf("add constraint %s: %w", c.Name, err)
		}
	}

	objective := make([]float64, len(vars))
	for _, t := range model.Objective().Terms() {
		objective[cols[t.Var]] = t.Coef
	}
	lp.SetObjFn(objective)
	if model.Maximize() {
		lp.SetMaximize()
	}

	outcome := lp.Solve()
	s.logger.Debug("lp_solve finished",
		zap.String("model", model.Name()),
		zap.Int("variables", len(vars)),
		zap.Int("constraints", len(model.Constraints())),
		zap.Int("outcome", int(outcome)),
	)

	switch outcome {
	// golp does not export lp_solve's PRESOLVED (9); use the raw value.
	case golp.OPTIMAL, golp.SolutionType(9):
	case golp.INFEASIBLE:
		return Solution{Status: StatusInfeasible}, nil
	case golp.UNBOUNDED:
		return Solution{Status: StatusUnbounded}, nil
	default:
		return Solution{Status: StatusError}, nil
	}

	values := make(map[string]float64, len(vars))
	for i, value := range lp.Variables() {
		values[vars[i].Name()] = value
	}

	return Solution{
		Status:    StatusOptimal,
		Objective: lp.Objective() + model.Objective().Constant(),
		Values:    values,
	}, nil
}
