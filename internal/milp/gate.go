package milp

// Gate adds a continuous variable equal to expr when flag is 1 and exactly
// 0 when flag is 0, given an upper bound that exceeds any value expr can
// take. It is the big-M relaxation behind minimum-spend qualification and
// plan-choice bonuses:
//
//	gated <= bound * flag
//	gated <= expr
//	gated >= expr - bound * (1 - flag)
//
// A bound below expr's true maximum silently prunes feasible solutions;
// callers choose it, the model cannot detect it.
func (m *Model) Gate(name string, expr *Expr, flag *Var, bound float64) *Var {
	gated := m.Continuous(name)

	m.AddConstraint(name+"_off", Term(gated, 1).AddTerm(flag, -bound), LessOrEqual, 0)
	m.AddConstraint(name+"_ub", Term(gated, 1).Sub(expr), LessOrEqual, 0)
	m.AddConstraint(name+"_lb", Term(gated, 1).Sub(expr).AddTerm(flag, -bound), GreaterOrEqual, -bound)

	return gated
}

// Clamp adds a continuous variable bounded above by expr and forced to 0
// when flag is 0, without the lower-bound coupling Gate carries:
//
//	clamped <= bound * flag
//	clamped <= expr
//
// Under a maximizing objective the variable saturates at the smallest of
// expr and whatever further ceilings the caller places on it, so a finite
// cap clamps the value instead of making the model infeasible. Tier
// cashback uses this: earnings stop at the cap, spend does not.
func (m *Model) Clamp(name string, expr *Expr, flag *Var, bound float64) *Var {
	clamped := m.Continuous(name)

	m.AddConstraint(name+"_off", Term(clamped, 1).AddTerm(flag, -bound), LessOrEqual, 0)
	m.AddConstraint(name+"_ub", Term(clamped, 1).Sub(expr), LessOrEqual, 0)

	return clamped
}
