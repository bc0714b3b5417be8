package milp

import "sort"

// Expr is a linear expression: a sum of coefficient*variable terms plus a
// constant. The zero value is not usable; construct with NewExpr, Term, or
// Sum.
type Expr struct {
	coeffs   map[*Var]float64
	constant float64
}

// NewExpr returns an empty expression.
func NewExpr() *Expr {
	return &Expr{coeffs: make(map[*Var]float64)}
}

// Term returns an expression holding a single coefficient*variable term.
func Term(v *Var, coef float64) *Expr {
	e := NewExpr()
	e.coeffs[v] = coef
	return e
}

// Sum returns a new expression equal to the sum of the provided expressions.
func Sum(exprs ...*Expr) *Expr {
	out := NewExpr()
	for _, e := range exprs {
		out.Add(e)
	}
	return out
}

// AddTerm adds coef*v to the expression and returns it for chaining.
func (e *Expr) AddTerm(v *Var, coef float64) *Expr {
	e.coeffs[v] += coef
	return e
}

// AddConst adds a constant to the expression and returns it for chaining.
func (e *Expr) AddConst(c float64) *Expr {
	e.constant += c
	return e
}

// Add adds another expression term-by-term and returns the receiver.
func (e *Expr) Add(other *Expr) *Expr {
	for v, coef := range other.coeffs {
		e.coeffs[v] += coef
	}
	e.constant += other.constant
	return e
}

// Sub subtracts another expression term-by-term and returns the receiver.
func (e *Expr) Sub(other *Expr) *Expr {
	for v, coef := range other.coeffs {
		e.coeffs[v] -= coef
	}
	e.constant -= other.constant
	return e
}

// Scale multiplies every term and the constant by f and returns the receiver.
func (e *Expr) Scale(f float64) *Expr {
	for v := range e.coeffs {
		e.coeffs[v] *= f
	}
	e.constant *= f
	return e
}

// Clone returns an independent copy of the expression.
func (e *Expr) Clone() *Expr {
	out := NewExpr()
	out.Add(e)
	return out
}

// Constant returns the constant component of the expression.
func (e *Expr) Constant() float64 {
	return e.constant
}

// TermEntry is one coefficient*variable pair of an expression.
type TermEntry struct {
	Var  *Var
	Coef float64
}

// Terms returns the non-zero terms ordered by variable creation, so model
// serialization is deterministic.
func (e *Expr) Terms() []TermEntry {
	out := make([]TermEntry, 0, len(e.coeffs))
	for v, coef := range e.coeffs {
		if coef == 0 {
			continue
		}
		out = append(out, TermEntry{Var: v, Coef: coef})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var.id < out[j].Var.id })
	return out
}
