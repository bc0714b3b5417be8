// Package milp represents mixed-integer linear programs: continuous and
// binary decision variables, linear expressions, constraints, and a single
// objective. It builds and holds models; solving belongs to
// internal/solver.
package milp

// VarKind distinguishes continuous from binary decision variables.
type VarKind int

const (
	// Continuous variables are real-valued with a lower bound of zero.
	Continuous VarKind = iota
	// Binary variables take the value zero or one.
	Binary
)

// Var is one decision variable. Vars are created through a Model and are
// identified by name in solutions.
type Var struct {
	id   int
	name string
	kind VarKind
}

// Name returns the variable's unique name within its model.
func (v *Var) Name() string {
	return v.name
}

// Kind returns the variable kind.
func (v *Var) Kind() VarKind {
	return v.kind
}

// Sense is the comparison direction of a constraint.
type Sense int

const (
	// LessOrEqual constrains expr <= rhs.
	LessOrEqual Sense = iota
	// GreaterOrEqual constrains expr >= rhs.
	GreaterOrEqual
	// Equal constrains expr == rhs.
	Equal
)

// Constraint relates a linear expression to a right-hand side.
type Constraint struct {
	Name  string
	Expr  *Expr
	Sense Sense
	RHS   float64
}

// Model is a self-contained MILP: variables, constraints, and an objective.
// Models are built fresh per optimization call and never shared.
type Model struct {
	name        string
	vars        []*Var
	constraints []*Constraint
	objective   *Expr
	maximize    bool
}

// New returns an empty model.
func New(name string) *Model {
	return &Model{name: name, objective: NewExpr()}
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// Continuous adds a continuous variable with a lower bound of zero.
func (m *Model) Continuous(name string) *Var {
	return m.newVar(name, Continuous)
}

// Binary adds a binary variable.
func (m *Model) Binary(name string) *Var {
	return m.newVar(name, Binary)
}

func (m *Model) newVar(name string, kind VarKind) *Var {
	v := &Var{id: len(m.vars), name: name, kind: kind}
	m.vars = append(m.vars, v)
	return v
}

// AddConstraint records expr (sense) rhs under the given name.
func (m *Model) AddConstraint(name string, expr *Expr, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, &Constraint{Name: name, Expr: expr, Sense: sense, RHS: rhs})
}

// SetMaxObjective sets the expression to maximize.
func (m *Model) SetMaxObjective(expr *Expr) {
	m.objective = expr
	m.maximize = true
}

// Vars returns the variables in creation order.
func (m *Model) Vars() []*Var {
	return m.vars
}

// NumVars returns the number of decision variables.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// Constraints returns the constraints in insertion order.
func (m *Model) Constraints() []*Constraint {
	return m.constraints
}

// Objective returns the objective expression.
func (m *Model) Objective() *Expr {
	return m.objective
}

// Maximize reports whether the objective is maximized.
func (m *Model) Maximize() bool {
	return m.maximize
}
