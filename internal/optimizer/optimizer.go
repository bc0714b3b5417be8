// Package optimizer turns a card list and a monthly spend vector into a
// mixed-integer linear program, submits it to a solver, and extracts the
// allocation that maximizes net annual cashback.
package optimizer

import (
	"fmt"

	"go.uber.org/zap"

	"cardmax/internal/card"
	"cardmax/internal/category"
	"cardmax/internal/solver"
	"cardmax/pkg/constants"
)

// Options tunes the model relaxations and extraction tolerances. Zero
// fields fall back to the package defaults.
type Options struct {
	// BigM relaxes conditional constraints; it must exceed the largest
	// plausible spend or cashback magnitude in the problem.
	BigM float64
	// Epsilon breaks ties just below spend thresholds (currency units).
	Epsilon float64
	// AllocationTolerance filters solver noise out of the allocation table.
	AllocationTolerance float64
	// PlanThreshold is the flag value above which a plan counts as chosen.
	PlanThreshold float64
}

// DefaultOptions returns the standard tuning values.
func DefaultOptions() Options {
	return Options{
		BigM:                constants.DefaultBigM,
		Epsilon:             constants.DefaultThresholdEpsilon,
		AllocationTolerance: constants.DefaultAllocationTolerance,
		PlanThreshold:       constants.DefaultPlanThreshold,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.BigM <= 0 {
		o.BigM = defaults.BigM
	}
	if o.Epsilon <= 0 {
		o.Epsilon = defaults.Epsilon
	}
	if o.AllocationTolerance <= 0 {
		o.AllocationTolerance = defaults.AllocationTolerance
	}
	if o.PlanThreshold <= 0 {
		o.PlanThreshold = defaults.PlanThreshold
	}
	return o
}

// Allocation routes part of one category's monthly spend to one card.
type Allocation struct {
	Card     string
	Category string
	Amount   float64
}

// Result is the outcome of one optimization call.
type Result struct {
	Allocations  []Allocation
	TotalSavings float64
	ChosenPlan   string
}

// Empty indicates whether any spend was allocated.
func (r Result) Empty() bool {
	return len(r.Allocations) == 0
}

// CardTotals sums allocated spend per card.
func (r Result) CardTotals() map[string]float64 {
	totals := make(map[string]float64)
	for _, a := range r.Allocations {
		totals[a.Card] += a.Amount
	}
	return totals
}

// Optimizer builds and solves allocation models. It holds no per-call
// state; concurrent Optimize calls are safe when the solver is.
type Optimizer struct {
	logger   *zap.Logger
	registry category.Registry
	solver   solver.Solver
	opts     Options
}

// New constructs an Optimizer over the given registry and solver.
func New(logger *zap.Logger, registry category.Registry, s solver.Solver, opts Options) (*Optimizer, error) {
	if s == nil {
		return nil, fmt.Errorf("solver cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{logger: logger, registry: registry, solver: s, opts: opts.withDefaults()}, nil
}

// Optimize allocates the monthly spend vector across the candidate cards
// to maximize 12 x monthly cashback minus annual fees. Unknown spending
// keys are treated as zero demand. An empty card list or an all-zero spend
// vector yields an empty result, not an error.
func (o *Optimizer) Optimize(cards []card.Card, spending map[string]float64) (*Result, error) {
	if err := o.validateSpending(spending); err != nil {
		return nil, err
	}
	if err := o.validateCards(cards); err != nil {
		return nil, err
	}

	if len(cards) == 0 {
		o.logger.Info("no candidate cards; returning empty allocation")
		return &Result{}, nil
	}

	b := newBuilder(o.registry, cards, spending, o.opts)
	model := b.build()
	o.logger.Debug("allocation model built",
		zap.Int("cards", len(cards)),
		zap.Int("variables", model.NumVars()),
		zap.Int("constraints", len(model.Constraints())),
	)

	sol, err := o.solver.Solve(model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverUnavailable, err)
	}
	if sol.Status != solver.StatusOptimal {
		o.logger.Info("solve ended without an optimal solution",
			zap.String("status", sol.Status.String()),
		)
		return nil, fmt.Errorf("%w: solver status %s", ErrNoSolution, sol.Status)
	}

	result := b.extract(sol)
	if result == nil {
		return nil, fmt.Errorf("%w: solver reported optimal without an objective value", ErrNoSolution)
	}

	o.logger.Info("optimization complete",
		zap.Float64("totalSavings", result.TotalSavings),
		zap.String("chosenPlan", result.ChosenPlan),
		zap.Int("allocations", len(result.Allocations)),
	)
	return result, nil
}

func (o *Optimizer) validateSpending(spending map[string]float64) error {
	for key, amount := range spending {
		if amount < 0 {
			return fmt.Errorf("%w: spending for %s is negative", ErrInvalidInput, key)
		}
	}
	return nil
}

func (o *Optimizer) validateCards(cards []card.Card) error {
	seen := make(map[string]bool, len(cards))
	planCards := 0
	for _, c := range cards {
		if err := c.Validate(o.registry); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate card name %q", ErrInvalidConfiguration, c.Name)
		}
		seen[c.Name] = true
		if c.Kind() == card.KindPlanSelectable {
			planCards++
			if planCards > 1 {
				return fmt.Errorf("%w: at most one plan-selectable card is supported", ErrInvalidConfiguration)
			}
		}
	}
	return nil
}
