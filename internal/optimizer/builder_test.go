package optimizer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"cardmax/internal/card"
	"cardmax/internal/category"
	"cardmax/internal/milp"
	"cardmax/internal/solver"
)

// stubSolver returns a canned solution and records whether it was invoked.
type stubSolver struct {
	solution solver.Solution
	err      error
	calls    int
}

func (s *stubSolver) Solve(*milp.Model) (solver.Solution, error) {
	s.calls++
	return s.solution, s.err
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		cards    []card.Card
		spending map[string]float64
		wantErr  error
	}{
		{
			name:     "negative spending",
			cards:    []card.Card{{Name: "FlatSaver", BaseRate: 0.02}},
			spending: map[string]float64{"dining": -10},
			wantErr:  ErrInvalidInput,
		},
		{
			name:     "empty card name",
			cards:    []card.Card{{BaseRate: 0.02}},
			spending: map[string]float64{"dining": 10},
			wantErr:  ErrInvalidConfiguration,
		},
		{
			name: "duplicate card names",
			cards: []card.Card{
				{Name: "FlatSaver", BaseRate: 0.02},
				{Name: "FlatSaver", BaseRate: 0.01},
			},
			spending: map[string]float64{"dining": 10},
			wantErr:  ErrInvalidConfiguration,
		},
		{
			name: "unknown category reference",
			cards: []card.Card{{Name: "FlatSaver", Categories: map[string]card.RateCap{
				"yachts": {Rate: 0.05},
			}}},
			spending: map[string]float64{"dining": 10},
			wantErr:  ErrInvalidConfiguration,
		},
		{
			name: "min-spend card with override below base rate",
			cards: []card.Card{{
				Name:                "Gated",
				BaseRate:            0.02,
				MinSpendForCashback: 500,
				Categories: map[string]card.RateCap{
					"dining": {Rate: 0.01},
				},
			}},
			spending: map[string]float64{"dining": 10},
			wantErr:  ErrInvalidConfiguration,
		},
		{
			name: "two plan-selectable cards",
			cards: []card.Card{
				{Name: "PlanOne", Plans: []card.Plan{{Name: "A", Groups: []card.PlanGroup{
					{Rate: 0.04, Categories: []string{"dining"}},
				}}}},
				{Name: "PlanTwo", Plans: []card.Plan{{Name: "B", Groups: []card.PlanGroup{
					{Rate: 0.04, Categories: []string{"grocery"}},
				}}}},
			},
			spending: map[string]float64{"dining": 10},
			wantErr:  ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSolver{}
			opt, err := New(nil, category.Default(), stub, Options{})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			_, err = opt.Optimize(tt.cards, tt.spending)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Optimize() error = %v, expected %v", err, tt.wantErr)
			}
			if stub.calls != 0 {
				t.Errorf("solver invoked %d times before validation failure", stub.calls)
			}
		})
	}
}

func TestNilSolverRejected(t *testing.T) {
	if _, err := New(nil, category.Default(), nil, Options{}); err == nil {
		t.Error("New() with nil solver did not error")
	}
}

func TestSolverFailureWrapping(t *testing.T) {
	tests := []struct {
		name    string
		stub    *stubSolver
		wantErr error
	}{
		{
			name:    "adapter error",
			stub:    &stubSolver{err: fmt.Errorf("engine exploded")},
			wantErr: ErrSolverUnavailable,
		},
		{
			name:    "infeasible model",
			stub:    &stubSolver{solution: solver.Solution{Status: solver.StatusInfeasible}},
			wantErr: ErrNoSolution,
		},
		{
			name:    "unbounded model",
			stub:    &stubSolver{solution: solver.Solution{Status: solver.StatusUnbounded}},
			wantErr: ErrNoSolution,
		},
		{
			name: "optimal without objective",
			stub: &stubSolver{solution: solver.Solution{
				Status:    solver.StatusOptimal,
				Objective: math.NaN(),
				Values:    map[string]float64{},
			}},
			wantErr: ErrNoSolution,
		},
	}

	cards := []card.Card{{Name: "FlatSaver", BaseRate: 0.02}}
	spending := map[string]float64{"dining": 100}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := New(nil, category.Default(), tt.stub, Options{})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			_, err = opt.Optimize(cards, spending)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Optimize() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuilderModelShape(t *testing.T) {
	registry := category.Default()
	cards := []card.Card{{Name: "FlatSaver", BaseRate: 0.02}}
	b := newBuilder(registry, cards, map[string]float64{"dining": 100}, DefaultOptions())
	model := b.build()

	// One spend variable per category plus the active flag.
	if got, want := model.NumVars(), registry.Len()+1; got != want {
		t.Errorf("NumVars() = %d, expected %d", got, want)
	}

	// One conservation constraint per category plus the participation bound.
	if got, want := len(model.Constraints()), registry.Len()+1; got != want {
		t.Errorf("constraints = %d, expected %d", got, want)
	}

	names := make(map[string]bool)
	for _, c := range model.Constraints() {
		names[c.Name] = true
	}
	for _, want := range []string{"TotalSpendLimit_FlatSaver", "SpendTotal_dining"} {
		if !names[want] {
			t.Errorf("constraint %s missing from model", want)
		}
	}

	if !model.Maximize() {
		t.Error("objective sense is not maximize")
	}
}

func TestTieredModelClampsCashback(t *testing.T) {
	registry := category.Default()
	cards := []card.Card{{
		Name: "CappedTiers",
		Tiers: []card.Tier{
			{Name: "Upper", MinSpend: 500, Categories: map[string]card.RateCap{
				"dining": {Rate: 0.2, Cap: 100},
			}},
		},
	}}
	b := newBuilder(registry, cards, map[string]float64{"dining": 600}, DefaultOptions())
	model := b.build()

	byName := make(map[string]*milp.Constraint)
	for _, c := range model.Constraints() {
		byName[c.Name] = c
	}

	// The cap applies to the clamped cashback variable, not to spend.
	tierCap := byName["TierCatCap_CappedTiers_Upper_dining"]
	if tierCap == nil {
		t.Fatal("tier category cap constraint missing")
	}
	if tierCap.Sense != milp.LessOrEqual || tierCap.RHS != 100 {
		t.Errorf("cap constraint = sense %v rhs %v, expected <= 100", tierCap.Sense, tierCap.RHS)
	}
	terms := tierCap.Expr.Terms()
	if len(terms) != 1 || terms[0].Var.Name() != "Cashback_CappedTiers_Upper_dining" {
		t.Errorf("cap constrains %v, expected only the cashback variable", terms)
	}

	// Cashback may fall below spend x rate, so the cap clamps earnings
	// instead of making the model infeasible.
	if byName["Cashback_CappedTiers_Upper_dining_lb"] != nil {
		t.Error("tier cashback carries a lower-bound coupling")
	}
	if byName["Cashback_CappedTiers_Upper_dining_ub"] == nil {
		t.Error("tier cashback upper bound missing")
	}
}

func TestBuilderIgnoresUnknownSpendingKeys(t *testing.T) {
	b := newBuilder(category.Default(), nil, map[string]float64{"yachts": 500, "dining": 100}, DefaultOptions())
	if b.totalMonthlySpend != 100 {
		t.Errorf("totalMonthlySpend = %v, expected 100 (unknown keys dropped)", b.totalMonthlySpend)
	}
}

func TestExtractFiltersSolverNoise(t *testing.T) {
	registry := category.Default()
	cards := []card.Card{{Name: "FlatSaver", BaseRate: 0.02}}
	b := newBuilder(registry, cards, map[string]float64{"dining": 100}, DefaultOptions())
	b.build()

	values := map[string]float64{
		"Spend_FlatSaver_dining":  99.999999999997,
		"Spend_FlatSaver_grocery": 0.004, // below tolerance
		"CardActive_FlatSaver":    1,
	}
	result := b.extract(solver.Solution{Status: solver.StatusOptimal, Objective: 23.999999999998, Values: values})
	if result == nil {
		t.Fatal("extract() returned nil for a finite objective")
	}

	if len(result.Allocations) != 1 {
		t.Fatalf("allocations = %v, expected exactly the dining row", result.Allocations)
	}
	a := result.Allocations[0]
	if a.Card != "FlatSaver" || a.Category != "dining" || a.Amount != 100 {
		t.Errorf("allocation %+v, expected dining rounded to 100", a)
	}
	if result.TotalSavings != 24 {
		t.Errorf("TotalSavings = %v, expected the objective rounded to 24", result.TotalSavings)
	}
}

func TestExtractPlanThreshold(t *testing.T) {
	registry := category.Default()
	cards := []card.Card{{
		Name:     "LifeMax",
		BaseRate: 0.01,
		Plans: []card.Plan{
			{Name: "DiningPlan", Groups: []card.PlanGroup{{Rate: 0.04, Categories: []string{"dining"}}}},
			{Name: "GroceryPlan", Groups: []card.PlanGroup{{Rate: 0.07, Categories: []string{"grocery"}}}},
		},
	}}

	tests := []struct {
		name     string
		flags    map[string]float64
		expected string
	}{
		{"clear winner", map[string]float64{"PlanChoice_GroceryPlan": 0.97}, "GroceryPlan"},
		{"below threshold means none", map[string]float64{"PlanChoice_GroceryPlan": 0.5}, ""},
		{"catalog order breaks ties", map[string]float64{
			"PlanChoice_DiningPlan":  0.95,
			"PlanChoice_GroceryPlan": 0.95,
		}, "DiningPlan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(registry, cards, map[string]float64{}, DefaultOptions())
			b.build()

			values := make(map[string]float64)
			for name, v := range tt.flags {
				values[name] = v
			}
			result := b.extract(solver.Solution{Status: solver.StatusOptimal, Objective: 0, Values: values})
			if result == nil {
				t.Fatal("extract() returned nil")
			}
			if result.ChosenPlan != tt.expected {
				t.Errorf("ChosenPlan = %q, expected %q", result.ChosenPlan, tt.expected)
			}
		})
	}
}

func TestVariableNamespacing(t *testing.T) {
	registry := category.Default()
	cards := []card.Card{
		{Name: "One", BaseRate: 0.01},
		{Name: "Two", BaseRate: 0.02},
	}
	b := newBuilder(registry, cards, map[string]float64{"dining": 100}, DefaultOptions())
	model := b.build()

	seen := make(map[string]bool, model.NumVars())
	for _, v := range model.Vars() {
		if seen[v.Name()] {
			t.Errorf("duplicate variable name %s", v.Name())
		}
		seen[v.Name()] = true
		if !strings.HasPrefix(v.Name(), "Spend_") && !strings.HasPrefix(v.Name(), "CardActive_") {
			t.Errorf("unexpected variable name %s for flat cards", v.Name())
		}
	}
}
