package optimizer

import (
	"math"

	"cardmax/internal/solver"
	"cardmax/pkg/mathutil"
)

// extract converts solved variable values into the allocation table, the
// chosen plan, and total savings. Amounts at or below the allocation
// tolerance are solver noise and dropped; what survives is rounded to
// currency, as is the objective. A nil return signals an inconsistent
// adapter: optimal status without an objective value.
func (b *builder) extract(sol solver.Solution) *Result {
	if math.IsNaN(sol.Objective) {
		return nil
	}

	var allocations []Allocation
	for _, c := range b.cards {
		for _, cat := range b.registry.Categories() {
			amount := sol.Values[b.spend[c.Name][cat.Key].Name()]
			if amount > b.opts.AllocationTolerance {
				allocations = append(allocations, Allocation{
					Card:     c.Name,
					Category: cat.Key,
					Amount:   mathutil.Round(amount),
				})
			}
		}
	}

	chosenPlan := ""
	for _, pf := range b.planFlags {
		if sol.Values[pf.flag.Name()] > b.opts.PlanThreshold {
			chosenPlan = pf.name
			break
		}
	}

	return &Result{
		Allocations:  allocations,
		TotalSavings: mathutil.Round(sol.Objective),
		ChosenPlan:   chosenPlan,
	}
}
