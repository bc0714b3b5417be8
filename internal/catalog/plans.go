package catalog

import (
	"fmt"

	"cardmax/internal/card"
	"cardmax/internal/category"
	"cardmax/pkg/constants"
)

// PlanRates carries the rate and shared monthly cap for each role in a
// generated lifestyle plan.
type PlanRates struct {
	Main  card.RateCap
	Major card.RateCap
	Minor card.RateCap
}

// GenerateLifestylePlans expands a category pool into every plan of one
// main, two major, and two minor categories. Each group of five pool
// categories yields 5 choices of main x 6 splits of the rest, so a
// five-category pool produces 30 mutually exclusive plans.
func GenerateLifestylePlans(registry category.Registry, pool []string, rates PlanRates) ([]card.Plan, error) {
	if len(pool) < 5 {
		return nil, fmt.Errorf("lifestyle plans need at least 5 pool categories, got %d", len(pool))
	}
	for _, key := range pool {
		if !registry.Contains(key) {
			return nil, fmt.Errorf("lifestyle pool references unknown category %q", key)
		}
	}

	var plans []card.Plan
	for _, five := range combinations(pool, 5) {
		for mainIdx, main := range five {
			rest := make([]string, 0, 4)
			rest = append(rest, five[:mainIdx]...)
			rest = append(rest, five[mainIdx+1:]...)

			for _, major := range combinations(rest, 2) {
				minor := difference(rest, major)
				plans = append(plans, card.Plan{
					Name: planName(registry, main, major, minor, rates),
					Groups: []card.PlanGroup{
						{Rate: rates.Main.Rate, Cap: rates.Main.Cap, Categories: []string{main}},
						{Rate: rates.Major.Rate, Cap: rates.Major.Cap, Categories: major},
						{Rate: rates.Minor.Rate, Cap: rates.Minor.Cap, Categories: minor},
					},
				})
			}
		}
	}
	return plans, nil
}

func planName(registry category.Registry, main string, major, minor []string, rates PlanRates) string {
	return fmt.Sprintf("%g%% on %s; %g%% on %s, %s; %g%% on %s, %s",
		rates.Main.Rate*constants.PercentageMultiplier, registry.DisplayName(main),
		rates.Major.Rate*constants.PercentageMultiplier, registry.DisplayName(major[0]), registry.DisplayName(major[1]),
		rates.Minor.Rate*constants.PercentageMultiplier, registry.DisplayName(minor[0]), registry.DisplayName(minor[1]),
	)
}

// combinations returns all k-element subsets of items, in order.
func combinations(items []string, k int) [][]string {
	if k > len(items) || k <= 0 {
		return nil
	}
	var out [][]string
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	for {
		subset := make([]string, k)
		for i, idx := range indices {
			subset[i] = items[idx]
		}
		out = append(out, subset)

		i := k - 1
		for i >= 0 && indices[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

func difference(all, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, item := range exclude {
		excluded[item] = true
	}
	var out []string
	for _, item := range all {
		if !excluded[item] {
			out = append(out, item)
		}
	}
	return out
}
