package card

import (
	"fmt"

	"cardmax/internal/category"
)

// Validate checks the card definition against the registry. It returns the
// first problem found; the optimizer surfaces it as a configuration error
// before any decision variable is created.
func (c Card) Validate(registry category.Registry) error {
	if c.Name == "" {
		return fmt.Errorf("card has an empty name")
	}
	if c.AnnualFee < 0 {
		return fmt.Errorf("card %s: annual fee must not be negative", c.Name)
	}
	if c.AnnualFeeIfUnwaived < 0 {
		return fmt.Errorf("card %s: unwaived annual fee must not be negative", c.Name)
	}
	if c.MinAnnualSpendForWaiver < 0 {
		return fmt.Errorf("card %s: fee waiver spend threshold must not be negative", c.Name)
	}
	if c.MonthlyCap < 0 || c.AnnualCap < 0 {
		return fmt.Errorf("card %s: caps must not be negative", c.Name)
	}
	if c.MinSpendForCashback < 0 {
		return fmt.Errorf("card %s: minimum spend for cashback must not be negative", c.Name)
	}
	if c.BaseRate < 0 {
		return fmt.Errorf("card %s: base rate must not be negative", c.Name)
	}
	if len(c.Tiers) > 0 && len(c.Plans) > 0 {
		return fmt.Errorf("card %s: tiers and plans are mutually exclusive", c.Name)
	}

	for key, rc := range c.Categories {
		if !registry.Contains(key) {
			return fmt.Errorf("card %s: unknown category %q", c.Name, key)
		}
		if rc.Rate < 0 {
			return fmt.Errorf("card %s: category %s rate must not be negative", c.Name, key)
		}
		if rc.Cap < 0 {
			return fmt.Errorf("card %s: category %s cap must not be negative", c.Name, key)
		}
		// On a flat card with a spend threshold, every cashback component is
		// forced non-negative by the qualification gate; an override below
		// the base rate would make the model unsatisfiable instead of merely
		// unattractive, so reject it up front.
		if c.MinSpendForCashback > 0 && len(c.Tiers) == 0 && len(c.Plans) == 0 && rc.Rate < c.BaseRate {
			return fmt.Errorf("card %s: category %s rate below the base rate is not supported with a minimum spend threshold", c.Name, key)
		}
	}

	for i, group := range c.GroupedCaps {
		if group.Cap < 0 {
			return fmt.Errorf("card %s: grouped cap %d must not be negative", c.Name, i)
		}
		if len(group.Categories) == 0 {
			return fmt.Errorf("card %s: grouped cap %d names no categories", c.Name, i)
		}
		for _, key := range group.Categories {
			if !registry.Contains(key) {
				return fmt.Errorf("card %s: grouped cap %d references unknown category %q", c.Name, i, key)
			}
		}
	}

	for i, tier := range c.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("card %s: tier %d has an empty name", c.Name, i)
		}
		if tier.MinSpend < 0 {
			return fmt.Errorf("card %s: tier %s minimum spend must not be negative", c.Name, tier.Name)
		}
		if tier.MaxSpend != 0 && tier.MaxSpend < tier.MinSpend {
			return fmt.Errorf("card %s: tier %s spend window is inverted", c.Name, tier.Name)
		}
		if tier.BaseRate < 0 {
			return fmt.Errorf("card %s: tier %s base rate must not be negative", c.Name, tier.Name)
		}
		for key, rc := range tier.Categories {
			if !registry.Contains(key) {
				return fmt.Errorf("card %s: tier %s references unknown category %q", c.Name, tier.Name, key)
			}
			if rc.Rate < 0 || rc.Cap < 0 {
				return fmt.Errorf("card %s: tier %s category %s has a negative rate or cap", c.Name, tier.Name, key)
			}
		}
	}

	for i, plan := range c.Plans {
		if plan.Name == "" {
			return fmt.Errorf("card %s: plan %d has an empty name", c.Name, i)
		}
		if len(plan.Groups) == 0 {
			return fmt.Errorf("card %s: plan %s has no category groups", c.Name, plan.Name)
		}
		for j, group := range plan.Groups {
			if group.Rate < 0 || group.Cap < 0 {
				return fmt.Errorf("card %s: plan %s group %d has a negative rate or cap", c.Name, plan.Name, j)
			}
			if len(group.Categories) == 0 {
				return fmt.Errorf("card %s: plan %s group %d names no categories", c.Name, plan.Name, j)
			}
			for _, key := range group.Categories {
				if !registry.Contains(key) {
					return fmt.Errorf("card %s: plan %s references unknown category %q", c.Name, plan.Name, key)
				}
			}
		}
	}

	return nil
}
