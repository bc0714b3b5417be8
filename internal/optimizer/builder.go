package optimizer

import (
	"fmt"

	"cardmax/internal/card"
	"cardmax/internal/category"
	"cardmax/internal/milp"
	"cardmax/pkg/constants"
)

// planFlag pairs a plan name with its choice variable, in catalog order.
type planFlag struct {
	name string
	flag *milp.Var
}

// builder assembles one self-contained allocation model. All variables are
// namespaced by card name and category key, so nothing leaks between calls.
type builder struct {
	registry category.Registry
	cards    []card.Card
	spending map[string]float64
	opts     Options

	model     *milp.Model
	spend     map[string]map[string]*milp.Var
	active    map[string]*milp.Var
	planFlags []planFlag

	totalMonthlySpend float64
}

func newBuilder(registry category.Registry, cards []card.Card, spending map[string]float64, opts Options) *builder {
	b := &builder{
		registry: registry,
		cards:    cards,
		spending: make(map[string]float64, registry.Len()),
		opts:     opts,
	}
	// Unknown spending keys are zero demand; only registry categories count.
	for _, cat := range registry.Categories() {
		amount := spending[cat.Key]
		b.spending[cat.Key] = amount
		b.totalMonthlySpend += amount
	}
	return b
}

// build produces the full MILP. With no cards it returns a variable-free
// model, which the caller treats as a trivial zero-savings solve.
func (b *builder) build() *milp.Model {
	b.model = milp.New("cashback_allocation")
	b.createVariables()

	var cashback []*milp.Expr
	var fees []*milp.Expr

	for _, c := range b.cards {
		totalSpend := b.totalSpendExpr(c)

		var components []*milp.Expr
		switch c.Kind() {
		case card.KindTiered:
			components = b.addTieredCashback(c, totalSpend)
		case card.KindPlanSelectable:
			components = append(b.addRegularCashback(c), b.addPlanCashback(c)...)
		case card.KindFlat:
			components = b.addRegularCashback(c)
		}

		if c.MinSpendForCashback > 0 {
			components = b.gateByMinimumSpend(c, totalSpend, components)
		}

		b.addCardConstraints(c, totalSpend)

		if c.AnnualCap > 0 {
			b.model.AddConstraint("AnnualCap_"+c.Name,
				milp.Sum(components...).Scale(constants.MonthsPerYear),
				milp.LessOrEqual, c.AnnualCap)
		}

		cashback = append(cashback, components...)
		fees = append(fees, b.feeExpr(c, totalSpend))
	}

	b.addDemandConservation()

	// Net annual savings: 12 x monthly cashback minus annual fees.
	objective := milp.Sum(cashback...).Scale(constants.MonthsPerYear)
	for _, fee := range fees {
		objective.Sub(fee)
	}
	b.model.SetMaxObjective(objective)

	return b.model
}

func (b *builder) createVariables() {
	b.spend = make(map[string]map[string]*milp.Var, len(b.cards))
	b.active = make(map[string]*milp.Var, len(b.cards))
	for _, c := range b.cards {
		perCategory := make(map[string]*milp.Var, b.registry.Len())
		for _, cat := range b.registry.Categories() {
			perCategory[cat.Key] = b.model.Continuous(fmt.Sprintf("Spend_%s_%s", c.Name, cat.Key))
		}
		b.spend[c.Name] = perCategory
		b.active[c.Name] = b.model.Binary("CardActive_" + c.Name)
	}
}

func (b *builder) totalSpendExpr(c card.Card) *milp.Expr {
	expr := milp.NewExpr()
	for _, cat := range b.registry.Categories() {
		expr.AddTerm(b.spend[c.Name][cat.Key], 1)
	}
	return expr
}

// cardCashbackValue is total monthly cashback at the card's flat
// category-specific rates.
func (b *builder) cardCashbackValue(c card.Card) *milp.Expr {
	expr := milp.NewExpr()
	for _, cat := range b.registry.Categories() {
		expr.AddTerm(b.spend[c.Name][cat.Key], c.RateFor(cat.Key))
	}
	return expr
}

// addRegularCashback contributes the flat variant's objective terms: one
// base-rate component over every category, plus one bonus component per
// category override relative to the base rate. Plan-selectable cards earn
// only the base component here; their bonuses ride on the chosen plan.
func (b *builder) addRegularCashback(c card.Card) []*milp.Expr {
	base := milp.NewExpr()
	for _, cat := range b.registry.Categories() {
		base.AddTerm(b.spend[c.Name][cat.Key], c.BaseRate)
	}
	components := []*milp.Expr{base}

	if c.Kind() != card.KindPlanSelectable {
		for _, cat := range b.registry.Categories() {
			rc, ok := c.Categories[cat.Key]
			if !ok {
				continue
			}
			components = append(components,
				milp.Term(b.spend[c.Name][cat.Key], rc.Rate-c.BaseRate))
		}
	}
	return components
}

// addTieredCashback contributes the tiered variant: exactly one tier flag
// set when the card is active, the chosen tier's spend window bracketing
// total spend on the card, and per-category cashback saturating at
// min(spend x rate, cap) under the chosen tier. A finite cap clamps
// earnings, never the spend itself. Non-chosen tiers contribute exactly
// zero.
func (b *builder) addTieredCashback(c card.Card, totalSpend *milp.Expr) []*milp.Expr {
	bigM := b.opts.BigM
	flagSum := milp.NewExpr()
	var components []*milp.Expr

	for _, tier := range c.Tiers {
		y := b.model.Binary(fmt.Sprintf("TierChoice_%s_%s", c.Name, tier.Name))
		flagSum.AddTerm(y, 1)

		// Window bounds, relaxed unless this tier is chosen.
		b.model.AddConstraint(fmt.Sprintf("TierMin_%s_%s", c.Name, tier.Name),
			totalSpend.Clone().AddTerm(y, -bigM),
			milp.GreaterOrEqual, tier.MinSpend-bigM)
		if tier.MaxSpend > 0 {
			b.model.AddConstraint(fmt.Sprintf("TierMax_%s_%s", c.Name, tier.Name),
				totalSpend.Clone().AddTerm(y, bigM),
				milp.LessOrEqual, tier.MaxSpend+bigM)
		}

		for _, cat := range b.registry.Categories() {
			rc := tier.RateCapFor(cat.Key)
			spendVar := b.spend[c.Name][cat.Key]
			clamped := b.model.Clamp(fmt.Sprintf("Cashback_%s_%s_%s", c.Name, tier.Name, cat.Key),
				milp.Term(spendVar, rc.Rate), y, bigM)
			if rc.Capped() {
				b.model.AddConstraint(fmt.Sprintf("TierCatCap_%s_%s_%s", c.Name, tier.Name, cat.Key),
					milp.Term(clamped, 1), milp.LessOrEqual, rc.Cap)
			}
			components = append(components, milp.Term(clamped, 1))
		}
	}

	b.model.AddConstraint("ChooseTierIfActive_"+c.Name,
		flagSum.AddTerm(b.active[c.Name], -1), milp.Equal, 0)

	return components
}

// addPlanCashback contributes the plan variant: one plan chosen when the
// card is active, bonus cashback of spend x (plan rate - base rate) clamped
// into one activated-bonus variable per plan, and each plan's group caps
// relaxed unless that plan is chosen.
func (b *builder) addPlanCashback(c card.Card) []*milp.Expr {
	bigM := b.opts.BigM
	flagSum := milp.NewExpr()
	var bonuses []*milp.Expr

	for _, plan := range c.Plans {
		y := b.model.Binary("PlanChoice_" + plan.Name)
		b.planFlags = append(b.planFlags, planFlag{name: plan.Name, flag: y})
		flagSum.AddTerm(y, 1)
		b.model.AddConstraint("PlanRequiresActive_"+plan.Name,
			milp.Term(y, 1).AddTerm(b.active[c.Name], -1), milp.LessOrEqual, 0)

		bonus := milp.NewExpr()
		for i, group := range plan.Groups {
			groupCashback := milp.NewExpr()
			for _, key := range group.Categories {
				spendVar := b.spend[c.Name][key]
				bonus.AddTerm(spendVar, group.Rate-c.BaseRate)
				groupCashback.AddTerm(spendVar, group.Rate)
			}
			if group.Cap > 0 {
				b.model.AddConstraint(fmt.Sprintf("PlanCap_%s_%d", plan.Name, i),
					groupCashback.AddTerm(y, bigM),
					milp.LessOrEqual, group.Cap+bigM)
			}
		}

		gated := b.model.Gate("ActivatedBonus_"+plan.Name, bonus, y, bigM)
		bonuses = append(bonuses, milp.Term(gated, 1))
	}

	b.model.AddConstraint("SelectOnePlan_"+c.Name,
		flagSum.AddTerm(b.active[c.Name], -1), milp.Equal, 0)

	return bonuses
}

// gateByMinimumSpend wraps every cashback component so it only pays out
// once total spend on the card reaches the threshold. Each component is
// clamped individually to keep the relaxation tight.
func (b *builder) gateByMinimumSpend(c card.Card, totalSpend *milp.Expr, components []*milp.Expr) []*milp.Expr {
	bigM := b.opts.BigM
	active := b.active[c.Name]

	qualified := b.model.Binary("CashbackActive_" + c.Name)
	b.model.AddConstraint("QualifyRequiresActive_"+c.Name,
		milp.Term(qualified, 1).AddTerm(active, -1), milp.LessOrEqual, 0)

	// qualified may be 1 only when spend reaches the threshold, and must be
	// 0 below threshold - epsilon while the card is active.
	b.model.AddConstraint("MinSpendLower_"+c.Name,
		totalSpend.Clone().AddTerm(qualified, -bigM),
		milp.GreaterOrEqual, c.MinSpendForCashback-bigM)
	b.model.AddConstraint("MinSpendUpper_"+c.Name,
		totalSpend.Clone().AddTerm(qualified, -bigM).AddTerm(active, bigM),
		milp.LessOrEqual, c.MinSpendForCashback-b.opts.Epsilon+bigM)

	gated := make([]*milp.Expr, len(components))
	for i, component := range components {
		v := b.model.Gate(fmt.Sprintf("ActivatedCashback_%s_%d", c.Name, i), component, qualified, bigM)
		gated[i] = milp.Term(v, 1)
	}
	return gated
}

// addCardConstraints adds the participation bound and, for non-tiered
// cards, the flat monthly, per-category, and grouped caps. Every cap is
// gated by the active flag so an inactive card's constraints are vacuous.
func (b *builder) addCardConstraints(c card.Card, totalSpend *milp.Expr) {
	active := b.active[c.Name]

	b.model.AddConstraint("TotalSpendLimit_"+c.Name,
		totalSpend.Clone().AddTerm(active, -b.totalMonthlySpend),
		milp.LessOrEqual, 0)

	if c.Kind() == card.KindTiered {
		// Tiered cards enforce caps inside the chosen tier.
		return
	}

	if c.Kind() != card.KindPlanSelectable && c.MonthlyCap > 0 {
		b.model.AddConstraint("MonthlyCap_"+c.Name,
			b.cardCashbackValue(c).AddTerm(active, -c.MonthlyCap),
			milp.LessOrEqual, 0)
	}

	for _, cat := range b.registry.Categories() {
		rc, ok := c.Categories[cat.Key]
		if !ok || !rc.Capped() {
			continue
		}
		b.model.AddConstraint(fmt.Sprintf("CatCap_%s_%s", c.Name, cat.Key),
			milp.Term(b.spend[c.Name][cat.Key], rc.Rate).AddTerm(active, -rc.Cap),
			milp.LessOrEqual, 0)
	}

	for i, group := range c.GroupedCaps {
		if group.Cap <= 0 {
			continue
		}
		expr := milp.NewExpr()
		for _, key := range group.Categories {
			expr.AddTerm(b.spend[c.Name][key], c.RateFor(key))
		}
		b.model.AddConstraint(fmt.Sprintf("GroupCap_%s_%d", c.Name, i),
			expr.AddTerm(active, -group.Cap), milp.LessOrEqual, 0)
	}
}

// feeExpr returns the card's annual fee contribution. With a waiver
// condition, a waived flag is forced by annual spend against the threshold
// and the fee interpolates between the unwaived and waived amounts.
func (b *builder) feeExpr(c card.Card, totalSpend *milp.Expr) *milp.Expr {
	active := b.active[c.Name]
	if !c.HasFeeWaiver() {
		return milp.Term(active, c.AnnualFee)
	}

	bigM := b.opts.BigM
	waived := b.model.Binary("FeeWaived_" + c.Name)
	b.model.AddConstraint("WaiverRequiresActive_"+c.Name,
		milp.Term(waived, 1).AddTerm(active, -1), milp.LessOrEqual, 0)

	annualSpend := totalSpend.Clone().Scale(constants.MonthsPerYear)
	b.model.AddConstraint("WaiverLower_"+c.Name,
		annualSpend.Clone().AddTerm(waived, -bigM).AddTerm(active, -bigM),
		milp.GreaterOrEqual, c.MinAnnualSpendForWaiver-2*bigM)
	b.model.AddConstraint("WaiverUpper_"+c.Name,
		annualSpend.Clone().AddTerm(waived, -bigM).AddTerm(active, bigM),
		milp.LessOrEqual, c.MinAnnualSpendForWaiver-b.opts.Epsilon+bigM)

	return milp.Term(active, c.AnnualFeeIfUnwaived).
		AddTerm(waived, -(c.AnnualFeeIfUnwaived - c.AnnualFee))
}

// addDemandConservation pins every category's allocations to the supplied
// spend exactly: no under- or over-allocation, no category left unserved.
func (b *builder) addDemandConservation() {
	for _, cat := range b.registry.Categories() {
		expr := milp.NewExpr()
		for _, c := range b.cards {
			expr.AddTerm(b.spend[c.Name][cat.Key], 1)
		}
		b.model.AddConstraint("SpendTotal_"+cat.Key, expr, milp.Equal, b.spending[cat.Key])
	}
}
