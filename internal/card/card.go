// Package card defines the reward schedule model: how one payment
// instrument earns cashback. All types are immutable value types
// constructed once per optimization request.
package card

// RateCap pairs a cashback rate with a monthly ceiling on the cashback
// earned at that rate. A Cap of zero means uncapped.
type RateCap struct {
	Rate float64
	Cap  float64
}

// Capped reports whether the ceiling is finite.
func (rc RateCap) Capped() bool {
	return rc.Cap > 0
}

// GroupedCap is one cashback ceiling shared across several categories.
type GroupedCap struct {
	Cap        float64
	Categories []string
}

// Tier is a spend-range-conditioned rate schedule. Exactly one tier of a
// tiered card is active per solve, chosen by total monthly spend on the
// card. MaxSpend of zero means no upper bound. Tiers are intended to
// partition spend ranges; non-overlap is the catalog author's
// responsibility.
type Tier struct {
	Name       string
	MinSpend   float64
	MaxSpend   float64
	BaseRate   float64
	Categories map[string]RateCap
}

// RateCapFor returns the tier's rate and cap for a category, falling back
// to the tier base rate (uncapped) when the category has no override.
func (t Tier) RateCapFor(key string) RateCap {
	if rc, ok := t.Categories[key]; ok {
		return rc
	}
	return RateCap{Rate: t.BaseRate}
}

// PlanGroup is a set of categories earning one rate under one shared
// monthly ceiling within a plan. A Cap of zero means uncapped.
type PlanGroup struct {
	Rate       float64
	Cap        float64
	Categories []string
}

// Plan is one of several mutually exclusive alternate rate schedules for a
// plan-selectable card. Exactly one plan is active per solve.
type Plan struct {
	Name   string
	Groups []PlanGroup
}

// Kind is the closed set of reward schedule variants.
type Kind int

const (
	// KindFlat earns the base rate plus flat per-category overrides.
	KindFlat Kind = iota
	// KindTiered earns according to the tier chosen by total monthly spend.
	KindTiered
	// KindPlanSelectable earns the base rate plus the chosen plan's bonuses.
	KindPlanSelectable
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindTiered:
		return "tiered"
	case KindPlanSelectable:
		return "plan-selectable"
	default:
		return "unknown"
	}
}

// Card describes one reward-earning payment instrument. Caps of zero mean
// uncapped. At most one of Tiers and Plans may be populated; when either
// is, it owns the cashback computation and the flat Categories map is used
// only for cap constraints.
type Card struct {
	Name                    string
	AnnualFee               float64
	AnnualFeeIfUnwaived     float64
	MinAnnualSpendForWaiver float64
	MonthlyCap              float64
	AnnualCap               float64
	MinSpendForCashback     float64
	BaseRate                float64
	Categories              map[string]RateCap
	GroupedCaps             []GroupedCap
	Tiers                   []Tier
	Plans                   []Plan
}

// Kind returns the card's reward schedule variant.
func (c Card) Kind() Kind {
	switch {
	case len(c.Tiers) > 0:
		return KindTiered
	case len(c.Plans) > 0:
		return KindPlanSelectable
	default:
		return KindFlat
	}
}

// HasFeeWaiver reports whether the annual fee is conditional on reaching an
// annual spend threshold.
func (c Card) HasFeeWaiver() bool {
	return c.MinAnnualSpendForWaiver > 0
}

// RateFor returns the flat cashback rate for a category: the per-category
// override when present, otherwise the base rate.
func (c Card) RateFor(key string) float64 {
	if rc, ok := c.Categories[key]; ok {
		return rc.Rate
	}
	return c.BaseRate
}
