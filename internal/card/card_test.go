package card

import (
	"strings"
	"testing"

	"cardmax/internal/category"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name     string
		card     Card
		expected Kind
	}{
		{"flat by default", Card{Name: "Plain", BaseRate: 0.01}, KindFlat},
		{"flat with overrides", Card{Name: "Override", Categories: map[string]RateCap{
			"dining": {Rate: 0.05},
		}}, KindFlat},
		{"tiered", Card{Name: "Tiered", Tiers: []Tier{{Name: "Basic"}}}, KindTiered},
		{"plan-selectable", Card{Name: "Plans", Plans: []Plan{{Name: "A"}}}, KindPlanSelectable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.Kind(); got != tt.expected {
				t.Errorf("Kind() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRateFor(t *testing.T) {
	c := Card{
		Name:     "Mixed",
		BaseRate: 0.01,
		Categories: map[string]RateCap{
			"dining": {Rate: 0.05, Cap: 40},
		},
	}
	if got := c.RateFor("dining"); got != 0.05 {
		t.Errorf("RateFor(dining) = %v, expected 0.05", got)
	}
	if got := c.RateFor("grocery"); got != 0.01 {
		t.Errorf("RateFor(grocery) = %v, expected base rate 0.01", got)
	}
}

func TestTierRateCapFor(t *testing.T) {
	tier := Tier{
		Name:     "Preferred",
		BaseRate: 0.02,
		Categories: map[string]RateCap{
			"dining": {Rate: 0.05, Cap: 100},
		},
	}
	if got := tier.RateCapFor("dining"); got.Rate != 0.05 || !got.Capped() {
		t.Errorf("RateCapFor(dining) = %+v, expected capped 0.05", got)
	}
	if got := tier.RateCapFor("grocery"); got.Rate != 0.02 || got.Capped() {
		t.Errorf("RateCapFor(grocery) = %+v, expected uncapped base rate", got)
	}
}

func TestHasFeeWaiver(t *testing.T) {
	if (Card{Name: "Plain", AnnualFee: 100}).HasFeeWaiver() {
		t.Error("unconditional fee reported as waivable")
	}
	if !(Card{Name: "Waiver", AnnualFeeIfUnwaived: 100, MinAnnualSpendForWaiver: 20000}).HasFeeWaiver() {
		t.Error("waiver threshold not detected")
	}
}

func TestValidate(t *testing.T) {
	registry := category.Default()

	tests := []struct {
		name    string
		card    Card
		wantErr string
	}{
		{
			name: "valid flat card",
			card: Card{Name: "Plain", BaseRate: 0.02, Categories: map[string]RateCap{
				"dining": {Rate: 0.05, Cap: 40},
			}},
		},
		{
			name: "valid tiered card",
			card: Card{Name: "Tiered", Tiers: []Tier{
				{Name: "Basic", MinSpend: 0, MaxSpend: 499.99, BaseRate: 0.01},
				{Name: "Preferred", MinSpend: 500},
			}},
		},
		{
			name:    "empty name",
			card:    Card{BaseRate: 0.02},
			wantErr: "empty name",
		},
		{
			name:    "negative annual fee",
			card:    Card{Name: "Bad", AnnualFee: -1},
			wantErr: "annual fee",
		},
		{
			name:    "negative base rate",
			card:    Card{Name: "Bad", BaseRate: -0.01},
			wantErr: "base rate",
		},
		{
			name: "tiers and plans together",
			card: Card{Name: "Bad",
				Tiers: []Tier{{Name: "Basic"}},
				Plans: []Plan{{Name: "A", Groups: []PlanGroup{{Rate: 0.04, Categories: []string{"dining"}}}}},
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "unknown category override",
			card: Card{Name: "Bad", Categories: map[string]RateCap{
				"yachts": {Rate: 0.05},
			}},
			wantErr: "unknown category",
		},
		{
			name: "min-spend card with override below base rate",
			card: Card{Name: "Bad", BaseRate: 0.02, MinSpendForCashback: 500,
				Categories: map[string]RateCap{
					"dining": {Rate: 0.01},
				},
			},
			wantErr: "below the base rate",
		},
		{
			name: "min-spend tiered card keeps cap-only overrides",
			card: Card{Name: "Ok", MinSpendForCashback: 1999,
				Categories: map[string]RateCap{
					"dining": {Rate: 0, Cap: 200},
				},
				Tiers: []Tier{
					{Name: "Basic", MinSpend: 0, BaseRate: 0.01},
				},
			},
		},
		{
			name: "inverted tier window",
			card: Card{Name: "Bad", Tiers: []Tier{
				{Name: "Backwards", MinSpend: 500, MaxSpend: 100},
			}},
			wantErr: "inverted",
		},
		{
			name: "tier references unknown category",
			card: Card{Name: "Bad", Tiers: []Tier{
				{Name: "Basic", Categories: map[string]RateCap{"yachts": {Rate: 0.05}}},
			}},
			wantErr: "unknown category",
		},
		{
			name:    "plan with no groups",
			card:    Card{Name: "Bad", Plans: []Plan{{Name: "Empty"}}},
			wantErr: "no category groups",
		},
		{
			name: "plan group with no categories",
			card: Card{Name: "Bad", Plans: []Plan{
				{Name: "A", Groups: []PlanGroup{{Rate: 0.04}}},
			}},
			wantErr: "names no categories",
		},
		{
			name: "grouped cap with no categories",
			card: Card{Name: "Bad", GroupedCaps: []GroupedCap{
				{Cap: 30},
			}},
			wantErr: "names no categories",
		},
		{
			name: "negative grouped cap",
			card: Card{Name: "Bad", GroupedCaps: []GroupedCap{
				{Cap: -30, Categories: []string{"dining"}},
			}},
			wantErr: "not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate(registry)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() returned nil, expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, expected it to mention %q", err, tt.wantErr)
			}
		})
	}
}
