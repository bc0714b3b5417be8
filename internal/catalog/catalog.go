// Package catalog loads concrete card definitions from a YAML file and
// converts them into the reward schedule model. The optimizer core never
// depends on this package; it is the collaborator that feeds it.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cardmax/internal/card"
	"cardmax/internal/category"
)

type catalogFile struct {
	Cards []cardSpec `yaml:"cards"`
}

type cardSpec struct {
	Name                    string                 `yaml:"name"`
	AnnualFee               float64                `yaml:"annualFee"`
	AnnualFeeIfUnwaived     float64                `yaml:"annualFeeIfUnwaived"`
	MinAnnualSpendForWaiver float64                `yaml:"minAnnualSpendForWaiver"`
	MonthlyCap              float64                `yaml:"monthlyCap"`
	AnnualCap               float64                `yaml:"annualCap"`
	MinSpendForCashback     float64                `yaml:"minSpendForCashback"`
	BaseRate                float64                `yaml:"baseRate"`
	Categories              map[string]rateCapSpec `yaml:"categories"`
	GroupedCaps             []groupedCapSpec       `yaml:"groupedCaps"`
	Tiers                   []tierSpec             `yaml:"tiers"`
	Plans                   []planSpec             `yaml:"plans"`
	LifestylePlans          *lifestyleSpec         `yaml:"lifestylePlans"`
}

type rateCapSpec struct {
	Rate float64 `yaml:"rate"`
	Cap  float64 `yaml:"cap"`
}

type groupedCapSpec struct {
	Cap        float64  `yaml:"cap"`
	Categories []string `yaml:"categories"`
}

type tierSpec struct {
	Name       string                 `yaml:"name"`
	MinSpend   float64                `yaml:"minSpend"`
	MaxSpend   float64                `yaml:"maxSpend"`
	BaseRate   float64                `yaml:"baseRate"`
	Categories map[string]rateCapSpec `yaml:"categories"`
}

type planSpec struct {
	Name   string          `yaml:"name"`
	Groups []planGroupSpec `yaml:"groups"`
}

type planGroupSpec struct {
	Rate       float64  `yaml:"rate"`
	Cap        float64  `yaml:"cap"`
	Categories []string `yaml:"categories"`
}

type lifestyleSpec struct {
	Pool  []string    `yaml:"pool"`
	Main  rateCapSpec `yaml:"main"`
	Major rateCapSpec `yaml:"major"`
	Minor rateCapSpec `yaml:"minor"`
}

// Load reads the catalog at path and validates every card against the
// registry.
func Load(path string, registry category.Registry) ([]card.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, registry)
}

// Parse decodes catalog YAML and validates every card against the
// registry.
func Parse(data []byte, registry category.Registry) ([]card.Card, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("catalog defines no cards")
	}

	cards := make([]card.Card, 0, len(file.Cards))
	for _, spec := range file.Cards {
		c, err := spec.toCard(registry)
		if err != nil {
			return nil, err
		}
		if err := c.Validate(registry); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Select filters cards by name, preserving catalog order. An empty name
// list selects everything.
func Select(cards []card.Card, names []string) ([]card.Card, error) {
	if len(names) == 0 {
		return cards, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	var selected []card.Card
	for _, c := range cards {
		if wanted[c.Name] {
			selected = append(selected, c)
			delete(wanted, c.Name)
		}
	}
	for name := range wanted {
		return nil, fmt.Errorf("selected card %q is not in the catalog", name)
	}
	return selected, nil
}

func (s cardSpec) toCard(registry category.Registry) (card.Card, error) {
	c := card.Card{
		Name:                    s.Name,
		AnnualFee:               s.AnnualFee,
		AnnualFeeIfUnwaived:     s.AnnualFeeIfUnwaived,
		MinAnnualSpendForWaiver: s.MinAnnualSpendForWaiver,
		MonthlyCap:              s.MonthlyCap,
		AnnualCap:               s.AnnualCap,
		MinSpendForCashback:     s.MinSpendForCashback,
		BaseRate:                s.BaseRate,
	}

	if len(s.Categories) > 0 {
		c.Categories = make(map[string]card.RateCap, len(s.Categories))
		for key, rc := range s.Categories {
			c.Categories[key] = card.RateCap{Rate: rc.Rate, Cap: rc.Cap}
		}
	}

	for _, group := range s.GroupedCaps {
		c.GroupedCaps = append(c.GroupedCaps, card.GroupedCap{
			Cap:        group.Cap,
			Categories: group.Categories,
		})
	}

	for _, t := range s.Tiers {
		tier := card.Tier{
			Name:     t.Name,
			MinSpend: t.MinSpend,
			MaxSpend: t.MaxSpend,
			BaseRate: t.BaseRate,
		}
		if len(t.Categories) > 0 {
			tier.Categories = make(map[string]card.RateCap, len(t.Categories))
			for key, rc := range t.Categories {
				tier.Categories[key] = card.RateCap{Rate: rc.Rate, Cap: rc.Cap}
			}
		}
		c.Tiers = append(c.Tiers, tier)
	}

	for _, p := range s.Plans {
		plan := card.Plan{Name: p.Name}
		for _, g := range p.Groups {
			plan.Groups = append(plan.Groups, card.PlanGroup{
				Rate:       g.Rate,
				Cap:        g.Cap,
				Categories: g.Categories,
			})
		}
		c.Plans = append(c.Plans, plan)
	}

	if s.LifestylePlans != nil {
		if len(c.Plans) > 0 {
			return card.Card{}, fmt.Errorf("card %s: plans and lifestylePlans are mutually exclusive", s.Name)
		}
		plans, err := GenerateLifestylePlans(registry, s.LifestylePlans.Pool, PlanRates{
			Main:  card.RateCap{Rate: s.LifestylePlans.Main.Rate, Cap: s.LifestylePlans.Main.Cap},
			Major: card.RateCap{Rate: s.LifestylePlans.Major.Rate, Cap: s.LifestylePlans.Major.Cap},
			Minor: card.RateCap{Rate: s.LifestylePlans.Minor.Rate, Cap: s.LifestylePlans.Minor.Cap},
		})
		if err != nil {
			return card.Card{}, fmt.Errorf("card %s: %w", s.Name, err)
		}
		c.Plans = plans
	}

	return c, nil
}
