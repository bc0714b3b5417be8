// Package output provides utilities for formatting and displaying
// optimization results.
package output

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cardmax/internal/category"
	"cardmax/internal/optimizer"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result *optimizer.Result, registry category.Registry) {
	p := message.NewPrinter(language.English)

	if result.Empty() {
		fmt.Printf("No spend allocated.\n")
	} else {
		fmt.Printf("Card                           | Category                  | Amount\n")
		fmt.Printf("____                           | ________                  | ______\n")
		for _, a := range result.Allocations {
			_, _ = p.Printf("%-30s | %-25s | $%.2f\n", a.Card, registry.DisplayName(a.Category), a.Amount)
		}

		fmt.Printf("\nTotals per card:\n")
		totals := result.CardTotals()
		names := make([]string, 0, len(totals))
		for name := range totals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, _ = p.Printf("  %-30s $%.2f\n", name, totals[name])
		}
	}

	if result.ChosenPlan != "" {
		fmt.Printf("\nChosen plan: %s\n", result.ChosenPlan)
	}
	_, _ = p.Printf("\nTotal net annual savings: $%.2f\n", result.TotalSavings)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *optimizer.Result) {
	fmt.Printf("\"card\",\"category\",\"amount\"\n")
	for _, a := range result.Allocations {
		fmt.Printf("\"%s\",\"%s\",\"%.2f\"\n", escapeCsv(a.Card), escapeCsv(a.Category), a.Amount)
	}
	fmt.Printf("\"total_savings\",\"%s\",\"%.2f\"\n", escapeCsv(result.ChosenPlan), result.TotalSavings)
}

func escapeCsv(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}
