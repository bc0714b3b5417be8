// Package constants provides shared constants for the cardmax application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Optimizer defaults
const (
	// DefaultBigM is the relaxation constant for conditional constraints. It
	// must exceed the largest plausible spend or cashback magnitude; too small
	// a value silently prunes valid allocations as infeasible.
	DefaultBigM = 1_000_000

	// DefaultThresholdEpsilon breaks ties just below spend thresholds so a
	// qualification flag is unambiguous at the boundary.
	DefaultThresholdEpsilon = 0.01

	// DefaultAllocationTolerance filters allocation amounts that are solver
	// numerical noise rather than real spend.
	DefaultAllocationTolerance = 0.01

	// DefaultPlanThreshold is the binary flag value above which a plan counts
	// as chosen; kept below 1 to tolerate numerical slack.
	DefaultPlanThreshold = 0.9
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultCatalogFile is the default card catalog file name
	DefaultCatalogFile = "cards.yaml"
)
