// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"cardmax/pkg/constants"
)

// Configuration holds all configuration for cardmax.
type Configuration struct {
	Catalog   string             // path to the card catalog YAML
	Cards     []string           // optional subset of catalog card names
	Spending  map[string]float64 // category key -> monthly amount
	Optimizer OptimizerConfig    `yaml:"optimizer,omitempty"`
	Logging   LoggingConfig      `yaml:"logging,omitempty"`
	Output    OutputConfig       `yaml:"output,omitempty"`
	History   HistoryConfig      `yaml:"history,omitempty"`
}

// OptimizerConfig tunes the model relaxations and extraction tolerances.
// Zero values fall back to the optimizer defaults.
type OptimizerConfig struct {
	BigM                float64 `yaml:"bigM,omitempty"`
	Epsilon             float64 `yaml:"epsilon,omitempty"`
	AllocationTolerance float64 `yaml:"allocationTolerance,omitempty"`
	PlanThreshold       float64 `yaml:"planThreshold,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// HistoryConfig controls the optional sqlite run recorder.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if configuration.Catalog == "" {
		configuration.Catalog = constants.DefaultCatalogFile
	}

	return &configuration, nil
}

// ValidateConfiguration returns warnings for settings that are legal but
// probably not what the user meant.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if len(conf.Spending) == 0 {
		warnings = append(warnings, "no monthly spending configured; the optimizer will allocate nothing")
	}
	total := 0.0
	for _, amount := range conf.Spending {
		total += amount
	}
	if conf.Optimizer.BigM > 0 && total*constants.MonthsPerYear >= conf.Optimizer.BigM {
		warnings = append(warnings, "optimizer.bigM does not exceed annual spending; valid allocations may be pruned as infeasible")
	}
	if conf.History.Enabled && conf.History.Path == "" {
		warnings = append(warnings, "history.enabled is set without history.path; using cardmax.db")
	}
	return warnings
}
