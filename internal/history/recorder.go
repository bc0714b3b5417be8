// Package history persists optimization runs for later comparison. The
// sqlite recorder keeps a small local database; the noop recorder stands
// in when history is disabled.
package history

import (
	"time"

	"cardmax/internal/optimizer"
)

// Run is one recorded optimization outcome.
type Run struct {
	Timestamp    time.Time
	TotalSavings float64
	ChosenPlan   string
	Allocations  []optimizer.Allocation
}

// Recorder persists optimization runs.
type Recorder interface {
	RecordRun(run Run) error
	Close() error
}

// Noop discards everything. Used when history is disabled.
type Noop struct{}

// RecordRun does nothing.
func (Noop) RecordRun(Run) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
