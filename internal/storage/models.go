package storage

import (
	"time"

	"github.com/google/uuid"
)

// Run kinds persisted alongside results.
const (
	RunKindStdev      = "stdev"
	RunKindConversion = "conversion"
)

// RunRecord ties a batch execution to its parameters and results.
type RunRecord struct {
	ID         uuid.UUID
	Kind       string
	WindowSize int
	Interval   time.Duration
	Lookback   time.Duration
	InputRows  int
	OutputRows int
	CreatedAt  time.Time
}

// StdevRow is a persisted rolling stdev result.
type StdevRow struct {
	RunID      uuid.UUID
	SecurityID string
	SnapTime   time.Time
	StdevBid   *float64
	StdevMid   *float64
	StdevAsk   *float64
}

// ConversionRow is a persisted conversion result. Ordinal preserves input
// order within a run, since (pair, timestamp) need not be unique.
type ConversionRow struct {
	RunID     uuid.UUID
	Ordinal   int
	CcyPair   string
	Timestamp time.Time
	Price     float64
	NewPrice  *float64
	Reason    string
}
