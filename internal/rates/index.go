// Package rates implements the as-of spot rate resolver and the
// currency-price converter built on top of it.
package rates

import (
	"sort"
	"time"

	"tickstats/internal/model"
	"tickstats/internal/timeseries"
)

// DefaultLookback is the maximum age of a usable spot rate.
const DefaultLookback = time.Hour

// SpotRateIndex answers "latest rate for a pair at or before T, no older than
// T - lookback" against per-pair sorted rate tables. The valid interval is
// half-open: (T - lookback, T], so a rate exactly lookback old is rejected.
type SpotRateIndex struct {
	byPair   map[string][]model.SpotRateRecord
	lookback time.Duration
}

// NewSpotRateIndex groups and stably sorts the records per pair. Ties at the
// same timestamp keep input order, so the last-inserted record wins an as-of
// query at that instant.
func NewSpotRateIndex(records []model.SpotRateRecord, lookback time.Duration) (*SpotRateIndex, error) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	byPair, err := timeseries.Group(records,
		func(r model.SpotRateRecord) string { return r.CcyPair },
		func(r model.SpotRateRecord) time.Time { return r.Timestamp },
	)
	if err != nil {
		return nil, err
	}

	return &SpotRateIndex{byPair: byPair, lookback: lookback}, nil
}

// Resolve finds the latest rate for pair at or before t within the lookback
// window. ok is false when the pair has no usable rate.
func (idx *SpotRateIndex) Resolve(pair string, t time.Time) (model.SpotRateRecord, bool) {
	seq := idx.byPair[pair]
	if len(seq) == 0 {
		return model.SpotRateRecord{}, false
	}

	// First index whose timestamp is strictly after t; the candidate is the
	// record just before it.
	n := sort.Search(len(seq), func(i int) bool {
		return seq[i].Timestamp.After(t)
	})
	if n == 0 {
		return model.SpotRateRecord{}, false
	}

	candidate := seq[n-1]
	if !candidate.Timestamp.After(t.Add(-idx.lookback)) {
		return model.SpotRateRecord{}, false
	}
	return candidate, true
}

// Lookback exposes the configured staleness bound.
func (idx *SpotRateIndex) Lookback() time.Duration {
	return idx.lookback
}
