// Package timeseries partitions record sets into per-key, time-ordered
// sequences shared by both pipelines.
package timeseries

import (
	"fmt"
	"sort"
	"time"
)

// Group partitions records by key and sorts each partition by timestamp
// ascending. The sort is stable: duplicate (key, timestamp) pairs keep their
// input order and are never deduplicated. A record with a zero timestamp is
// an input-shape error and aborts the whole call.
func Group[R any](records []R, key func(R) string, ts func(R) time.Time) (map[string][]R, error) {
	groups := make(map[string][]R)
	for i, rec := range records {
		t := ts(rec)
		if t.IsZero() {
			return nil, fmt.Errorf("record %d (key %q): missing or unsortable timestamp", i, key(rec))
		}
		k := key(rec)
		groups[k] = append(groups[k], rec)
	}

	for _, seq := range groups {
		sort.SliceStable(seq, func(i, j int) bool {
			return ts(seq[i]).Before(ts(seq[j]))
		})
	}
	return groups, nil
}

// Keys returns the group keys in lexical order, for deterministic iteration.
func Keys[R any](groups map[string][]R) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Contiguous reports whether next follows prev by exactly one interval.
func Contiguous(prev, next time.Time, interval time.Duration) bool {
	return next.Sub(prev) == interval
}
