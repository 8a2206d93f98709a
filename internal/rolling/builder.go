package rolling

import (
	"time"

	"tickstats/internal/model"
)

// BuildSeries runs a fresh accumulator over one security's time-sorted
// snapshots and emits one StdevResult per snapshot. Results are undefined
// until the window first reaches capacity after the most recent gap.
func BuildSeries(snaps []model.PriceSnapshot, windowSize int, interval time.Duration) []model.StdevResult {
	acc := NewAccumulator(windowSize, interval)
	results := make([]model.StdevResult, 0, len(snaps))

	for _, snap := range snaps {
		w := acc.Observe(snap)

		res := model.StdevResult{
			SecurityID: snap.SecurityID,
			SnapTime:   snap.SnapTime,
		}
		if w.Full {
			bid, okB := w.Stdev(FieldBid)
			mid, okM := w.Stdev(FieldMid)
			ask, okA := w.Stdev(FieldAsk)
			if okB && okM && okA {
				res.StdevBid = &bid
				res.StdevMid = &mid
				res.StdevAsk = &ask
			}
		}
		results = append(results, res)
	}
	return results
}
