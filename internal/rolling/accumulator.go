// Package rolling implements the gap-aware rolling statistics kernel: a
// fixed-capacity window per security with O(1) running sum and
// sum-of-squares maintenance.
package rolling

import (
	"math"
	"time"

	"tickstats/internal/model"
	"tickstats/internal/timeseries"
)

// DefaultWindowSize is the number of observations per rolling window.
const DefaultWindowSize = 20

// DefaultSnapshotInterval is the expected spacing between contiguous snapshots.
const DefaultSnapshotInterval = time.Hour

// Price fields tracked by the window.
const (
	FieldBid = iota
	FieldMid
	FieldAsk
	numFields
)

// Accumulator keeps a fixed-size window of one security's snapshots and the
// running sums needed for population variance. It owns its state exclusively;
// it must be fed a single security's sequence in time order.
type Accumulator struct {
	capacity int
	interval time.Duration

	values [][numFields]float64
	pos    int
	size   int

	sum   [numFields]float64
	sumSq [numFields]float64

	last    time.Time
	started bool
}

// NewAccumulator builds an empty accumulator for the given window capacity
// and snapshot interval.
func NewAccumulator(capacity int, interval time.Duration) *Accumulator {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}
	return &Accumulator{
		capacity: capacity,
		interval: interval,
		values:   make([][numFields]float64, capacity),
	}
}

// Window is the accumulator state after an observation. Sums are exposed so
// the caller derives whichever statistic it needs.
type Window struct {
	Size  int
	Full  bool
	Sum   [numFields]float64
	SumSq [numFields]float64
}

// Stdev returns the population standard deviation of one field over the
// current window. A variance driven slightly negative by floating-point
// cancellation is clamped to zero; an empty window or a NaN result reports
// ok=false.
func (w Window) Stdev(field int) (float64, bool) {
	if w.Size == 0 {
		return 0, false
	}
	n := float64(w.Size)
	variance := (w.SumSq[field] - w.Sum[field]*w.Sum[field]/n) / n
	if variance < 0 {
		variance = 0
	}
	sd := math.Sqrt(variance)
	if math.IsNaN(sd) {
		return 0, false
	}
	return sd, true
}

// Observe appends one snapshot. If the snapshot does not follow the previous
// one by exactly the snapshot interval the window is reset before the append,
// so the new observation starts a fresh run. When the window exceeds capacity
// the oldest observation is evicted and its contribution subtracted; no full
// rescan ever happens.
func (a *Accumulator) Observe(snap model.PriceSnapshot) Window {
	if a.started && !timeseries.Contiguous(a.last, snap.SnapTime, a.interval) {
		a.reset()
	}

	vals := [numFields]float64{snap.Bid, snap.Mid, snap.Ask}

	if a.size == a.capacity {
		old := a.values[a.pos]
		for f := 0; f < numFields; f++ {
			a.sum[f] -= old[f]
			a.sumSq[f] -= old[f] * old[f]
		}
	} else {
		a.size++
	}

	a.values[a.pos] = vals
	a.pos = (a.pos + 1) % a.capacity
	for f := 0; f < numFields; f++ {
		a.sum[f] += vals[f]
		a.sumSq[f] += vals[f] * vals[f]
	}

	a.last = snap.SnapTime
	a.started = true

	return Window{
		Size:  a.size,
		Full:  a.size == a.capacity,
		Sum:   a.sum,
		SumSq: a.sumSq,
	}
}

func (a *Accumulator) reset() {
	a.pos = 0
	a.size = 0
	a.sum = [numFields]float64{}
	a.sumSq = [numFields]float64{}
}
