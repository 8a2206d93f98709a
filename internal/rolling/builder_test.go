package rolling

import (
	"math"
	"testing"
	"time"

	"tickstats/internal/model"
)

func TestBuildSeriesEmitsOneResultPerSnapshot(t *testing.T) {
	snaps := []model.PriceSnapshot{
		snapAt(0, 1), snapAt(1, 2), snapAt(2, 3), snapAt(3, 4),
	}

	results := BuildSeries(snaps, 3, time.Hour)
	if len(results) != len(snaps) {
		t.Fatalf("got %d results, want %d", len(results), len(snaps))
	}

	for i := 0; i < 2; i++ {
		if results[i].Defined() {
			t.Fatalf("result %d should be undefined before the window fills", i)
		}
	}
	for i := 2; i < 4; i++ {
		if !results[i].Defined() {
			t.Fatalf("result %d should be defined", i)
		}
	}

	want := math.Sqrt(2.0 / 3.0)
	if got := *results[2].StdevBid; math.Abs(got-want) > 1e-9 {
		t.Fatalf("stdev_bid at hour 2 = %v, want %v", got, want)
	}
	if got := *results[3].StdevBid; math.Abs(got-want) > 1e-9 {
		t.Fatalf("stdev_bid at hour 3 = %v, want %v", got, want)
	}
}

func TestBuildSeriesGapStaysUndefined(t *testing.T) {
	// hours 0, 1, 3: the gap at hour 2 resets the window, so hour 3 has a
	// single observation since the reset.
	snaps := []model.PriceSnapshot{
		snapAt(0, 1), snapAt(1, 2), snapAt(3, 3),
	}

	results := BuildSeries(snaps, 2, time.Hour)
	if !results[1].Defined() {
		t.Fatal("hour 1 should be defined with window size 2")
	}
	if results[2].Defined() {
		t.Fatal("hour 3 should be undefined after the gap at hour 2")
	}
}

func TestBuildSeriesShortSecurityNeverDefined(t *testing.T) {
	snaps := []model.PriceSnapshot{snapAt(0, 5)}

	results := BuildSeries(snaps, 20, time.Hour)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Defined() {
		t.Fatal("isolated observation should emit exactly one undefined result")
	}
}

func TestBuildSeriesIdempotent(t *testing.T) {
	snaps := []model.PriceSnapshot{
		snapAt(0, 1.5), snapAt(1, 2.25), snapAt(2, 1.75),
		snapAt(4, 9), snapAt(5, 8), snapAt(6, 7),
	}

	first := BuildSeries(snaps, 2, time.Hour)
	second := BuildSeries(snaps, 2, time.Hour)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Defined() != second[i].Defined() {
			t.Fatalf("result %d definedness differs", i)
		}
		if first[i].Defined() && *first[i].StdevMid != *second[i].StdevMid {
			t.Fatalf("result %d value differs: %v vs %v", i, *first[i].StdevMid, *second[i].StdevMid)
		}
	}
}
