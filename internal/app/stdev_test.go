package app

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tickstats/internal/config"
	"tickstats/internal/model"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	return NewApp(cfg, zerolog.Nop())
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return rows
}

func TestStdevEndToEnd(t *testing.T) {
	a := testApp(t)

	input := writeInput(t,
		"security_id,snap_time,bid,mid,ask\n"+
			"SEC1,2021-11-20 00:00:00,1,1,1\n"+
			"SEC1,2021-11-20 01:00:00,2,2,2\n"+
			"SEC1,2021-11-20 02:00:00,3,3,3\n"+
			"SEC1,2021-11-20 03:00:00,4,4,4\n"+
			"SEC2,2021-11-20 00:00:00,5,5,5\n")

	out := filepath.Join(t.TempDir(), "out.csv")
	err := a.Stdev(context.Background(), StdevOptions{
		PricesPath: input,
		OutPath:    out,
		WindowSize: 3,
		Workers:    2,
	})
	if err != nil {
		t.Fatalf("stdev pipeline: %v", err)
	}

	rows := readCSVFile(t, out)
	if len(rows) != 6 {
		t.Fatalf("got %d rows (incl header), want 6", len(rows))
	}
	if rows[0][0] != "security_id" {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	// SEC1 rows come first (lexical key order), one per snapshot.
	if rows[1][2] != "" || rows[2][2] != "" {
		t.Fatal("stdev cells should be empty before the window fills")
	}
	if rows[3][2] != "0.816497" || rows[4][2] != "0.816497" {
		t.Fatalf("stdev_bid at hours 2 and 3 should be 0.816497, got %q and %q", rows[3][2], rows[4][2])
	}
	if rows[5][0] != "SEC2" || rows[5][2] != "" {
		t.Fatalf("isolated SEC2 row should be undefined: %v", rows[5])
	}
}

func TestStdevRequiresOutput(t *testing.T) {
	a := testApp(t)
	err := a.Stdev(context.Background(), StdevOptions{PricesPath: "prices.csv"})
	if err == nil {
		t.Fatal("pipeline without any output should error")
	}
}

func TestFilterStdevResultsHalfOpen(t *testing.T) {
	base := time.Date(2021, 11, 20, 0, 0, 0, 0, time.UTC)
	results := make([]model.StdevResult, 4)
	for i := range results {
		results[i] = model.StdevResult{SecurityID: "S", SnapTime: base.Add(time.Duration(i) * time.Hour)}
	}

	from := base.Add(time.Hour)
	to := base.Add(3 * time.Hour)
	kept := filterStdevResults(results, &from, &to)

	if len(kept) != 2 {
		t.Fatalf("got %d rows, want 2 (from inclusive, to exclusive)", len(kept))
	}
	if !kept[0].SnapTime.Equal(from) {
		t.Fatalf("first kept row = %v, want %v", kept[0].SnapTime, from)
	}
	if kept[1].SnapTime.Equal(to) {
		t.Fatal("to bound must be exclusive")
	}
}

func TestDownsampleKeepsEndpoints(t *testing.T) {
	base := time.Date(2021, 11, 20, 0, 0, 0, 0, time.UTC)
	xs := make([]time.Time, 100)
	ys := make([]float64, 100)
	for i := range xs {
		xs[i] = base.Add(time.Duration(i) * time.Hour)
		ys[i] = float64(i)
	}

	outX, outY := downsample(xs, ys, 10)
	if len(outX) != 10 || len(outY) != 10 {
		t.Fatalf("got %d points, want 10", len(outX))
	}
	if !outX[0].Equal(xs[0]) || !outX[9].Equal(xs[99]) {
		t.Fatal("downsampling should keep the first and last points")
	}
}
