package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"tickstats/internal/loader"
	"tickstats/internal/model"
	"tickstats/internal/rolling"
	"tickstats/internal/storage"
	"tickstats/internal/timeseries"
)

// Stdev runs the rolling standard deviation pipeline: load snapshots, group
// per security, drive one accumulator per security, filter the output rows to
// the requested date range, and write CSV/PNG/database as requested.
//
// The date filter is applied after computation so rows at the range start keep
// their warm-up history.
func (a *App) Stdev(ctx context.Context, opts StdevOptions) error {
	if opts.OutPath == "" && opts.PNGPath == "" && !opts.Persist {
		return errors.New("at least one of --out, --png, or --store must be provided")
	}

	windowSize := a.Config.Window.Size
	if opts.WindowSize > 0 {
		windowSize = opts.WindowSize
	}
	workers := a.Config.Window.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	interval := a.Config.Window.SnapshotInterval

	started := time.Now()
	snaps, err := loader.PriceSnapshots(opts.PricesPath)
	if err != nil {
		return err
	}

	groups, err := timeseries.Group(snaps,
		func(s model.PriceSnapshot) string { return s.SecurityID },
		func(s model.PriceSnapshot) time.Time { return s.SnapTime },
	)
	if err != nil {
		return err
	}

	results, err := a.buildAllSeries(ctx, groups, windowSize, interval, workers)
	if err != nil {
		return err
	}

	filtered := filterStdevResults(results, opts.From, opts.To)

	a.Logger.Info().
		Int("securities", len(groups)).
		Int("snapshots", len(snaps)).
		Int("rows", len(filtered)).
		Int("window_size", windowSize).
		Int("workers", workers).
		Dur("elapsed", time.Since(started)).
		Msg("stdev series computed")

	if opts.OutPath != "" {
		if err := writeStdevCSV(opts.OutPath, filtered, a.Config.Export.FloatPlaces); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		maxPoints := a.Config.ResolveMaxPoints(0)
		if err := writeStdevPNG(opts.PNGPath, filtered, a.Config.Export.ChartField, maxPoints); err != nil {
			return err
		}
	}

	if opts.Persist {
		if err := a.persistStdev(ctx, filtered, len(snaps), windowSize, interval); err != nil {
			return err
		}
	}

	return nil
}

// buildAllSeries fans securities out across workers. Each worker owns whole
// securities, so within-key processing stays strictly sequential; the merged
// output is ordered by (security_id, snap_time).
func (a *App) buildAllSeries(ctx context.Context, groups map[string][]model.PriceSnapshot, windowSize int, interval time.Duration, workers int) ([]model.StdevResult, error) {
	keys := timeseries.Keys(groups)
	if workers > len(keys) {
		workers = len(keys)
	}
	if workers < 1 {
		workers = 1
	}

	series := make(map[string][]model.StdevResult, len(keys))
	var mu sync.Mutex
	var wg sync.WaitGroup

	keyCh := make(chan string)
	go func() {
		defer close(keyCh)
		for _, k := range keys {
			select {
			case <-ctx.Done():
				return
			case keyCh <- k:
			}
		}
	}()

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for key := range keyCh {
				out := rolling.BuildSeries(groups[key], windowSize, interval)
				mu.Lock()
				series[key] = out
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make([]model.StdevResult, 0, totalLen(series, keys))
	for _, k := range keys {
		merged = append(merged, series[k]...)
	}
	return merged, nil
}

func totalLen(series map[string][]model.StdevResult, keys []string) int {
	n := 0
	for _, k := range keys {
		n += len(series[k])
	}
	return n
}

// filterStdevResults keeps rows with from <= snap_time < to. Nil bounds are open.
func filterStdevResults(results []model.StdevResult, from, to *time.Time) []model.StdevResult {
	if from == nil && to == nil {
		return results
	}
	kept := make([]model.StdevResult, 0, len(results))
	for _, res := range results {
		if from != nil && res.SnapTime.Before(*from) {
			continue
		}
		if to != nil && !res.SnapTime.Before(*to) {
			continue
		}
		kept = append(kept, res)
	}
	return kept
}

func (a *App) persistStdev(ctx context.Context, results []model.StdevResult, inputRows, windowSize int, interval time.Duration) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot store results")
	}
	defer closeStore()

	run := storage.RunRecord{
		ID:         uuid.New(),
		Kind:       storage.RunKindStdev,
		WindowSize: windowSize,
		Interval:   interval,
		InputRows:  inputRows,
		OutputRows: len(results),
	}
	if err := store.InsertRun(ctx, run); err != nil {
		return err
	}

	rows := make([]storage.StdevRow, len(results))
	for i, res := range results {
		rows[i] = storage.StdevRow{
			RunID:      run.ID,
			SecurityID: res.SecurityID,
			SnapTime:   res.SnapTime,
			StdevBid:   res.StdevBid,
			StdevMid:   res.StdevMid,
			StdevAsk:   res.StdevAsk,
		}
	}
	if err := store.InsertStdevResults(ctx, rows); err != nil {
		return err
	}

	a.Logger.Info().Str("run_id", run.ID.String()).Int("rows", len(rows)).Msg("stdev results stored")
	return nil
}
