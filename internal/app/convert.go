package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"tickstats/internal/loader"
	"tickstats/internal/model"
	"tickstats/internal/rates"
	"tickstats/internal/storage"
)

// Convert runs the currency-price conversion pipeline: load reference data,
// observations, and spot rates, resolve an as-of rate per observation, and
// write results in input order.
func (a *App) Convert(ctx context.Context, opts ConvertOptions) error {
	if opts.OutPath == "" && !opts.Persist {
		return errors.New("at least one of --out or --store must be provided")
	}

	lookback := a.Config.Rates.Lookback
	if opts.Lookback > 0 {
		lookback = opts.Lookback
	}

	started := time.Now()
	refs, err := loader.CurrencyPairRefs(opts.PairsPath)
	if err != nil {
		return err
	}
	observations, err := loader.PriceObservations(opts.PricesPath)
	if err != nil {
		return err
	}
	spots, err := loader.SpotRates(opts.SpotsPath)
	if err != nil {
		return err
	}

	idx, err := rates.NewSpotRateIndex(spots, lookback)
	if err != nil {
		return err
	}

	converter := rates.NewPriceConverter(refs, idx, rates.ConverterOptions{
		CopyUnconvertedPrice: a.Config.Rates.CopyUnconvertedPrice,
	})

	results := converter.ConvertAll(observations)

	byReason := make(map[string]int, 4)
	for _, res := range results {
		byReason[res.Reason]++
	}
	a.Logger.Info().
		Int("observations", len(observations)).
		Int("spot_rates", len(spots)).
		Int("converted", byReason[model.ReasonConverted]).
		Int("no_spot_rate", byReason[model.ReasonNoSpotRate]).
		Int("pair_not_found", byReason[model.ReasonPairNotFound]).
		Int("not_required", byReason[model.ReasonNoConversion]).
		Dur("elapsed", time.Since(started)).
		Msg("conversion complete")

	if opts.OutPath != "" {
		if err := writeConversionsCSV(opts.OutPath, results, a.Config.Export.FloatPlaces); err != nil {
			return err
		}
	}

	if opts.Persist {
		if err := a.persistConversions(ctx, results, len(observations), lookback); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) persistConversions(ctx context.Context, results []model.ConversionResult, inputRows int, lookback time.Duration) error {
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
		Kind:       storage.RunKindConversion,
		Lookback:   lookback,
		InputRows:  inputRows,
		OutputRows: len(results),
	}
	if err := store.InsertRun(ctx, run); err != nil {
		return err
	}

	rows := make([]storage.ConversionRow, len(results))
	for i, res := range results {
		rows[i] = storage.ConversionRow{
			RunID:     run.ID,
			Ordinal:   i,
			CcyPair:   res.CcyPair,
			Timestamp: res.Timestamp,
			Price:     res.Price,
			NewPrice:  res.NewPrice,
			Reason:    res.Reason,
		}
	}
	if err := store.InsertConversionResults(ctx, rows); err != nil {
		return err
	}

	a.Logger.Info().Str("run_id", run.ID.String()).Int("rows", len(rows)).Msg("conversion results stored")
	return nil
}
