package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"tickstats/internal/storage"
)

// Show prints recent persisted results.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show results")
	}
	defer closeStore()

	switch opts.Kind {
	case storage.RunKindStdev:
		return a.showStdev(ctx, store, opts.Limit)
	case storage.RunKindConversion:
		return a.showConversions(ctx, store, opts.Limit)
	default:
		return fmt.Errorf("unknown kind %q (want %s or %s)", opts.Kind, storage.RunKindStdev, storage.RunKindConversion)
	}
}

func (a *App) showStdev(ctx context.Context, store storage.StdevResultStore, limit int) error {
	rows, err := store.ListRecentStdev(ctx, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no stdev results found")
		return nil
	}

	places := a.Config.Export.FloatPlaces
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Security\tSnap (UTC)\tStdevBid\tStdevMid\tStdevAsk")

	for _, row := range rows {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			row.SecurityID,
			row.SnapTime.UTC().Format(time.RFC3339),
			formatCell(row.StdevBid, places),
			formatCell(row.StdevMid, places),
			formatCell(row.StdevAsk, places),
		)
	}

	return writer.Flush()
}

func (a *App) showConversions(ctx context.Context, store storage.ConversionResultStore, limit int) error {
	rows, err := store.ListRecentConversions(ctx, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no conversion results found")
		return nil
	}

	places := a.Config.Export.FloatPlaces
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Pair\tTime (UTC)\tPrice\tNewPrice\tReason")

	for _, row := range rows {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			row.CcyPair,
			row.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(row.Price, places),
			formatCell(row.NewPrice, places),
			row.Reason,
		)
	}

	return writer.Flush()
}

// formatCell renders missing values as "-" for the terminal table.
func formatCell(v *float64, places int32) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v, places)
}
