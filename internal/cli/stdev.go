package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tickstats/internal/app"
)

var (
	stdevPrices  string
	stdevOut     string
	stdevPNG     string
	stdevFrom    string
	stdevTo      string
	stdevWindow  int
	stdevWorkers int
	stdevStore   bool
)

var stdevCmd = &cobra.Command{
	Use:   "stdev",
	Short: "Compute rolling standard deviations over hourly price snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		if stdevPrices == "" {
			return fmt.Errorf("--prices must be provided")
		}
		if stdevWindow < 0 {
			return fmt.Errorf("--window cannot be negative")
		}

		opts := app.StdevOptions{
			PricesPath: stdevPrices,
			OutPath:    stdevOut,
			PNGPath:    stdevPNG,
			WindowSize: stdevWindow,
			Workers:    stdevWorkers,
			Persist:    stdevStore,
		}

		if stdevFrom != "" {
			from, err := time.Parse(time.RFC3339, stdevFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if stdevTo != "" {
			to, err := time.Parse(time.RFC3339, stdevTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Stdev(cmd.Context(), opts)
	},
}

func init() {
	stdevCmd.Flags().StringVar(&stdevPrices, "prices", "", "Path to price snapshot CSV")
	stdevCmd.Flags().StringVar(&stdevOut, "out", "", "Path to write result CSV")
	stdevCmd.Flags().StringVar(&stdevPNG, "png", "", "Path to write PNG chart")
	stdevCmd.Flags().StringVar(&stdevFrom, "from", "", "Start timestamp (RFC3339, inclusive)")
	stdevCmd.Flags().StringVar(&stdevTo, "to", "", "End timestamp (RFC3339, exclusive)")
	stdevCmd.Flags().IntVar(&stdevWindow, "window", 0, "Window size in observations (defaults to config)")
	stdevCmd.Flags().IntVar(&stdevWorkers, "workers", 0, "Number of concurrent workers (defaults to config)")
	stdevCmd.Flags().BoolVar(&stdevStore, "store", false, "Persist results to the database")
}
