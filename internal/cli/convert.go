package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tickstats/internal/app"
)

var (
	convertPairs    string
	convertPrices   string
	convertSpots    string
	convertOut      string
	convertLookback time.Duration
	convertStore    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert price observations using as-of spot rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertPairs == "" || convertPrices == "" || convertSpots == "" {
			return fmt.Errorf("--pairs, --prices, and --spots must all be provided")
		}
		if convertLookback < 0 {
			return fmt.Errorf("--lookback cannot be negative")
		}

		opts := app.ConvertOptions{
			PairsPath:  convertPairs,
			PricesPath: convertPrices,
			SpotsPath:  convertSpots,
			OutPath:    convertOut,
			Lookback:   convertLookback,
			Persist:    convertStore,
		}

		return getApp().Convert(cmd.Context(), opts)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertPairs, "pairs", "", "Path to currency pair reference CSV")
	convertCmd.Flags().StringVar(&convertPrices, "prices", "", "Path to price observation CSV")
	convertCmd.Flags().StringVar(&convertSpots, "spots", "", "Path to spot rate CSV")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "Path to write result CSV")
	convertCmd.Flags().DurationVar(&convertLookback, "lookback", 0, "Maximum spot rate age (defaults to config)")
	convertCmd.Flags().BoolVar(&convertStore, "store", false, "Persist results to the database")
}
