package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tickstats/internal/app"
	"tickstats/internal/storage"
)

var (
	showKind  string
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent persisted results",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Kind:  showKind,
			Limit: showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showKind, "kind", storage.RunKindStdev, "Result kind: stdev or conversion")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of rows to display")
}
