package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/pipeline"
)

var deriveOverwrite bool

var deriveWinnersCmd = &cobra.Command{
	Use:   "derive-winners",
	Short: "Fill missing point winners from the score progression",
	Args:  cobra.NoArgs,
	RunE:  runDeriveWinners,
}

func init() {
	deriveWinnersCmd.Flags().BoolVar(&deriveOverwrite, "overwrite", false, "recompute winners that are already stored")
}

func runDeriveWinners(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	before, err := db.PointsMissingWinner(cmd.Context())
	if err != nil {
		return fmt.Errorf("count missing winners: %w", err)
	}
	n, err := pipeline.DeriveWinners(cmd.Context(), db, deriveOverwrite)
	if err != nil {
		return err
	}
	after, err := db.PointsMissingWinner(cmd.Context())
	if err != nil {
		return fmt.Errorf("count missing winners: %w", err)
	}
	fmt.Fprintf(os.Stdout, "updated %d points; missing winners %d → %d\n", n, before, after)
	return nil
}
