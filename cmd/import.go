package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/ingest"
	"github.com/pable/go-tennis-metrics/internal/pipeline"
	"github.com/pable/go-tennis-metrics/pkg/logger"
)

var (
	importMatches  string
	importPoints   string
	importShots    string
	importNoDerive bool
)

var importCmd = &cobra.Command{
	Use:   "import [<dir>]",
	Short: "Import charted matches, points and shots from CSV",
	Long: `Load matches.csv, points.csv and shots.csv into the database. With a
directory argument the three conventional file names are read from it; the
--matches, --points and --shots flags override individual files.

Rows that cannot be parsed are skipped and counted. After the import, missing
point winners are derived from the score progression unless --no-derive is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importMatches, "matches", "", "matches CSV")
	importCmd.Flags().StringVar(&importPoints, "points", "", "points CSV")
	importCmd.Flags().StringVar(&importShots, "shots", "", "shots CSV")
	importCmd.Flags().BoolVar(&importNoDerive, "no-derive", false, "skip point winner derivation")
}

func runImport(cmd *cobra.Command, args []string) error {
	var files ingest.Files
	if len(args) == 1 {
		files = ingest.DirFiles(args[0])
	}
	if importMatches != "" {
		files.Matches = importMatches
	}
	if importPoints != "" {
		files.Points = importPoints
	}
	if importShots != "" {
		files.Shots = importShots
	}
	if files == (ingest.Files{}) {
		return fmt.Errorf("nothing to import: pass a directory or --matches/--points/--shots")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sum, err := ingest.Import(files, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "matches: %s\n", sum.Matches)
	fmt.Fprintf(os.Stdout, "points : %s\n", sum.Points)
	fmt.Fprintf(os.Stdout, "shots  : %s\n", sum.Shots)
	logger.Get().Info(cmd.Context(), "import finished", logger.Int("skipped", sum.Skipped()))

	if importNoDerive {
		return nil
	}
	n, err := pipeline.DeriveWinners(cmd.Context(), db, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "winners derived: %d\n", n)
	return nil
}
