package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/export"
)

var (
	exportOut         string
	exportConcurrency int
	exportMinMatches  int
	exportCompress    bool
	exportPlayers     []string
	exportClean       bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write static JSON metrics for every eligible player",
	Long: `Export per-player JSON documents (coverage, patterns, serve, serve-plus-one,
compare, direction patterns, insights, pattern inference, adjusted view, radar
and card) for every player with enough charted matches, then rebuild the tour
radar distributions and write player_percentiles.json and manifest.json.

Players are processed concurrently; a failing player is reported and skipped.

Example:
  tennismetrics export --out public/data --concurrency 10 --compress`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default from config)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "players exported at once (default from config)")
	exportCmd.Flags().IntVar(&exportMinMatches, "min-matches", 0, "minimum charted matches per player (default from config)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "write zstd-compressed .json.zst files")
	exportCmd.Flags().StringSliceVar(&exportPlayers, "player", nil, "export only these players (repeatable)")
	exportCmd.Flags().BoolVar(&exportClean, "clean", false, "remove previously exported player files first")
}

func runExport(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	a, err := newAnalyzer(db)
	if err != nil {
		return err
	}

	var lastPct int
	progress := export.WithProgress(func(done, total int) {
		if total == 0 {
			return
		}
		if pct := done * 100 / total; pct/10 > lastPct/10 || done == total {
			lastPct = pct
			fmt.Fprintf(os.Stderr, "\r  %d/%d players (%d%%)", done, total, pct)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	})
	ex, err := newExporter(db, a, progress)
	if err != nil {
		return err
	}
	if exportClean {
		out := cfg.Export.Out
		if exportOut != "" {
			out = exportOut
		}
		if err := export.Clean(out); err != nil {
			return err
		}
	}

	res, err := ex.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "run %s: exported %d/%d players in %s\n",
		res.RunID, res.Exported, res.Players, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stdout, "  failed: %s: %s\n", f.Player, f.Error)
	}
	return nil
}
