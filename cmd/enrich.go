package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/charting"
	"github.com/pable/go-tennis-metrics/internal/ingest"
	"github.com/pable/go-tennis-metrics/internal/storage"
)

var (
	enrichFile string
	enrichURL  string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add surface, best-of and handedness to stored matches",
	Long: `Download the charting project's match list (or read a local copy with
--file) and copy surface, best-of and player handedness onto stored matches
with the same date and players.`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringVar(&enrichFile, "file", "", "local charting matches CSV instead of downloading")
	enrichCmd.Flags().StringVar(&enrichURL, "url", "", "override the charting matches URL")
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		metas []storage.MatchMetadata
		stats ingest.Stats
	)
	if enrichFile != "" {
		f, err := os.Open(enrichFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", enrichFile, err)
		}
		defer f.Close()
		metas, stats, err = ingest.ParseChartingMatches(f)
		if err != nil {
			return err
		}
	} else {
		url := enrichURL
		if url == "" {
			url = cfg.Charting.MatchesURL
		}
		client := charting.NewClient(url, charting.WithRateLimit(cfg.Charting.RateLimit, 1))
		metas, stats, err = client.FetchMatches(ctx)
		if err != nil {
			return err
		}
	}

	n, err := db.UpdateMatchMetadata(ctx, metas)
	if err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}
	fmt.Fprintf(os.Stdout, "charting rows: %s\n", stats)
	fmt.Fprintf(os.Stdout, "matches updated: %d\n", n)

	surfaces, err := db.SurfaceCounts(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(surfaces))
	for s := range surfaces {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		fmt.Fprintf(os.Stdout, "  %-8s %d\n", s, surfaces[s])
	}
	return nil
}
