package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/export"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/report"
	"github.com/pable/go-tennis-metrics/internal/service"
	"github.com/pable/go-tennis-metrics/pkg/logger"
)

var radarCmd = &cobra.Command{
	Use:   "radar <player>",
	Short: "Percentile radar profile against the tour distributions",
	Long: `Score the player on every configured radar axis and rank each raw score
against the tour distribution snapshot. Run 'tennismetrics distributions'
first to build the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runRadar,
}

var cardCmd = &cobra.Command{
	Use:   "card <player>",
	Short: "Player card with archetype and headline attributes",
	Args:  cobra.ExactArgs(1),
	RunE:  runCard,
}

var distributionsCmd = &cobra.Command{
	Use:   "distributions",
	Short: "Rebuild the tour radar and compare card distribution snapshots",
	Long: `Compute raw radar scores for every player with enough charted matches and
write the per-axis distributions to the configured snapshot path. The compare
card population, built with the compare scorer, is written next to it.`,
	Args: cobra.NoArgs,
	RunE: runDistributions,
}

func init() {
	addFilterFlags(radarCmd)
	cardCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of tables")
	distributionsCmd.Flags().IntVar(&exportMinMatches, "min-matches", 0, "players with fewer charted matches are left out (default from config)")
}

func runRadar(cmd *cobra.Command, args []string) error {
	f, err := parseFilterFlags()
	if err != nil {
		return err
	}
	return withAnalyzer(func(a *service.Analyzer) error {
		p, err := a.Radar(cmd.Context(), args[0], f)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(p)
		}
		fmt.Fprintf(os.Stdout, "\n%s\n\n", args[0])
		report.PrintRadar(os.Stdout, a.RadarModel().Axes, p)
		return nil
	})
}

func runCard(cmd *cobra.Command, args []string) error {
	return withAnalyzer(func(a *service.Analyzer) error {
		c, err := a.Card(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(c)
		}
		report.PrintCard(os.Stdout, c)
		return nil
	})
}

func runDistributions(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	a, err := newAnalyzer(db)
	if err != nil {
		return err
	}
	ex, err := newExporter(db, a)
	if err != nil {
		return err
	}
	res, err := ex.BuildDistributions(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "scored %d/%d players; %d contribute to %s (cards: %s)\n",
		res.Exported, res.Players, res.DistributionPlayers, cfg.Distributions.Path, radar.ComparePath(cfg.Distributions.Path))
	for _, f := range res.Failures {
		logger.Get().Warn(cmd.Context(), "player failed", logger.String("player", f.Player), logger.String("error", f.Error))
	}
	return nil
}

// newExporter builds an exporter from the config and the export flags.
func newExporter(db export.Source, a *service.Analyzer, opts ...export.Option) (*export.Exporter, error) {
	m, err := cfg.RadarModel(nil, nil)
	if err != nil {
		return nil, err
	}
	o := export.Options{
		Out:               cfg.Export.Out,
		Concurrency:       cfg.Export.Concurrency,
		MinMatches:        cfg.Export.MinMatches,
		Compress:          cfg.Export.Compress,
		DistributionsPath: cfg.Distributions.Path,
		Players:           exportPlayers,
	}
	if exportOut != "" {
		o.Out = exportOut
	}
	if exportConcurrency > 0 {
		o.Concurrency = exportConcurrency
	}
	if exportMinMatches > 0 {
		o.MinMatches = exportMinMatches
	}
	if exportCompress {
		o.Compress = true
	}
	opts = append([]export.Option{
		export.WithLogger(logger.Get()),
		export.WithSequenceParams(cfg.SequenceParams()),
		export.WithRadar(m, cfg.CompareScorer()),
	}, opts...)
	return export.New(db, a, o, opts...), nil
}
