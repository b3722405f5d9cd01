package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/api"
	"github.com/pable/go-tennis-metrics/internal/charting"
	"github.com/pable/go-tennis-metrics/internal/export"
	"github.com/pable/go-tennis-metrics/internal/pipeline"
	"github.com/pable/go-tennis-metrics/internal/scheduler"
	"github.com/pable/go-tennis-metrics/internal/service"
	"github.com/pable/go-tennis-metrics/internal/storage"
	"github.com/pable/go-tennis-metrics/pkg/logger"
	"github.com/pable/go-tennis-metrics/pkg/metrics"
)

var (
	serveAddr        string
	serveSchedule    bool
	scheduleNow      bool
	scheduleNoEnrich bool
)

var serveAPICmd = &cobra.Command{
	Use:   "serve-api",
	Short: "Serve player metrics over HTTP",
	Long: `Start the REST API. Every endpoint lives under /api/player/{name}/ and
accepts the surface, dateFrom, dateTo and side query filters. /metrics serves
Prometheus metrics and /health a liveness check.

With --schedule the nightly rebuild also runs in-process. The server keeps
ranking against the snapshot it loaded at startup and picks up the rebuilt
one on restart, unless distributions.reload is set, in which case the fresh
snapshot is swapped in when the rebuild finishes.`,
	Args: cobra.NoArgs,
	RunE: runServeAPI,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the nightly rebuild on the configured cron schedule",
	Long: `Run enrichment, winner derivation, the static export and the
distribution rebuild on schedule.cron (default "0 4 * * *") until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	serveAPICmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveAPICmd.Flags().BoolVar(&serveSchedule, "schedule", false, "also run the nightly rebuild")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "run the rebuild once immediately, then exit")
	scheduleCmd.Flags().BoolVar(&scheduleNoEnrich, "no-enrich", false, "skip downloading charting metadata")
	serveAPICmd.Flags().BoolVar(&scheduleNoEnrich, "no-enrich", false, "with --schedule, skip downloading charting metadata")
}

// newScheduler registers the rebuild job on the configured schedule. The
// analyzer's radar model is only replaced when distributions.reload is on.
func newScheduler(ctx context.Context, db *storage.DB, a *service.Analyzer, m *metrics.Manager) (*scheduler.Scheduler, error) {
	ex, err := newExporter(db, a, export.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	rb := &pipeline.Rebuild{
		Store:             db,
		Exporter:          ex,
		DistributionsPath: cfg.Distributions.Path,
		Reload:            cfg.Distributions.Reload,
		NewModel:          cfg.RadarModel,
		OnModel:           a.SetRadarModel,
		Log:               logger.Get(),
		Metrics:           m,
	}
	if !scheduleNoEnrich {
		rb.Fetcher = charting.NewClient(cfg.Charting.MatchesURL, charting.WithRateLimit(cfg.Charting.RateLimit, 1))
	}
	s := scheduler.New(ctx, logger.Get())
	if err := s.Register("rebuild", cfg.Schedule.Cron, rb.Run); err != nil {
		return nil, err
	}
	return s, nil
}

func runServeAPI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	a, err := newAnalyzer(db)
	if err != nil {
		return err
	}
	m := metrics.NewManager()

	if serveSchedule {
		s, err := newScheduler(ctx, db, a, m)
		if err != nil {
			return err
		}
		s.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			s.Stop(stopCtx)
		}()
	}

	c := api.Config{
		Addr:           cfg.API.Addr,
		RateLimit:      cfg.API.RateLimit,
		Burst:          cfg.API.Burst,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}
	if serveAddr != "" {
		c.Addr = serveAddr
	}
	srv := api.NewServer(c, a, m, logger.Get())
	return srv.ListenAndServe(ctx)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	a, err := newAnalyzer(db)
	if err != nil {
		return err
	}
	s, err := newScheduler(ctx, db, a, metrics.NewManager(metrics.WithMetricsEnabled(false)))
	if err != nil {
		return err
	}
	if scheduleNow {
		return s.RunNow("rebuild")
	}

	s.Start()
	fmt.Printf("rebuild scheduled on %q; press Ctrl-C to stop\n", cfg.Schedule.Cron)
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Stop(stopCtx)
	return nil
}
