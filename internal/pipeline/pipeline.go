// Package pipeline holds the maintenance steps run after an import: winner
// derivation, metadata enrichment and the nightly rebuild that chains them
// with the static export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-tennis-metrics/internal/export"
	"github.com/pable/go-tennis-metrics/internal/ingest"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/storage"
	"github.com/pable/go-tennis-metrics/pkg/logger"
	"github.com/pable/go-tennis-metrics/pkg/metrics"
)

// WinnerStore reads points and writes derived winners.
type WinnerStore interface {
	MatchPoints(ctx context.Context) ([]model.Point, error)
	SetPointWinners(ctx context.Context, points []model.Point) (int, error)
}

// DeriveWinners fills missing point winners from the score progression. With
// overwrite, stored winners are recomputed too. It returns the rows updated.
func DeriveWinners(ctx context.Context, st WinnerStore, overwrite bool) (int, error) {
	points, err := st.MatchPoints(ctx)
	if err != nil {
		return 0, fmt.Errorf("load points: %w", err)
	}
	changed := ingest.DeriveWinners(points, overwrite)
	if len(changed) == 0 {
		return 0, nil
	}
	n, err := st.SetPointWinners(ctx, changed)
	if err != nil {
		return 0, fmt.Errorf("store winners: %w", err)
	}
	return n, nil
}

// MetadataStore applies match metadata updates.
type MetadataStore interface {
	UpdateMatchMetadata(ctx context.Context, metas []storage.MatchMetadata) (int, error)
}

// MatchFetcher downloads the charting project's match list.
type MatchFetcher interface {
	FetchMatches(ctx context.Context) ([]storage.MatchMetadata, ingest.Stats, error)
}

// Enrich fetches match metadata and applies it. It returns the matches
// updated along with the parse stats of the fetched file.
func Enrich(ctx context.Context, st MetadataStore, f MatchFetcher) (int, ingest.Stats, error) {
	metas, stats, err := f.FetchMatches(ctx)
	if err != nil {
		return 0, stats, err
	}
	n, err := st.UpdateMatchMetadata(ctx, metas)
	if err != nil {
		return 0, stats, fmt.Errorf("update metadata: %w", err)
	}
	return n, stats, nil
}

// Store is everything the rebuild touches.
type Store interface {
	WinnerStore
	MetadataStore
}

// Exporter is the static export step.
type Exporter interface {
	Run(ctx context.Context) (*export.Result, error)
}

// Rebuild chains enrichment, winner derivation and the export. With Reload
// set it also hands the fresh distributions to OnModel so a long-running
// server ranks against them; otherwise the new snapshot is picked up by the
// next process.
type Rebuild struct {
	Store    Store
	Fetcher  MatchFetcher // nil skips enrichment
	Exporter Exporter

	// DistributionsPath is reloaded after the export when Reload is set.
	DistributionsPath string
	Reload            bool
	NewModel          func(tour, compare *radar.Distributions) (*radar.Model, error)
	OnModel           func(*radar.Model)

	Log     logger.Logger
	Metrics *metrics.Manager
}

// Run executes one rebuild. An enrichment failure is logged and does not stop
// the rebuild; a failed export does.
func (r *Rebuild) Run(ctx context.Context) error {
	log := r.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("rebuild")
	start := time.Now()

	if r.Fetcher != nil {
		n, stats, err := Enrich(ctx, r.Store, r.Fetcher)
		if err != nil {
			log.Warn(ctx, "enrichment failed", logger.Error(err))
		} else {
			log.Info(ctx, "matches enriched", logger.Int("updated", n), logger.String("rows", stats.String()))
			if r.Metrics != nil {
				r.Metrics.RowsSkipped("charting", stats.Skipped)
			}
		}
	}

	n, err := DeriveWinners(ctx, r.Store, false)
	if err != nil {
		return fmt.Errorf("derive winners: %w", err)
	}
	log.Info(ctx, "winners derived", logger.Int("updated", n))

	res, err := r.Exporter.Run(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if ferr := res.Err(); ferr != nil {
		log.Warn(ctx, "some players failed", logger.Int("failed", len(res.Failures)), logger.Error(ferr))
	}

	if r.Reload {
		if err := r.reload(); err != nil {
			return err
		}
	} else if r.DistributionsPath != "" {
		log.Info(ctx, "distributions rebuilt; restart to serve them", logger.String("path", r.DistributionsPath))
	}
	log.Info(ctx, "rebuild finished",
		logger.Int("exported", res.Exported),
		logger.Any("duration", time.Since(start)))
	return nil
}

func (r *Rebuild) reload() error {
	if r.DistributionsPath == "" || r.OnModel == nil {
		return nil
	}
	tour, compare, err := radar.LoadSnapshots(r.DistributionsPath)
	if err != nil {
		return fmt.Errorf("reload distributions: %w", err)
	}
	if r.NewModel == nil {
		return errors.New("reload distributions: no model constructor")
	}
	m, err := r.NewModel(tour, compare)
	if err != nil {
		return fmt.Errorf("reload distributions: %w", err)
	}
	r.OnModel(m)
	return nil
}
