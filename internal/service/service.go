// Package service connects the point store to the engine: it loads a player's
// rows once per request and runs the requested metric family over them.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/sequence"
	"github.com/pable/go-tennis-metrics/internal/storage"
)

var (
	// ErrPlayerNotFound is returned for a player with no charted matches.
	ErrPlayerNotFound = storage.ErrPlayerNotFound
	// ErrNoDistributions is returned for radar queries when no tour
	// distribution snapshot was loaded, and for cards when no compare
	// population was loaded.
	ErrNoDistributions = errors.New("radar distributions not loaded")
)

// PointSource is the read side of the match database.
type PointSource interface {
	PlayerExists(ctx context.Context, player string) (bool, error)
	PlayerPoints(ctx context.Context, player string, f model.Filter, sides model.SideSets) ([]model.PlayerPoint, error)
	Coverage(ctx context.Context, player string) (model.Coverage, error)
	SearchPlayers(ctx context.Context, q string, limit int) ([]string, error)
}

// SearchLimit caps player search results unless all results are requested.
const SearchLimit = 20

// Analyzer answers per-player metric queries.
type Analyzer struct {
	src           PointSource
	params        aggregator.Params
	seq           sequence.Params
	radar         atomic.Pointer[radar.Model]
	compareScorer radar.Scorer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithParams sets the aggregation thresholds.
func WithParams(p aggregator.Params) Option {
	return func(a *Analyzer) { a.params = p }
}

// WithSequenceParams sets the n-gram mining parameters.
func WithSequenceParams(p sequence.Params) Option {
	return func(a *Analyzer) { a.seq = p }
}

// WithRadar sets the radar model and the scorer used for compare cards.
func WithRadar(m *radar.Model, compare radar.Scorer) Option {
	return func(a *Analyzer) {
		a.radar.Store(m)
		a.compareScorer = compare
	}
}

// NewAnalyzer returns an analyzer over src with default thresholds and no radar.
func NewAnalyzer(src PointSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		src:           src,
		params:        aggregator.DefaultParams(),
		seq:           sequence.DefaultParams(),
		compareScorer: radar.CompareScorer(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Params returns the aggregation thresholds in use.
func (a *Analyzer) Params() aggregator.Params { return a.params }

// SequenceParams returns the n-gram mining parameters in use.
func (a *Analyzer) SequenceParams() sequence.Params { return a.seq }

// RadarModel returns the radar model, or nil when none is configured.
func (a *Analyzer) RadarModel() *radar.Model { return a.radar.Load() }

// SetRadarModel swaps the radar model. It is only called after a rebuild when
// distributions.reload is on; otherwise the model loaded at startup serves the
// whole process. Queries already running keep the old model.
func (a *Analyzer) SetRadarModel(m *radar.Model) { a.radar.Store(m) }

// Players searches player names; an empty query lists everyone.
func (a *Analyzer) Players(ctx context.Context, q string, all bool) ([]string, error) {
	limit := SearchLimit
	if all {
		limit = 0
	}
	names, err := a.src.SearchPlayers(ctx, strings.TrimSpace(q), limit)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	return names, nil
}

func (a *Analyzer) ensurePlayer(ctx context.Context, player string) error {
	ok, err := a.src.PlayerExists(ctx, player)
	if err != nil {
		return fmt.Errorf("lookup player %s: %w", player, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
	}
	return nil
}

// Coverage returns the player's data availability summary.
func (a *Analyzer) Coverage(ctx context.Context, player string) (model.Coverage, error) {
	if err := a.ensurePlayer(ctx, player); err != nil {
		return model.Coverage{}, err
	}
	cov, err := a.src.Coverage(ctx, player)
	if err != nil {
		return model.Coverage{}, fmt.Errorf("coverage %s: %w", player, err)
	}
	return cov, nil
}

// Query loads the player's filtered points and computes the baselines.
func (a *Analyzer) Query(ctx context.Context, player string, f model.Filter) (*aggregator.Query, error) {
	if err := a.ensurePlayer(ctx, player); err != nil {
		return nil, err
	}
	points, err := a.src.PlayerPoints(ctx, player, f, a.params.Sides)
	if err != nil {
		return nil, fmt.Errorf("load points %s: %w", player, err)
	}
	return aggregator.NewQuery(player, points, f, a.params), nil
}

// Report runs every pattern family for the player.
func (a *Analyzer) Report(ctx context.Context, player string, f model.Filter) (aggregator.Report, error) {
	q, err := a.Query(ctx, player, f)
	if err != nil {
		return aggregator.Report{}, err
	}
	return q.Report(), nil
}

// Sequences mines the player's winning and losing shot sequences.
func (a *Analyzer) Sequences(ctx context.Context, player string, f model.Filter) (sequence.Result, error) {
	q, err := a.Query(ctx, player, f)
	if err != nil {
		return sequence.Result{}, err
	}
	return SequencesFor(q, a.seq), nil
}

// SequencesFor mines sequences from an existing query against its baseline.
func SequencesFor(q *aggregator.Query, p sequence.Params) sequence.Result {
	return sequence.Mine(q.Points, q.Baseline, p)
}

// RawScores returns the player's raw radar axis scores under the tour scorer.
func (a *Analyzer) RawScores(ctx context.Context, player string, f model.Filter) (radar.Scores, error) {
	q, err := a.Query(ctx, player, f)
	if err != nil {
		return nil, err
	}
	scorer := radar.DefaultScorer()
	if m := a.radar.Load(); m != nil {
		scorer = m.Scorer
	}
	return scorer.Raw(radar.InputsFromQuery(q)), nil
}

// Radar returns the player's percentile profile against the tour distributions.
func (a *Analyzer) Radar(ctx context.Context, player string, f model.Filter) (radar.Profile, error) {
	m := a.radar.Load()
	if m == nil || m.Dist == nil {
		return radar.Profile{}, ErrNoDistributions
	}
	q, err := a.Query(ctx, player, f)
	if err != nil {
		return radar.Profile{}, err
	}
	return m.Profile(radar.InputsFromQuery(q)), nil
}

// Card builds the player's compare card. Raw scores use the compare scorer,
// which needs less evidence per axis than the tour radar, and are ranked
// against the population built by that same scorer.
func (a *Analyzer) Card(ctx context.Context, player string) (radar.Card, error) {
	m := a.radar.Load()
	if m == nil || m.CompareDist == nil {
		return radar.Card{}, ErrNoDistributions
	}
	q, err := a.Query(ctx, player, model.Filter{})
	if err != nil {
		return radar.Card{}, err
	}
	raw := a.compareScorer.Raw(radar.InputsFromQuery(q))
	table := m.CardPercentiles(map[string]radar.Scores{player: raw})
	return radar.BuildCard(player, table[player]), nil
}
