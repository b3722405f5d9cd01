// Package export precomputes every player's metrics into static JSON files
// and rebuilds the tour distribution snapshot from the same pass.
//
// Players are processed with bounded concurrency. A failing player is
// recorded in the run result and never stops the others.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/jsonfile"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/sequence"
	"github.com/pable/go-tennis-metrics/internal/service"
	"github.com/pable/go-tennis-metrics/internal/storage"
	"github.com/pable/go-tennis-metrics/pkg/logger"
	"github.com/pable/go-tennis-metrics/pkg/metrics"
)

// Source lists the players worth exporting.
type Source interface {
	PlayersWithMinMatches(ctx context.Context, min int) ([]storage.PlayerMatchCount, error)
}

// Options control one export run.
type Options struct {
	Out               string // output root
	Concurrency       int    // players processed at once
	MinMatches        int    // players with fewer charted matches are skipped
	Compress          bool   // write .json.zst instead of .json
	DistributionsPath string // snapshot path; empty skips the snapshot
	Players           []string
}

// Exporter runs static exports.
type Exporter struct {
	src      Source
	analyzer *service.Analyzer
	seq      sequence.Params
	model    *radar.Model
	compare  radar.Scorer
	opts     Options
	log      logger.Logger
	metrics  *metrics.Manager
	progress func(done, total int)
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics records export counters on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(e *Exporter) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithProgress calls fn after each player finishes.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Exporter) { e.progress = fn }
}

// WithSequenceParams sets the n-gram mining parameters.
func WithSequenceParams(p sequence.Params) Option {
	return func(e *Exporter) { e.seq = p }
}

// WithRadar sets the axis layout and scorers. The model's distributions are
// ignored: each run ranks players against the snapshot it builds.
func WithRadar(m *radar.Model, compare radar.Scorer) Option {
	return func(e *Exporter) {
		if m != nil {
			e.model = m
			e.compare = compare
		}
	}
}

// New returns an exporter.
func New(src Source, analyzer *service.Analyzer, opts Options, options ...Option) *Exporter {
	if opts.Concurrency < 1 {
		opts.Concurrency = 25
	}
	if opts.MinMatches < 1 {
		opts.MinMatches = 5
	}
	e := &Exporter{
		src:      src,
		analyzer: analyzer,
		seq:      sequence.DefaultParams(),
		model:    radar.NewModel(nil),
		compare:  radar.CompareScorer(),
		opts:     opts,
		log:      logger.Nop(),
		metrics:  metrics.NewManager(metrics.WithMetricsEnabled(false)),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Failure is one player that could not be exported.
type Failure struct {
	Player string `json:"player"`
	Error  string `json:"error"`

	err error
}

// Result summarises a run. It is also written as manifest.json.
type Result struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Players    int       `json:"players"`
	Exported   int       `json:"exported"`
	Failures   []Failure `json:"failures"`
	Skipped    int       `json:"skipped_shots"`

	// DistributionPlayers is the number of players with at least one raw
	// axis score in the snapshot.
	DistributionPlayers int `json:"distribution_players"`
}

// Err joins the per-player errors, or returns nil when every player succeeded.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Player, f.err))
	}
	return errors.Join(errs...)
}

// playerScores are the raw radar inputs gathered for one player.
type playerScores struct {
	tour    radar.Scores
	compare radar.Scores
}

// Run exports every eligible player and, when a snapshot path is set,
// rebuilds the distributions and writes radar, card and percentile files.
// The returned error is reserved for failures that stop the whole run.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	return e.run(ctx, true)
}

// BuildDistributions recomputes raw scores and the snapshot without writing
// per-player metric files.
func (e *Exporter) BuildDistributions(ctx context.Context) (*Result, error) {
	if e.opts.DistributionsPath == "" {
		return nil, errors.New("distributions path not set")
	}
	return e.run(ctx, false)
}

func (e *Exporter) run(ctx context.Context, files bool) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := e.log.Named("export")

	players, err := e.players(ctx)
	if err != nil {
		return nil, err
	}
	res.Players = len(players)
	log.Info(ctx, "export started",
		logger.String("run_id", res.RunID),
		logger.Int("players", len(players)),
		logger.Int("concurrency", e.opts.Concurrency))

	if files {
		if err := e.write(filepath.Join(e.opts.Out, "players.json"), players); err != nil {
			return nil, err
		}
	}

	var (
		mu     sync.Mutex
		scores = make(map[string]playerScores, len(players))
		done   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for _, name := range players {
		g.Go(func() error {
			ps, skipped, err := e.player(gctx, name, files)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				res.Failures = append(res.Failures, Failure{Player: name, Error: err.Error(), err: err})
				log.Warn(gctx, "player failed", logger.String("player", name), logger.Error(err))
			} else {
				res.Exported++
				res.Skipped += skipped
				scores[name] = ps
			}
			e.metrics.ExportPlayer(err == nil)
			if e.progress != nil {
				e.progress(done, len(players))
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return res, err
	}
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Player < res.Failures[j].Player })
	e.metrics.RowsSkipped("shots", res.Skipped)

	if e.opts.DistributionsPath != "" {
		n, err := e.snapshot(scores, files)
		if err != nil {
			return res, err
		}
		res.DistributionPlayers = n
		e.metrics.DistributionRefreshed(n)
	}

	res.FinishedAt = time.Now().UTC()
	e.metrics.ObserveExport(res.FinishedAt.Sub(res.StartedAt))
	if files {
		if err := e.write(filepath.Join(e.opts.Out, "manifest.json"), res); err != nil {
			return res, err
		}
	}
	log.Info(ctx, "export finished",
		logger.String("run_id", res.RunID),
		logger.Int("exported", res.Exported),
		logger.Int("failed", len(res.Failures)))
	return res, nil
}

func (e *Exporter) players(ctx context.Context) ([]string, error) {
	if len(e.opts.Players) > 0 {
		return e.opts.Players, nil
	}
	rows, err := e.src.PlayersWithMinMatches(ctx, e.opts.MinMatches)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

// player computes one player's families, writes them when files is set and
// returns the raw radar scores.
func (e *Exporter) player(ctx context.Context, name string, files bool) (playerScores, int, error) {
	q, err := e.analyzer.Query(ctx, name, model.Filter{})
	if err != nil {
		return playerScores{}, 0, err
	}
	in := radar.InputsFromQuery(q)
	ps := playerScores{tour: e.model.Scorer.Raw(in), compare: e.compare.Raw(in)}
	if !files {
		return ps, 0, nil
	}

	cov, err := e.analyzer.Coverage(ctx, name)
	if err != nil {
		return ps, 0, err
	}
	r := q.Report()
	docs := map[string]any{
		"coverage":           cov,
		"patterns":           r.PatternsDescriptive,
		"serve":              r.Serve,
		"serve-plus-one":     r.ServePlusOneDescr,
		"compare":            r.Compare,
		"direction-patterns": r.DirectionsDescr,
		"insights":           r.Insights.Trends,
		"pattern-inference":  service.SequencesFor(q, e.seq),
		"adjusted":           adjusted(r),
	}
	for doc, v := range docs {
		if err := e.write(e.playerPath(name, doc), v); err != nil {
			return ps, 0, err
		}
	}
	return ps, r.Skipped, nil
}

// Adjusted is the baseline-adjusted view of a player.
type Adjusted struct {
	Baseline      float64                   `json:"baseline"`
	ServeBaseline float64                   `json:"serveBaseline"`
	Points        int                       `json:"points"`
	Patterns      []aggregator.AdjustedStat `json:"patterns"`
	Directions    []aggregator.AdjustedStat `json:"directions"`
	ServePlusOne  []aggregator.AdjustedStat `json:"servePlusOne"`
	Highlights    []aggregator.Insight      `json:"highlights"`
}

func adjusted(r aggregator.Report) Adjusted {
	return Adjusted{
		Baseline:      r.Baseline,
		ServeBaseline: r.ServeBaseline,
		Points:        r.Points,
		Patterns:      r.Patterns,
		Directions:    r.Directions,
		ServePlusOne:  r.ServePlusOne,
		Highlights:    r.Insights.Highlights,
	}
}

// snapshot builds and saves the tour and compare populations, then ranks every
// player. Radar files rank tour scores against the tour population; cards and
// the percentile table rank compare scores against the compare population.
func (e *Exporter) snapshot(scores map[string]playerScores, files bool) (int, error) {
	tour := make(map[string]radar.Scores, len(scores))
	compare := make(map[string]radar.Scores, len(scores))
	contributing := 0
	for name, ps := range scores {
		tour[name] = ps.tour
		compare[name] = ps.compare
		for _, a := range e.model.Axes {
			if ps.tour[a.Key] != nil {
				contributing++
				break
			}
		}
	}

	m := *e.model
	m.Dist = radar.BuildDistributions(tour, m.Axes)
	m.CompareDist = radar.BuildDistributions(compare, m.Axes)
	if err := m.Dist.Save(e.opts.DistributionsPath); err != nil {
		return 0, err
	}
	if err := m.CompareDist.Save(radar.ComparePath(e.opts.DistributionsPath)); err != nil {
		return 0, err
	}
	if !files {
		return contributing, nil
	}

	table := m.CardPercentiles(compare)
	if err := e.write(filepath.Join(e.opts.Out, "player_percentiles.json"), table); err != nil {
		return 0, err
	}
	for name, raw := range tour {
		if err := e.write(e.playerPath(name, "radar"), m.ProfileFromScores(raw)); err != nil {
			return 0, err
		}
		if err := e.write(e.playerPath(name, "card"), radar.BuildCard(name, table[name])); err != nil {
			return 0, err
		}
	}
	return contributing, nil
}

func (e *Exporter) playerPath(player, doc string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_", "..", "_").Replace(player)
	return filepath.Join(e.opts.Out, "players", safe, doc+".json")
}

func (e *Exporter) write(path string, v any) error {
	if e.opts.Compress {
		path += jsonfile.Ext
	}
	if err := jsonfile.Write(path, v); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Clean removes a previous export's player directory.
func Clean(out string) error {
	return os.RemoveAll(filepath.Join(out, "players"))
}
