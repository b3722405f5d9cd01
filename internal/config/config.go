// Package config defines the tool's configuration, its defaults and the
// conversions into engine parameters.
package config

import (
	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/charting"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/sequence"
	"github.com/pable/go-tennis-metrics/internal/stats"
)

// Config is the full configuration. Every engine threshold lives here.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// DBPath is the SQLite file. Empty means ~/.tennismetrics/tennis.db.
	DBPath string `koanf:"db_path" yaml:"db_path"`

	Thresholds    Thresholds    `koanf:"thresholds" yaml:"thresholds"`
	Shrinkage     Shrinkage     `koanf:"shrinkage" yaml:"shrinkage"`
	Radar         Radar         `koanf:"radar" yaml:"radar"`
	Sequence      Sequence      `koanf:"sequence" yaml:"sequence"`
	Sides         Sides         `koanf:"sides" yaml:"sides"`
	Export        Export        `koanf:"export" yaml:"export"`
	API           API           `koanf:"api" yaml:"api"`
	Schedule      Schedule      `koanf:"schedule" yaml:"schedule"`
	Charting      Charting      `koanf:"charting" yaml:"charting"`
	Distributions Distributions `koanf:"distributions" yaml:"distributions"`
}

// Thresholds are the sample-size floors and the interval z-score.
type Thresholds struct {
	MinN            int     `koanf:"min_n" yaml:"min_n"`
	DescriptiveMinN int     `koanf:"descriptive_min_n" yaml:"descriptive_min_n"`
	ComboMinN       int     `koanf:"combo_min_n" yaml:"combo_min_n"`
	HighConfidence  int     `koanf:"high_confidence" yaml:"high_confidence"`
	InsightMinN     int     `koanf:"insight_min_n" yaml:"insight_min_n"`
	Z               float64 `koanf:"z" yaml:"z"`
}

type Shrinkage struct {
	K float64 `koanf:"k" yaml:"k"`
}

// Radar holds the axis scorer thresholds and the configured axes.
type Radar struct {
	MinEvidence        int      `koanf:"min_evidence" yaml:"min_evidence"`
	CompareMinEvidence int      `koanf:"compare_min_evidence" yaml:"compare_min_evidence"`
	ServeMinEvidence   int      `koanf:"serve_min_evidence" yaml:"serve_min_evidence"`
	CoreMinN           int      `koanf:"core_min_n" yaml:"core_min_n"`
	CoreMinEvidence    int      `koanf:"core_min_evidence" yaml:"core_min_evidence"`
	TopPatterns        int      `koanf:"top_patterns" yaml:"top_patterns"`
	MinAxes            int      `koanf:"min_axes" yaml:"min_axes"`
	Axes               []string `koanf:"axes" yaml:"axes"`
}

type Sequence struct {
	MinLen int `koanf:"min_len" yaml:"min_len"`
	MaxLen int `koanf:"max_len" yaml:"max_len"`
	Top    int `koanf:"top" yaml:"top"`
}

// Sides lists the game scores counted as Deuce-side and Ad-side points.
type Sides struct {
	Deuce []string `koanf:"deuce" yaml:"deuce"`
	Ad    []string `koanf:"ad" yaml:"ad"`
}

type Export struct {
	Concurrency int    `koanf:"concurrency" yaml:"concurrency"`
	MinMatches  int    `koanf:"min_matches" yaml:"min_matches"`
	Out         string `koanf:"out" yaml:"out"`
	Compress    bool   `koanf:"compress" yaml:"compress"`
}

type API struct {
	Addr           string   `koanf:"addr" yaml:"addr"`
	RateLimit      float64  `koanf:"rate_limit" yaml:"rate_limit"`
	Burst          int      `koanf:"burst" yaml:"burst"`
	AllowedOrigins []string `koanf:"allowed_origins" yaml:"allowed_origins"`
}

// Schedule is a standard five-field cron expression for the nightly rebuild.
type Schedule struct {
	Cron string `koanf:"cron" yaml:"cron"`
}

type Charting struct {
	MatchesURL string  `koanf:"matches_url" yaml:"matches_url"`
	RateLimit  float64 `koanf:"rate_limit" yaml:"rate_limit"`
}

// Distributions is the tour distribution snapshot location. A .zst suffix
// selects zstd compression. The compare card population is stored next to it.
// With Reload off, a process keeps the snapshot it loaded at startup and a
// scheduled rebuild only rewrites the files.
type Distributions struct {
	Path   string `koanf:"path" yaml:"path"`
	Reload bool   `koanf:"reload" yaml:"reload"`
}

// New returns a Config populated with defaults.
func New() *Config {
	sides := model.DefaultSideSets()
	scorer := radar.DefaultScorer()
	seq := sequence.DefaultParams()
	return &Config{
		LogLevel: "info",
		Thresholds: Thresholds{
			MinN:            stats.DefaultMinN,
			DescriptiveMinN: 10,
			ComboMinN:       5,
			HighConfidence:  stats.DefaultHighN,
			InsightMinN:     30,
			Z:               stats.DefaultZ,
		},
		Shrinkage: Shrinkage{K: stats.DefaultShrinkK},
		Radar: Radar{
			MinEvidence:        scorer.MinEvidence,
			CompareMinEvidence: radar.CompareScorer().MinEvidence,
			ServeMinEvidence:   scorer.ServeMinEvidence,
			CoreMinN:           scorer.CoreMinN,
			CoreMinEvidence:    scorer.CoreMinEvidence,
			TopPatterns:        scorer.TopPatterns,
			MinAxes:            radar.DefaultMinAxes,
			Axes:               append([]string(nil), radar.DefaultAxisKeys...),
		},
		Sequence: Sequence{MinLen: seq.MinLen, MaxLen: seq.MaxLen, Top: seq.Top},
		Sides:    Sides{Deuce: sides.Deuce, Ad: sides.Ad},
		Export: Export{
			Concurrency: 25,
			MinMatches:  5,
			Out:         "public/data",
		},
		API: API{
			Addr:           ":3000",
			RateLimit:      20,
			Burst:          40,
			AllowedOrigins: []string{"*"},
		},
		Schedule:      Schedule{Cron: "0 4 * * *"},
		Charting:      Charting{MatchesURL: charting.DefaultMatchesURL, RateLimit: 1},
		Distributions: Distributions{Path: "public/data/radar_distributions.json"},
	}
}

// SideSets returns the configured score sets.
func (c *Config) SideSets() model.SideSets {
	return model.SideSets{Deuce: c.Sides.Deuce, Ad: c.Sides.Ad}
}

// AggregatorParams returns the pattern aggregation thresholds.
func (c *Config) AggregatorParams() aggregator.Params {
	return aggregator.Params{
		MinN:            c.Thresholds.MinN,
		DescriptiveMinN: c.Thresholds.DescriptiveMinN,
		ComboMinN:       c.Thresholds.ComboMinN,
		InsightMinN:     c.Thresholds.InsightMinN,
		Tiers:           stats.Tiers{High: c.Thresholds.HighConfidence},
		Z:               c.Thresholds.Z,
		Sides:           c.SideSets(),
	}
}

// SequenceParams returns the n-gram mining parameters. Sequences share the
// pattern minimum sample size.
func (c *Config) SequenceParams() sequence.Params {
	return sequence.Params{
		MinLen: c.Sequence.MinLen,
		MaxLen: c.Sequence.MaxLen,
		MinN:   c.Thresholds.MinN,
		Top:    c.Sequence.Top,
	}
}

// Scorer returns the tour radar scorer.
func (c *Config) Scorer() radar.Scorer {
	return radar.Scorer{
		K:                c.Shrinkage.K,
		MinEvidence:      c.Radar.MinEvidence,
		ServeMinEvidence: c.Radar.ServeMinEvidence,
		CoreMinN:         c.Radar.CoreMinN,
		CoreMinEvidence:  c.Radar.CoreMinEvidence,
		TopPatterns:      c.Radar.TopPatterns,
	}
}

// CompareScorer returns the scorer used by the compare card.
func (c *Config) CompareScorer() radar.Scorer {
	s := c.Scorer()
	s.MinEvidence = c.Radar.CompareMinEvidence
	return s
}

// RadarModel returns a radar model over the tour and compare populations with
// the configured axes.
func (c *Config) RadarModel(tour, compare *radar.Distributions) (*radar.Model, error) {
	axes, err := radar.AxesFor(c.Radar.Axes)
	if err != nil {
		return nil, err
	}
	return &radar.Model{
		Dist:        tour,
		CompareDist: compare,
		Axes:        axes,
		MinAxes:     c.Radar.MinAxes,
		Scorer:      c.Scorer(),
	}, nil
}
