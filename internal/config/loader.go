package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/pable/go-tennis-metrics/internal/radar"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: TENNIS_THRESHOLDS__MIN_N=20 sets thresholds.min_n.
const EnvPrefix = "TENNIS_"

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. the YAML file at path, or at $TENNIS_CONFIG when path is empty
//  3. environment variables with the TENNIS_ prefix
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := New()
	// Decoding onto a populated slice keeps its tail; start overridden lists empty.
	for key, dst := range map[string]*[]string{
		"radar.axes":          &cfg.Radar.Axes,
		"sides.deuce":         &cfg.Sides.Deuce,
		"sides.ad":            &cfg.Sides.Ad,
		"api.allowed_origins": &cfg.API.AllowedOrigins,
	} {
		if k.Exists(key) {
			*dst = nil
		}
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	t := c.Thresholds
	check(t.MinN >= 1, "thresholds.min_n must be at least 1")
	check(t.DescriptiveMinN >= 1, "thresholds.descriptive_min_n must be at least 1")
	check(t.ComboMinN >= 1, "thresholds.combo_min_n must be at least 1")
	check(t.InsightMinN >= 1, "thresholds.insight_min_n must be at least 1")
	check(t.HighConfidence >= t.MinN, "thresholds.high_confidence must not be below thresholds.min_n")
	check(t.Z > 0, "thresholds.z must be positive")
	check(c.Shrinkage.K > 0, "shrinkage.k must be positive")

	r := c.Radar
	check(r.MinEvidence >= 0 && r.CompareMinEvidence >= 0 && r.ServeMinEvidence >= 0, "radar evidence minima must not be negative")
	check(r.MinAxes >= 1, "radar.min_axes must be at least 1")
	check(r.MinAxes <= len(r.Axes), "radar.min_axes exceeds the number of radar.axes")
	if _, err := radar.AxesFor(r.Axes); err != nil {
		problems = append(problems, err.Error())
	}

	s := c.Sequence
	check(s.MinLen >= 1 && s.MinLen <= s.MaxLen, "sequence.min_len must be between 1 and sequence.max_len")
	check(s.MaxLen <= 4, "sequence.max_len must be at most 4")
	check(s.Top >= 1, "sequence.top must be at least 1")

	check(c.Export.Concurrency >= 1, "export.concurrency must be at least 1")
	check(c.Export.MinMatches >= 1, "export.min_matches must be at least 1")
	check(c.API.Addr != "", "api.addr must not be empty")
	check(c.API.RateLimit >= 0 && c.API.Burst >= 0, "api rate limit must not be negative")

	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			problems = append(problems, fmt.Sprintf("schedule.cron: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// WriteYAML writes the effective configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yamlv3.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
