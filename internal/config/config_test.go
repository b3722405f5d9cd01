package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pable/go-tennis-metrics/internal/radar"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tennis.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TENNIS_CONFIG", "")

	Convey("Given no file and no overrides", t, func() {
		cfg, err := Load("")

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Thresholds.MinN, ShouldEqual, 15)
			So(cfg.Thresholds.DescriptiveMinN, ShouldEqual, 10)
			So(cfg.Thresholds.ComboMinN, ShouldEqual, 5)
			So(cfg.Thresholds.HighConfidence, ShouldEqual, 30)
			So(cfg.Thresholds.Z, ShouldAlmostEqual, 1.96)
			So(cfg.Shrinkage.K, ShouldEqual, 50)
			So(cfg.Radar.MinEvidence, ShouldEqual, 300)
			So(cfg.Radar.CompareMinEvidence, ShouldEqual, 50)
			So(cfg.Radar.ServeMinEvidence, ShouldEqual, 100)
			So(cfg.Radar.Axes, ShouldResemble, radar.DefaultAxisKeys)
			So(cfg.Export.Concurrency, ShouldEqual, 25)
			So(cfg.Sequence.Top, ShouldEqual, 15)
			So(cfg.Distributions.Reload, ShouldBeFalse)
		})
	})

	Convey("Given a YAML file", t, func() {
		path := writeFile(t, `
log_level: debug
thresholds:
  min_n: 20
  high_confidence: 40
radar:
  axes: [serve, forehand, backhand, balance]
  min_axes: 3
sides:
  ad: ["40-0"]
`)
		cfg, err := Load(path)

		Convey("Then file values override defaults and untouched keys keep theirs", func() {
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.Thresholds.MinN, ShouldEqual, 20)
			So(cfg.Thresholds.HighConfidence, ShouldEqual, 40)
			So(cfg.Thresholds.ComboMinN, ShouldEqual, 5)
			So(cfg.Radar.Axes, ShouldResemble, []string{"serve", "forehand", "backhand", "balance"})
			So(cfg.Sides.Ad, ShouldResemble, []string{"40-0"})
			So(len(cfg.Sides.Deuce), ShouldBeGreaterThan, 1)
		})

		Convey("And an environment override wins over the file", func() {
			_ = os.Setenv("TENNIS_THRESHOLDS__MIN_N", "25")
			_ = os.Setenv("TENNIS_EXPORT__COMPRESS", "true")
			defer func() {
				_ = os.Unsetenv("TENNIS_THRESHOLDS__MIN_N")
				_ = os.Unsetenv("TENNIS_EXPORT__COMPRESS")
			}()
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Thresholds.MinN, ShouldEqual, 25)
			So(cfg.Export.Compress, ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
	})

	Convey("Given invalid values", t, func() {
		path := writeFile(t, `
thresholds:
  min_n: 0
radar:
  axes: [serve, spin]
schedule:
  cron: "not a cron"
`)
		_, err := Load(path)

		Convey("Then every problem is reported as ErrInvalidConfig", func() {
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "thresholds.min_n")
			So(err.Error(), ShouldContainSubstring, "spin")
			So(err.Error(), ShouldContainSubstring, "schedule.cron")
		})
	})
}

func TestConversions(t *testing.T) {
	Convey("Given the default config", t, func() {
		cfg := New()

		Convey("Engine params mirror the thresholds", func() {
			p := cfg.AggregatorParams()
			So(p.MinN, ShouldEqual, 15)
			So(p.Tiers.High, ShouldEqual, 30)
			So(p.Sides.Deuce, ShouldResemble, cfg.Sides.Deuce)

			seq := cfg.SequenceParams()
			So(seq.MinLen, ShouldEqual, 2)
			So(seq.MaxLen, ShouldEqual, 4)
			So(seq.MinN, ShouldEqual, 15)

			So(cfg.Scorer(), ShouldResemble, radar.DefaultScorer())
			So(cfg.CompareScorer(), ShouldResemble, radar.CompareScorer())
		})

		Convey("The radar model carries the configured axes", func() {
			compare := radar.NewDistributions(nil)
			m, err := cfg.RadarModel(radar.NewDistributions(nil), compare)
			So(err, ShouldBeNil)
			So(m.CompareDist, ShouldEqual, compare)
			So(len(m.Axes), ShouldEqual, len(radar.DefaultAxisKeys))
			So(m.MinAxes, ShouldEqual, 4)
		})

		Convey("The YAML dump round-trips key names", func() {
			var buf bytes.Buffer
			So(cfg.WriteYAML(&buf), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "min_n: 15")
			So(buf.String(), ShouldContainSubstring, "compare_min_evidence: 50")
		})
	})
}
