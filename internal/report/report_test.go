package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/sequence"
)

func TestRound3(t *testing.T) {
	cases := map[float64]float64{
		0.12345: 0.123,
		0.1236:  0.124,
		-0.0004: 0,
		1:       1,
	}
	for in, want := range cases {
		if got := Round3(in); got != want {
			t.Errorf("Round3(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestPrintAdjusted(t *testing.T) {
	var buf bytes.Buffer
	PrintAdjusted(&buf, []aggregator.AdjustedStat{{
		PatternKey:            aggregator.PatternKey{ShotType: "FOREHAND"},
		Total:                 40,
		PointsWon:             24,
		WinnerRate:            0.6,
		AdjustedEffectiveness: 0.12345,
		Confidence:            "high",
	}})
	out := buf.String()
	for _, want := range []string{"FOREHAND", "60.0%", "0.123", "high"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCompareMarksMissingSide(t *testing.T) {
	var buf bytes.Buffer
	PrintCompare(&buf, aggregator.Comparison{
		Wins: []aggregator.DescriptiveStat{
			{PatternKey: aggregator.PatternKey{ShotType: "FOREHAND"}, Total: 20, Effectiveness: 0.2},
			{PatternKey: aggregator.PatternKey{ShotType: "LOB"}, Total: 5, Effectiveness: 0.4},
		},
		Losses: []aggregator.DescriptiveStat{
			{PatternKey: aggregator.PatternKey{ShotType: "FOREHAND"}, Total: 10, Effectiveness: -0.1},
		},
	})
	out := buf.String()
	if !strings.Contains(out, "0.300") {
		t.Errorf("expected forehand delta 0.300:\n%s", out)
	}
	if !strings.Contains(out, "—") {
		t.Errorf("expected a dash for the lob's missing loss side:\n%s", out)
	}
}

func TestPrintRadarNullAxis(t *testing.T) {
	raw := 0.25
	pctl := 80
	axes := []radar.Axis{{Key: "serve", Label: "Serve"}, {Key: "touch", Label: "Touch"}}
	p := radar.Profile{
		Axes: map[string]radar.AxisScore{
			"serve": {Raw: &raw, Percentile: &pctl},
			"touch": {},
		},
		Available: 1,
	}
	var buf bytes.Buffer
	PrintRadar(&buf, axes, p)
	out := buf.String()
	if !strings.Contains(out, "80") || !strings.Contains(out, "0.250") {
		t.Errorf("serve axis not rendered:\n%s", out)
	}
	if !strings.Contains(out, "1/2 axes available (incomplete)") {
		t.Errorf("summary line missing:\n%s", out)
	}
}

func TestPrintSequencesAndInsights(t *testing.T) {
	var buf bytes.Buffer
	PrintSequences(&buf, []sequence.NGram{{Sequence: []string{"SERVE_WIDE", "FOREHAND"}, Total: 12, WinnerRate: 0.75, Uplift: 0.25}})
	PrintInsights(&buf, "Trends", nil)
	out := buf.String()
	if !strings.Contains(out, "SERVE_WIDE → FOREHAND") {
		t.Errorf("sequence not joined:\n%s", out)
	}
	if !strings.Contains(out, "(none)") {
		t.Errorf("empty insights not marked:\n%s", out)
	}
}

func TestPrintCoverage(t *testing.T) {
	var buf bytes.Buffer
	PrintCoverage(&buf, model.Coverage{
		Breakdown: []model.CoverageRow{{Year: 2019, Surface: "Clay", Matches: 2, Points: 300}, {Year: 2021, Matches: 1, Points: 90}},
		Totals:    model.CoverageTotals{Matches: 3, Points: 390},
	})
	out := buf.String()
	if strings.Index(out, "2021") > strings.Index(out, "2019") {
		t.Errorf("expected newest year first:\n%s", out)
	}
	if !strings.Contains(out, "unknown") || !strings.Contains(out, "390") {
		t.Errorf("coverage not rendered:\n%s", out)
	}
}
