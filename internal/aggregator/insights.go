package aggregator

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// InsightType marks an insight as a strength or a weakness.
type InsightType string

const (
	InsightStrength InsightType = "strength"
	InsightWeakness InsightType = "weakness"
)

// Insight is a generated one-line scouting note.
type Insight struct {
	Type     InsightType `json:"type"`
	ShotType string      `json:"shotType"`
	Title    string      `json:"title"`
	Detail   string      `json:"detail"`
	Delta    float64     `json:"delta"`
}

// Insights groups the two kinds of scouting notes.
type Insights struct {
	Trends     []Insight `json:"trends"`
	Highlights []Insight `json:"highlights"`
}

// Insights returns win/loss trends and the strongest baseline-adjusted highlights.
func (q *Query) Insights() Insights {
	return Insights{
		Trends:     q.Trends(),
		Highlights: Highlights(q.Patterns(q.Params.MinN), 3),
	}
}

// Trends compares each shot type's descriptive effectiveness in won and lost
// matches. Shots with fewer than InsightMinN samples on both sides are skipped,
// as are deltas within ±0.05. Results are ordered by |delta|.
func (q *Query) Trends() []Insight {
	wins, losses := q.resultBuckets()
	seen := make(map[ShotTypeKey]bool)
	var keys []ShotTypeKey
	for _, k := range append(wins.Keys(), losses.Keys()...) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	var out []Insight
	for _, k := range keys {
		w, _ := wins.Get(k)
		l, _ := losses.Get(k)
		if w.Total < q.Params.InsightMinN && l.Total < q.Params.InsightMinN {
			continue
		}
		wEff := effectiveness(w)
		lEff := effectiveness(l)
		delta := wEff - lEff
		label := shotLabel(k.ShotType)
		evidence := fmt.Sprintf("(Δ %.1fpp). N=%dW/%dL.", delta*100, w.Total, l.Total)

		var in Insight
		switch {
		case delta > 0.1:
			in = Insight{Type: InsightStrength, Title: label + " is a key weapon in wins",
				Detail: fmt.Sprintf("Effectiveness jumps from %.1f%% in losses to %.1f%% in wins %s", lEff*100, wEff*100, evidence)}
		case delta > 0.05:
			in = Insight{Type: InsightStrength, Title: label + " improves in wins",
				Detail: fmt.Sprintf("Effectiveness: %.1f%% in wins vs %.1f%% in losses %s", wEff*100, lEff*100, evidence)}
		case delta < -0.1:
			in = Insight{Type: InsightWeakness, Title: label + " collapses in losses",
				Detail: fmt.Sprintf("Effectiveness drops from %.1f%% in wins to %.1f%% in losses %s", wEff*100, lEff*100, evidence)}
		case delta < -0.05:
			in = Insight{Type: InsightWeakness, Title: label + " degrades in losses",
				Detail: fmt.Sprintf("Effectiveness: %.1f%% in wins to %.1f%% in losses %s", wEff*100, lEff*100, evidence)}
		default:
			continue
		}
		in.ShotType = k.ShotType
		in.Delta = delta
		out = append(out, in)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Delta) > math.Abs(out[j].Delta)
	})
	return out
}

// Highlights turns the n adjusted rows furthest from the baseline into
// strength or weakness notes.
func Highlights(rows []AdjustedStat, n int) []Insight {
	sorted := append([]AdjustedStat(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].AdjustedEffectiveness) > math.Abs(sorted[j].AdjustedEffectiveness)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]Insight, 0, len(sorted))
	for _, r := range sorted {
		typ, prefix, sign := InsightWeakness, "Weakness", ""
		if r.AdjustedEffectiveness > 0 {
			typ, prefix, sign = InsightStrength, "Strength", "+"
		}
		out = append(out, Insight{
			Type:     typ,
			ShotType: r.ShotType,
			Title:    fmt.Sprintf("%s: %s", prefix, shotLabel(r.ShotType)),
			Detail: fmt.Sprintf("When using this shot, point win rate is %s%.1f%% vs baseline. Evidence: N=%d",
				sign, r.AdjustedEffectiveness*100, r.Total),
			Delta: r.AdjustedEffectiveness,
		})
	}
	return out
}

func effectiveness(b Bucket) float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Winners-b.Errors()) / float64(b.Total)
}

// shotLabel turns FOREHAND_VOLLEY into "Forehand Volley".
func shotLabel(s string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(s), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
