package radar

import (
	"math"
	"sort"
	"strings"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/stats"
)

// Inputs are the per-player pattern families the raw scores are built from.
type Inputs struct {
	Patterns     []aggregator.AdjustedStat `json:"patterns"`
	Directions   []aggregator.AdjustedStat `json:"directions"`
	ServePlusOne []aggregator.AdjustedStat `json:"servePlusOne"`
	Serve        []aggregator.ServeStat    `json:"serve"`
}

// InputsFromQuery collects every adjusted bucket of the query, without a
// minimum sample size. Shrinkage handles the small ones.
func InputsFromQuery(q *aggregator.Query) Inputs {
	return Inputs{
		Patterns:     q.Patterns(0),
		Directions:   q.Directions(0),
		ServePlusOne: q.ServePlusOne(0),
		Serve:        q.Serve(),
	}
}

// Scores maps axis keys to raw scores. A nil score means insufficient evidence.
type Scores map[string]*float64

// Scorer computes raw axis scores.
type Scorer struct {
	K                float64 // shrinkage pseudo-count
	MinEvidence      int     // summed N for shrunk composites
	ServeMinEvidence int     // summed serves for the serve axis
	CoreMinN         int     // per-shot floor for exploitability
	CoreMinEvidence  int     // summed N for exploitability
	TopPatterns      int     // patterns considered for stability
}

// DefaultScorer returns the tour radar thresholds.
func DefaultScorer() Scorer {
	return Scorer{
		K:                stats.DefaultShrinkK,
		MinEvidence:      300,
		ServeMinEvidence: 100,
		CoreMinN:         10,
		CoreMinEvidence:  50,
		TopPatterns:      20,
	}
}

// CompareScorer returns the thresholds used for the player compare card,
// which accepts less evidence per axis.
func CompareScorer() Scorer {
	s := DefaultScorer()
	s.MinEvidence = 50
	return s
}

func evidence(rows []aggregator.AdjustedStat, keep func(aggregator.AdjustedStat) bool) []stats.Evidence {
	out := make([]stats.Evidence, 0, len(rows))
	for _, r := range rows {
		if keep == nil || keep(r) {
			out = append(out, stats.Evidence{Eff: stats.Float(r.AdjustedEffectiveness), N: r.Total})
		}
	}
	return out
}

func (s Scorer) composite(rows []aggregator.AdjustedStat, keep func(aggregator.AdjustedStat) bool) *float64 {
	return stats.ShrunkComposite(evidence(rows, keep), s.K, s.MinEvidence)
}

// Raw computes every known axis from in.
func (s Scorer) Raw(in Inputs) Scores {
	expl := s.Exploitability(in.Patterns)
	var consistency *float64
	if expl != nil {
		consistency = stats.Float(1 / math.Max(0.01, *expl))
	}
	label := func(r aggregator.AdjustedStat) string { return r.ShotType }
	stroke := func(side string) func(aggregator.AdjustedStat) bool {
		return func(r aggregator.AdjustedStat) bool {
			l := label(r)
			return strings.Contains(strings.ToUpper(l), side) && !IsDefensive(l) && !IsFinishing(l)
		}
	}
	return Scores{
		AxisServe:      s.ServeStrength(in.Serve),
		AxisServePlus1: s.composite(in.ServePlusOne, nil),
		AxisForehand:   s.composite(in.Patterns, stroke("FOREHAND")),
		AxisBackhand:   s.composite(in.Patterns, stroke("BACKHAND")),
		AxisDefense: s.composite(in.Patterns, func(r aggregator.AdjustedStat) bool {
			return IsDefensive(label(r))
		}),
		AxisVolleyNet: s.composite(in.Patterns, func(r aggregator.AdjustedStat) bool {
			return IsFinishing(label(r))
		}),
		AxisTouch: s.composite(in.Patterns, func(r aggregator.AdjustedStat) bool {
			return IsTouch(label(r))
		}),
		AxisBalance:     expl,
		AxisConsistency: consistency,
		AxisAsymmetry:   s.Asymmetry(in.Directions),
		AxisStability:   s.Stability(in.Patterns),
	}
}

// ServeStrength is the serve winner rate weighted by volume, or nil when fewer
// than ServeMinEvidence serves were charted.
func (s Scorer) ServeStrength(rows []aggregator.ServeStat) *float64 {
	var sumW float64
	var sumN int
	for _, r := range rows {
		if r.Total <= 0 {
			continue
		}
		sumW += r.WinnerRate * float64(r.Total)
		sumN += r.Total
	}
	if sumN == 0 || sumN < s.ServeMinEvidence {
		return nil
	}
	return stats.Float(sumW / float64(sumN))
}

// Exploitability is the N-weighted population standard deviation of raw
// adjusted effectiveness across core shot types with at least CoreMinN samples.
// It needs two such shots and CoreMinEvidence samples in total.
func (s Scorer) Exploitability(patterns []aggregator.AdjustedStat) *float64 {
	var core []aggregator.AdjustedStat
	var sumW float64
	var sumN int
	for _, p := range patterns {
		if !IsCoreShot(p.ShotType) || p.Total < s.CoreMinN || p.Total <= 0 {
			continue
		}
		core = append(core, p)
		sumW += p.AdjustedEffectiveness * float64(p.Total)
		sumN += p.Total
	}
	if len(core) < 2 || sumN < s.CoreMinEvidence {
		return nil
	}
	mean := sumW / float64(sumN)
	var v float64
	for _, p := range core {
		d := p.AdjustedEffectiveness - mean
		v += float64(p.Total) * d * d
	}
	return stats.Float(math.Sqrt(v / float64(sumN)))
}

// Asymmetry is the gap between shrunk effectiveness to the left and to the
// right. Both sides need samples and together at least MinEvidence.
func (s Scorer) Asymmetry(directions []aggregator.AdjustedStat) *float64 {
	var leftW, rightW float64
	var leftN, rightN int
	for _, d := range directions {
		if d.Total <= 0 {
			continue
		}
		w := stats.Shrink(d.AdjustedEffectiveness, d.Total, s.K) * float64(d.Total)
		switch DirectionTag(d.Direction) {
		case DirLeft:
			leftW += w
			leftN += d.Total
		case DirRight:
			rightW += w
			rightN += d.Total
		}
	}
	if leftN == 0 || rightN == 0 || leftN+rightN < s.MinEvidence {
		return nil
	}
	return stats.Float(math.Abs(leftW/float64(leftN) - rightW/float64(rightN)))
}

// Stability is minus the sample standard deviation of shrunk effectiveness
// over the TopPatterns largest patterns, so steadier players score higher.
func (s Scorer) Stability(patterns []aggregator.AdjustedStat) *float64 {
	top := append([]aggregator.AdjustedStat(nil), patterns...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Total > top[j].Total })
	if s.TopPatterns > 0 && len(top) > s.TopPatterns {
		top = top[:s.TopPatterns]
	}
	var sumN int
	for _, p := range top {
		sumN += p.Total
	}
	if len(top) < 2 || sumN < s.MinEvidence {
		return nil
	}
	vals := make([]float64, len(top))
	var mean float64
	for i, p := range top {
		vals[i] = stats.Shrink(p.AdjustedEffectiveness, p.Total, s.K)
		mean += vals[i]
	}
	mean /= float64(len(vals))
	var v float64
	for _, x := range vals {
		v += (x - mean) * (x - mean)
	}
	return stats.Float(-math.Sqrt(v / float64(len(vals)-1)))
}
