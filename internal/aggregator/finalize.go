package aggregator

import (
	"sort"

	"github.com/pable/go-tennis-metrics/internal/stats"
)

// DescriptiveStat is a pattern scored from charted shot outcomes:
// effectiveness = (winners - errors) / total.
type DescriptiveStat struct {
	PatternKey
	Total          int            `json:"total"`
	Winners        int            `json:"winners"`
	UnforcedErrors int            `json:"unforcedErrors"`
	ForcedErrors   int            `json:"forcedErrors"`
	Continues      int            `json:"continues"`
	WinnerRate     float64        `json:"winnerRate"`
	ErrorRate      float64        `json:"errorRate"`
	Effectiveness  float64        `json:"effectiveness"`
	WinnerCI       stats.Interval `json:"winnerCI"`
	ErrorCI        stats.Interval `json:"errorCI"`
	Confidence     stats.Tier     `json:"confidence"`
}

// AdjustedStat is a pattern scored by the points the player went on to win,
// relative to the query baseline: adjustedEffectiveness = winRate - baseline.
type AdjustedStat struct {
	PatternKey
	Total                 int            `json:"total"`
	PointsWon             int            `json:"pointsWon"`
	WinnerRate            float64        `json:"winnerRate"`
	AdjustedEffectiveness float64        `json:"adjustedEffectiveness"`
	WinnerCI              stats.Interval `json:"winnerCI"`
	Confidence            stats.Tier     `json:"confidence"`
}

// Finalizer turns buckets into user-facing rows.
type Finalizer struct {
	Tiers stats.Tiers
	Z     float64
}

func (f Finalizer) interval(wins, total int) stats.Interval {
	z := f.Z
	if z <= 0 {
		z = stats.DefaultZ
	}
	return stats.WilsonZ(wins, total, z)
}

// Describe finalizes buckets under the descriptive model, dropping those with
// fewer than minN outcome-coded shots.
func Describe[K Key](b *Buckets[K], minN int, f Finalizer) []DescriptiveStat {
	out := make([]DescriptiveStat, 0, b.Len())
	for _, k := range b.Keys() {
		acc, _ := b.Get(k)
		if acc.Total == 0 || acc.Total < minN {
			continue
		}
		errs := acc.Errors()
		n := float64(acc.Total)
		out = append(out, DescriptiveStat{
			PatternKey:     k.Pattern(),
			Total:          acc.Total,
			Winners:        acc.Winners,
			UnforcedErrors: acc.UnforcedErrors,
			ForcedErrors:   acc.ForcedErrors,
			Continues:      acc.Continues,
			WinnerRate:     float64(acc.Winners) / n,
			ErrorRate:      float64(errs) / n,
			Effectiveness:  float64(acc.Winners-errs) / n,
			WinnerCI:       f.interval(acc.Winners, acc.Total),
			ErrorCI:        f.interval(errs, acc.Total),
			Confidence:     f.Tiers.Classify(acc.Total, minN),
		})
	}
	sortByTotal(out, func(s DescriptiveStat) (int, string) { return s.Total, s.Label() })
	return out
}

// Adjust finalizes buckets under the baseline-adjusted model, dropping those
// with fewer than minN decided shots.
func Adjust[K Key](b *Buckets[K], baseline float64, minN int, f Finalizer) []AdjustedStat {
	out := make([]AdjustedStat, 0, b.Len())
	for _, k := range b.Keys() {
		acc, _ := b.Get(k)
		if acc.Decided == 0 || acc.Decided < minN {
			continue
		}
		rate := float64(acc.PointsWon) / float64(acc.Decided)
		out = append(out, AdjustedStat{
			PatternKey:            k.Pattern(),
			Total:                 acc.Decided,
			PointsWon:             acc.PointsWon,
			WinnerRate:            rate,
			AdjustedEffectiveness: rate - baseline,
			WinnerCI:              f.interval(acc.PointsWon, acc.Decided),
			Confidence:            f.Tiers.Classify(acc.Decided, minN),
		})
	}
	sortByTotal(out, func(s AdjustedStat) (int, string) { return s.Total, s.Label() })
	return out
}

// sortByTotal orders rows by total descending, then label ascending.
func sortByTotal[T any](rows []T, key func(T) (int, string)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, li := key(rows[i])
		tj, lj := key(rows[j])
		if ti != tj {
			return ti > tj
		}
		return li < lj
	})
}
