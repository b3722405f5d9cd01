package aggregator

import "github.com/pable/go-tennis-metrics/internal/stats"

// ServeStat summarises the player's serves in one direction. Winners are serves
// charted as winners (aces and unreturned), errors are faults.
type ServeStat struct {
	Direction             string         `json:"direction"`
	Total                 int            `json:"total"`
	Winners               int            `json:"winners"`
	Errors                int            `json:"errors"`
	InPlay                int            `json:"inPlay"`
	PointsWon             int            `json:"pointsWon"`
	WinnerRate            float64        `json:"winnerRate"`
	ErrorRate             float64        `json:"errorRate"`
	PointWinRate          float64        `json:"pointWinRate"`
	AdjustedEffectiveness float64        `json:"adjustedEffectiveness"`
	WinnerCI              stats.Interval `json:"winnerCI"`
	ErrorCI               stats.Interval `json:"errorCI"`
	Confidence            stats.Tier     `json:"confidence"`
}

// Serve returns one row per serve direction, ordered by volume. Rows are kept
// regardless of size and labelled with the descriptive confidence floor.
func (q *Query) Serve() []ServeStat {
	b := q.ServeDirections()
	f := q.Params.Finalizer()
	out := make([]ServeStat, 0, b.Len())
	for _, k := range b.Keys() {
		acc, _ := b.Get(k)
		if acc.Total == 0 {
			continue
		}
		n := float64(acc.Total)
		row := ServeStat{
			Direction:  k.ServeDirection,
			Total:      acc.Total,
			Winners:    acc.Winners,
			Errors:     acc.Errors(),
			InPlay:     acc.Continues,
			PointsWon:  acc.PointsWon,
			WinnerRate: float64(acc.Winners) / n,
			ErrorRate:  float64(acc.Errors()) / n,
			WinnerCI:   f.interval(acc.Winners, acc.Total),
			ErrorCI:    f.interval(acc.Errors(), acc.Total),
			Confidence: f.Tiers.Classify(acc.Total, q.Params.DescriptiveMinN),
		}
		if acc.Decided > 0 {
			row.PointWinRate = float64(acc.PointsWon) / float64(acc.Decided)
			row.AdjustedEffectiveness = row.PointWinRate - q.ServeBaseline
		}
		out = append(out, row)
	}
	sortByTotal(out, func(s ServeStat) (int, string) { return s.Total, s.Direction })
	return out
}
