package aggregator

import "github.com/pable/go-tennis-metrics/internal/model"

// Report bundles every pattern family for one player query. All adjusted rows
// share the Baseline (or ServeBaseline) computed once in NewQuery.
type Report struct {
	Player        string  `json:"player"`
	Points        int     `json:"points"`
	Baseline      float64 `json:"baseline"`
	ServeBaseline float64 `json:"serveBaseline"`

	Patterns            []AdjustedStat    `json:"patterns"`
	PatternsDescriptive []DescriptiveStat `json:"patternsDescriptive"`
	Directions          []AdjustedStat    `json:"directions"`
	DirectionsDescr     []DescriptiveStat `json:"directionsDescriptive"`
	Serve               []ServeStat       `json:"serve"`
	ServePlusOne        []AdjustedStat    `json:"servePlusOne"`
	ServePlusOneDescr   []DescriptiveStat `json:"servePlusOneDescriptive"`
	Compare             Comparison        `json:"compare"`
	Insights            Insights          `json:"insights"`

	// Skipped counts shots excluded from the shot-type family because their
	// type was missing or UNKNOWN.
	Skipped int `json:"skipped"`
}

// Analyze runs every pattern family over a player's points.
func Analyze(player string, points []model.PlayerPoint, f model.Filter, p Params) Report {
	q := NewQuery(player, points, f, p)
	return q.Report()
}

// Report computes every family for the query.
func (q *Query) Report() Report {
	p := q.Params
	return Report{
		Player:              q.Player,
		Points:              len(q.Points),
		Baseline:            q.Baseline,
		ServeBaseline:       q.ServeBaseline,
		Patterns:            q.Patterns(p.MinN),
		PatternsDescriptive: q.PatternsDescriptive(p.DescriptiveMinN),
		Directions:          q.Directions(p.MinN),
		DirectionsDescr:     q.DirectionsDescriptive(p.ComboMinN),
		Serve:               q.Serve(),
		ServePlusOne:        q.ServePlusOne(p.MinN),
		ServePlusOneDescr:   q.ServePlusOneDescriptive(p.ComboMinN),
		Compare:             q.Compare(p.DescriptiveMinN),
		Insights:            q.Insights(),
		Skipped:             q.ShotTypes().Skipped(),
	}
}
