// Package aggregator reduces a player's charted points into pattern statistics:
// per shot type, per shot type and direction, per serve direction and per
// serve-plus-response pair, each under the descriptive and the
// baseline-adjusted outcome models.
package aggregator

import (
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/stats"
)

// Params holds the thresholds that shape a query. Every value is configuration.
type Params struct {
	MinN            int // adjusted rows and the default confidence floor
	DescriptiveMinN int // descriptive shot-type rows
	ComboMinN       int // descriptive direction and serve+1 rows
	InsightMinN     int // win/loss insight evidence, per side
	Tiers           stats.Tiers
	Z               float64
	Sides           model.SideSets
}

// DefaultParams returns the thresholds used by the web app.
func DefaultParams() Params {
	return Params{
		MinN:            stats.DefaultMinN,
		DescriptiveMinN: 10,
		ComboMinN:       5,
		InsightMinN:     30,
		Tiers:           stats.Tiers{High: stats.DefaultHighN},
		Z:               stats.DefaultZ,
		Sides:           model.DefaultSideSets(),
	}
}

// Finalizer returns the row finalizer for these params.
func (p Params) Finalizer() Finalizer {
	return Finalizer{Tiers: p.Tiers, Z: p.Z}
}

// Query is one player's filtered point set with its baselines. The baselines
// are computed once in NewQuery and reused by every pattern family.
type Query struct {
	Player        string
	Filter        model.Filter
	Params        Params
	Points        []model.PlayerPoint
	Baseline      float64
	ServeBaseline float64
}

// NewQuery filters points and computes both baselines.
func NewQuery(player string, points []model.PlayerPoint, f model.Filter, p Params) *Query {
	filtered := f.Apply(points, p.Sides)
	return &Query{
		Player:        player,
		Filter:        f,
		Params:        p,
		Points:        filtered,
		Baseline:      Baseline(filtered, model.Filter{}, p.Sides, BaselineAll),
		ServeBaseline: Baseline(filtered, model.Filter{}, p.Sides, BaselineServe),
	}
}

// ShotTypes buckets the player's shots by stroke type.
func (q *Query) ShotTypes() *Buckets[ShotTypeKey] {
	b := NewBuckets[ShotTypeKey]()
	for _, p := range q.Points {
		for _, s := range p.PlayerShots() {
			if model.IsUnknown(s.ShotType) {
				b.Skip()
				continue
			}
			b.Add(ShotTypeKey{ShotType: s.ShotType}, s, p)
		}
	}
	return b
}

// ShotDirections buckets the player's shots by stroke type and direction.
func (q *Query) ShotDirections() *Buckets[ShotDirectionKey] {
	b := NewBuckets[ShotDirectionKey]()
	for _, p := range q.Points {
		for _, s := range p.PlayerShots() {
			if model.IsUnknown(s.ShotType) || model.IsUnknown(s.Direction) {
				b.Skip()
				continue
			}
			b.Add(ShotDirectionKey{ShotType: s.ShotType, Direction: s.Direction}, s, p)
		}
	}
	return b
}

// ServeResponses pairs each of the player's serves with the type of the shot
// that answered it. The response shot's outcome is the one counted.
func (q *Query) ServeResponses() *Buckets[ServeResponseKey] {
	b := NewBuckets[ServeResponseKey]()
	for _, p := range q.Points {
		if !p.Serving() {
			continue
		}
		serve, ok := p.ShotAt(0)
		if !ok || model.IsUnknown(serve.ServeDirection) {
			b.Skip()
			continue
		}
		next, ok := p.ShotAt(1)
		if !ok {
			continue
		}
		if model.IsUnknown(next.ShotType) {
			b.Skip()
			continue
		}
		b.Add(ServeResponseKey{ServeDirection: serve.ServeDirection, ResponseType: next.ShotType}, next, p)
	}
	return b
}

// ServeDirections buckets the player's serves by direction.
func (q *Query) ServeDirections() *Buckets[ServeDirectionKey] {
	b := NewBuckets[ServeDirectionKey]()
	for _, p := range q.Points {
		if !p.Serving() {
			continue
		}
		serve, ok := p.ShotAt(0)
		if !ok || model.IsUnknown(serve.ServeDirection) {
			b.Skip()
			continue
		}
		b.Add(ServeDirectionKey{ServeDirection: serve.ServeDirection}, serve, p)
	}
	return b
}

// Patterns returns adjusted shot-type rows with at least minN samples.
func (q *Query) Patterns(minN int) []AdjustedStat {
	return Adjust(q.ShotTypes(), q.Baseline, minN, q.Params.Finalizer())
}

// PatternsDescriptive returns descriptive shot-type rows with at least minN samples.
func (q *Query) PatternsDescriptive(minN int) []DescriptiveStat {
	return Describe(q.ShotTypes(), minN, q.Params.Finalizer())
}

// Directions returns adjusted shot-type+direction rows.
func (q *Query) Directions(minN int) []AdjustedStat {
	return Adjust(q.ShotDirections(), q.Baseline, minN, q.Params.Finalizer())
}

// DirectionsDescriptive returns descriptive shot-type+direction rows.
func (q *Query) DirectionsDescriptive(minN int) []DescriptiveStat {
	return Describe(q.ShotDirections(), minN, q.Params.Finalizer())
}

// ServePlusOne returns adjusted serve+response rows against the serve baseline.
func (q *Query) ServePlusOne(minN int) []AdjustedStat {
	return Adjust(q.ServeResponses(), q.ServeBaseline, minN, q.Params.Finalizer())
}

// ServePlusOneDescriptive returns descriptive serve+response rows.
func (q *Query) ServePlusOneDescriptive(minN int) []DescriptiveStat {
	return Describe(q.ServeResponses(), minN, q.Params.Finalizer())
}
