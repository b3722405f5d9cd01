// Package radar scores a player on fixed style axes. Raw axis scores are
// shrunk composites of the player's adjusted patterns; each is ranked against
// a tour distribution to give a percentile.
package radar

import "sort"

// DefaultMinAxes is the number of scored axes a profile needs to be valid.
const DefaultMinAxes = 4

// AxisScore is one axis of a profile.
type AxisScore struct {
	Raw        *float64 `json:"raw"`
	Percentile *int     `json:"percentile"`
}

// Profile is a player's radar. Valid is false when fewer than the required
// number of axes have a percentile; consumers should then show the profile as
// insufficient rather than plot it.
type Profile struct {
	Axes      map[string]AxisScore `json:"axes"`
	Available int                  `json:"available"`
	Valid     bool                 `json:"valid"`
}

// Model holds everything needed to turn inputs into a profile. The
// distributions are loaded once and shared read-only across goroutines.
// CompareDist is the population of compare scorer results that compare cards
// rank against; it is nil when no compare snapshot was built.
type Model struct {
	Dist        *Distributions
	CompareDist *Distributions
	Axes        []Axis
	MinAxes     int
	Scorer      Scorer
}

// NewModel returns a model over the default axes and thresholds.
func NewModel(dist *Distributions) *Model {
	return &Model{
		Dist:    dist,
		Axes:    DefaultAxes(),
		MinAxes: DefaultMinAxes,
		Scorer:  DefaultScorer(),
	}
}

// Profile scores in against the model's distributions.
func (m *Model) Profile(in Inputs) Profile {
	return m.ProfileFromScores(m.Scorer.Raw(in))
}

// ProfileFromScores ranks precomputed raw scores.
func (m *Model) ProfileFromScores(raw Scores) Profile {
	p := Profile{Axes: make(map[string]AxisScore, len(m.Axes))}
	for _, a := range m.Axes {
		s := AxisScore{Raw: raw[a.Key]}
		s.Percentile = m.Dist.Percentile(a, s.Raw)
		if s.Percentile != nil {
			p.Available++
		}
		p.Axes[a.Key] = s
	}
	minAxes := m.MinAxes
	if minAxes <= 0 {
		minAxes = DefaultMinAxes
	}
	p.Valid = p.Available >= minAxes
	return p
}

// BuildDistributions collects, per axis, the non-nil raw scores of every
// player. Players are visited in name order so the snapshot is reproducible.
func BuildDistributions(players map[string]Scores, axes []Axis) *Distributions {
	names := make([]string, 0, len(players))
	for n := range players {
		names = append(names, n)
	}
	sort.Strings(names)

	m := make(map[string][]float64, len(axes))
	for _, a := range axes {
		vals := []float64{}
		for _, n := range names {
			if v := players[n][a.Key]; v != nil {
				vals = append(vals, *v)
			}
		}
		m[a.Key] = vals
	}
	return NewDistributions(m)
}

// Percentiles maps axis keys to percentiles; nil means no data.
type Percentiles map[string]*int

// CardPercentiles ranks compare scorer results against the compare population.
func (m *Model) CardPercentiles(players map[string]Scores) map[string]Percentiles {
	return PercentileTable(players, m.CompareDist, m.Axes)
}

// PercentileTable ranks every player's raw scores against dist.
func PercentileTable(players map[string]Scores, dist *Distributions, axes []Axis) map[string]Percentiles {
	out := make(map[string]Percentiles, len(players))
	for name, raw := range players {
		row := make(Percentiles, len(axes))
		for _, a := range axes {
			row[a.Key] = dist.Percentile(a, raw[a.Key])
		}
		out[name] = row
	}
	return out
}
