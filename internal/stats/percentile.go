package stats

import (
	"math"
	"sort"
)

// NeutralPercentile is returned when there is no comparison population.
// It is distinct from a nil result, which means the value itself is absent.
const NeutralPercentile = 50

// Percentile ranks value against dist on a 0–100 scale. Nil entries in dist are
// ignored; ties count half. With invert set the result is 100 minus the rank,
// for scores where lower raw values are better.
//
// A nil value yields nil. An empty distribution yields NeutralPercentile.
func Percentile(value *float64, dist []*float64, invert bool) *int {
	if value == nil {
		return nil
	}
	valid := make([]float64, 0, len(dist))
	for _, d := range dist {
		if d != nil && !math.IsNaN(*d) {
			valid = append(valid, *d)
		}
	}
	p := PercentileOf(*value, valid, invert)
	return &p
}

// PercentileOf is Percentile over a distribution with no missing entries.
func PercentileOf(value float64, dist []float64, invert bool) int {
	if len(dist) == 0 {
		return NeutralPercentile
	}
	sorted := append([]float64(nil), dist...)
	sort.Float64s(sorted)

	var rank float64
	for _, v := range sorted {
		if v < value {
			rank++
		} else if v == value {
			rank += 0.5
		} else {
			break
		}
	}
	p := int(math.Round(100 * rank / float64(len(sorted))))
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if invert {
		return 100 - p
	}
	return p
}
