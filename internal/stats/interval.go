// Package stats holds the numerical primitives shared by every metric family:
// binomial confidence intervals, confidence tiers, shrinkage-weighted composites
// and percentile normalisation. All functions are pure.
package stats

import "math"

// DefaultZ is the two-sided 95% normal quantile.
const DefaultZ = 1.96

// Interval is a binomial confidence interval. All three values lie in [0,1].
type Interval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Center float64 `json:"center"`
}

// Wilson returns the 95% Wilson score interval for wins out of total.
func Wilson(wins, total int) Interval {
	return WilsonZ(wins, total, DefaultZ)
}

// WilsonZ returns the Wilson score interval for wins out of total at quantile z.
// A zero total yields the degenerate {0,0,0} interval. Values are not rounded.
func WilsonZ(wins, total int, z float64) Interval {
	if total <= 0 {
		return Interval{}
	}
	n := float64(total)
	p := float64(wins) / n
	z2 := z * z
	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom
	return Interval{
		Lower:  math.Max(0, center-margin),
		Upper:  math.Min(1, center+margin),
		Center: center,
	}
}
