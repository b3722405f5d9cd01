package aggregator

import "github.com/pable/go-tennis-metrics/internal/model"

// BaselineMode selects the point population of a baseline.
type BaselineMode int

const (
	// BaselineAll uses every point the player took part in.
	BaselineAll BaselineMode = iota
	// BaselineServe uses only the player's service points.
	BaselineServe
)

// Baseline returns the share of points won by the player among points passing
// the filter, or 0 when none pass. Points with an unknown winner are excluded.
func Baseline(points []model.PlayerPoint, f model.Filter, sides model.SideSets, mode BaselineMode) float64 {
	var total, won int
	for _, p := range points {
		if !p.HasWinner() || !f.Matches(p, sides) {
			continue
		}
		if mode == BaselineServe && !p.Serving() {
			continue
		}
		total++
		if p.Won() {
			won++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(won) / float64(total)
}
