package model

import (
	"strings"
	"time"
)

// Side selects points by the court side implied by the game score.
type Side string

const (
	SideAll   Side = ""
	SideDeuce Side = "Deuce"
	SideAd    Side = "Ad"
)

// ParseSide accepts "", "deuce" or "ad" in any case.
func ParseSide(s string) (Side, bool) {
	switch {
	case s == "":
		return SideAll, true
	case strings.EqualFold(s, string(SideDeuce)):
		return SideDeuce, true
	case strings.EqualFold(s, string(SideAd)):
		return SideAd, true
	default:
		return SideAll, false
	}
}

// SideSets holds the game scores that count as Deuce-side and Ad-side points.
// The two sets may overlap.
type SideSets struct {
	Deuce []string
	Ad    []string
}

// DefaultSideSets returns the score sets used by the charting web app.
func DefaultSideSets() SideSets {
	return SideSets{
		Deuce: []string{"0-0", "15-15", "30-30", "40-40", "15-30", "30-15", "0-15", "15-0", "0-30", "30-0", "40-15", "15-40", "30-40", "40-30"},
		Ad:    []string{"40-0", "0-40", "40-15", "15-40", "30-40", "40-30", "40-AD", "AD-40"},
	}
}

// Scores returns the score set for a side, or nil for SideAll.
func (s SideSets) Scores(side Side) []string {
	switch side {
	case SideDeuce:
		return s.Deuce
	case SideAd:
		return s.Ad
	default:
		return nil
	}
}

// Contains reports whether the game score belongs to the side.
func (s SideSets) Contains(side Side, gameScore string) bool {
	if side == SideAll {
		return true
	}
	for _, sc := range s.Scores(side) {
		if sc == gameScore {
			return true
		}
	}
	return false
}

// Filter narrows the points considered for a player. Zero fields are unset;
// set fields combine with AND.
type Filter struct {
	Surface  string
	DateFrom time.Time
	DateTo   time.Time
	Side     Side
}

// IsZero reports whether no filter field is set.
func (f Filter) IsZero() bool {
	return f.Surface == "" && f.DateFrom.IsZero() && f.DateTo.IsZero() && f.Side == SideAll
}

// Matches reports whether the point passes every set filter.
func (f Filter) Matches(p PlayerPoint, sides SideSets) bool {
	if f.Surface != "" && p.Surface != f.Surface {
		return false
	}
	if !f.DateFrom.IsZero() && p.Date.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && p.Date.After(f.DateTo) {
		return false
	}
	return sides.Contains(f.Side, p.GameScore)
}

// Apply returns the points that pass the filter, preserving order.
func (f Filter) Apply(points []PlayerPoint, sides SideSets) []PlayerPoint {
	if f.IsZero() {
		return points
	}
	out := make([]PlayerPoint, 0, len(points))
	for _, p := range points {
		if f.Matches(p, sides) {
			out = append(out, p)
		}
	}
	return out
}
