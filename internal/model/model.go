package model

import (
	"strings"
	"time"
)

// Outcome is the charted result of a single shot.
type Outcome string

const (
	OutcomeWinner        Outcome = "WINNER"
	OutcomeUnforcedError Outcome = "UNFORCED_ERROR"
	OutcomeForcedError   Outcome = "FORCED_ERROR"
	OutcomeContinue      Outcome = "CONTINUE"
)

// ParseOutcome maps a raw outcome string to an Outcome. The second return value
// is false for empty or unrecognised values.
func ParseOutcome(s string) (Outcome, bool) {
	switch o := Outcome(strings.ToUpper(strings.TrimSpace(s))); o {
	case OutcomeWinner, OutcomeUnforcedError, OutcomeForcedError, OutcomeContinue:
		return o, true
	default:
		return "", false
	}
}

// IsError reports whether the outcome ended the rally with an error by the hitter.
func (o Outcome) IsError() bool {
	return o == OutcomeUnforcedError || o == OutcomeForcedError
}

// Terminal reports whether the outcome is a winner or an error (used as a token qualifier).
func (o Outcome) Terminal() bool {
	return o == OutcomeWinner || o.IsError()
}

// Sentinel values used by the charting data for fields that could not be coded.
const (
	UnknownShotType       = "UNKNOWN_SHOT_TYPE"
	UnknownDirection      = "UNKNOWN_DIRECTION"
	UnknownServeDirection = "UNKNOWN_SERVE_DIRECTION"
	UnknownDepth          = "UNKNOWN_DEPTH"
)

// IsUnknown reports whether a categorical value is missing or carries an UNKNOWN sentinel.
func IsUnknown(s string) bool {
	return s == "" || strings.Contains(strings.ToUpper(s), "UNKNOWN")
}

// ---- Stored rows ----

// Match is one charted match. By dataset convention FirstPlayer won the match.
type Match struct {
	ID           string
	Date         time.Time
	FirstPlayer  string
	SecondPlayer string
	Surface      string // "" when unknown
	BestOf       int
	P1Hand       string
	P2Hand       string
	Tournament   string
}

// PlayerNum returns 1 or 2 for the named player, or 0 if they did not play the match.
func (m Match) PlayerNum(name string) int {
	switch name {
	case m.FirstPlayer:
		return 1
	case m.SecondPlayer:
		return 2
	default:
		return 0
	}
}

// Point is one point of a match with the score state before it was played.
type Point struct {
	MatchID   string
	Number    int
	GameScore string // server-first, e.g. "30-15"
	Set1      int
	Set2      int
	Gm1       int
	Gm2       int
	Winner    int // 1 or 2; 0 when unknown
}

// Shot is one stroke within a point. Number 0 is the serve.
type Shot struct {
	MatchID        string
	PointNumber    int
	Number         int
	ShotType       string
	Direction      string
	ServeDirection string
	Depth          string
	Outcome        Outcome
}

// IsServe reports whether the shot is the first stroke of the point.
func (s Shot) IsServe() bool { return s.Number == 0 }

// ServerOf returns which side serves the given point number:
// player 1 serves odd-numbered points, player 2 even-numbered ones.
func ServerOf(pointNumber int) int {
	if pointNumber%2 == 1 {
		return 1
	}
	return 2
}

// ---- Player-perspective rows fed to the engine ----

// PlayerPoint is a point seen from a named player, carrying the match context
// needed for filtering and the ordered shots of the point.
type PlayerPoint struct {
	MatchID   string
	Number    int
	Date      time.Time
	Surface   string
	GameScore string
	PlayerNum int  // 1 or 2
	Winner    int  // point winner, 1 or 2; 0 when unknown
	MatchWon  bool // player is the match's first player
	Shots     []Shot
}

// Serving reports whether the player served this point.
func (p PlayerPoint) Serving() bool {
	return ServerOf(p.Number) == p.PlayerNum
}

// Won reports whether the player won the point.
func (p PlayerPoint) Won() bool {
	return p.Winner == p.PlayerNum
}

// HasWinner reports whether the point winner is known.
func (p PlayerPoint) HasWinner() bool {
	return p.Winner == 1 || p.Winner == 2
}

// Hits reports whether the shot at the given index was struck by the player:
// even indices when serving, odd ones when receiving.
func (p PlayerPoint) Hits(index int) bool {
	if p.Serving() {
		return index%2 == 0
	}
	return index%2 == 1
}

// PlayerShots returns the shots struck by the player, in order.
func (p PlayerPoint) PlayerShots() []Shot {
	var out []Shot
	for _, s := range p.Shots {
		if p.Hits(s.Number) {
			out = append(out, s)
		}
	}
	return out
}

// ShotAt returns the shot with the given sequence index.
func (p PlayerPoint) ShotAt(index int) (Shot, bool) {
	for _, s := range p.Shots {
		if s.Number == index {
			return s, true
		}
	}
	return Shot{}, false
}

// ---- Coverage ----

// CoverageRow counts charted matches and points for one year and surface.
type CoverageRow struct {
	Year    int    `json:"year"`
	Surface string `json:"surface"`
	Matches int    `json:"matches"`
	Points  int    `json:"points"`
}

// CoverageTotals counts all charted matches and points for a player.
type CoverageTotals struct {
	Matches int `json:"total_matches"`
	Points  int `json:"total_points"`
}

// Coverage is the data-availability summary for a player.
type Coverage struct {
	Breakdown []CoverageRow  `json:"breakdown"`
	Totals    CoverageTotals `json:"totals"`
}
