package ingest

import (
	"sort"
	"strings"

	"github.com/pable/go-tennis-metrics/internal/model"
)

// gameScoreSteps maps a game-score token to its step within a game.
var gameScoreSteps = map[string]int{"0": 0, "15": 1, "30": 2, "40": 3, "AD": 4}

// scoreSteps splits a server-first game score into server and receiver steps.
// Tiebreak counts and malformed scores read as 0-0.
func scoreSteps(score string) (server, receiver int) {
	parts := strings.Split(score, "-")
	if len(parts) != 2 {
		return 0, 0
	}
	return gameScoreSteps[strings.TrimSpace(parts[0])], gameScoreSteps[strings.TrimSpace(parts[1])]
}

// DeriveWinners infers point winners from the score state of the following
// point in the same match:
//
//   - player 1 gained a game or a set: player 1 won;
//   - player 2 gained a game or a set: player 2 won;
//   - otherwise the server-first game score decides: the side whose score
//     advanced while the other did not won;
//   - the last point of a match goes to the set leader (player 1 unless
//     player 2 leads on sets).
//
// Points whose winner cannot be inferred are left out. Points that already
// carry a winner are kept as they are unless overwrite is set. The returned
// slice holds only points whose winner changed, ordered by match and number.
func DeriveWinners(points []model.Point, overwrite bool) []model.Point {
	sorted := make([]model.Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MatchID != sorted[j].MatchID {
			return sorted[i].MatchID < sorted[j].MatchID
		}
		return sorted[i].Number < sorted[j].Number
	})

	var out []model.Point
	for i, pt := range sorted {
		if pt.Winner != 0 && !overwrite {
			continue
		}
		var w int
		if i+1 < len(sorted) && sorted[i+1].MatchID == pt.MatchID {
			w = winnerFromNext(pt, sorted[i+1])
		} else {
			w = 2
			if pt.Set1 > pt.Set2 {
				w = 1
			}
		}
		if w == 0 || w == pt.Winner {
			continue
		}
		pt.Winner = w
		out = append(out, pt)
	}
	return out
}

func winnerFromNext(cur, next model.Point) int {
	switch {
	case next.Gm1 > cur.Gm1 || next.Set1 > cur.Set1:
		return 1
	case next.Gm2 > cur.Gm2 || next.Set2 > cur.Set2:
		return 2
	}

	server := model.ServerOf(cur.Number)
	curS, curR := scoreSteps(cur.GameScore)
	nextS, nextR := scoreSteps(next.GameScore)
	switch {
	case nextS > curS && nextR <= curR:
		return server
	case nextR > curR && nextS <= curS:
		return 3 - server
	default:
		return 0
	}
}
