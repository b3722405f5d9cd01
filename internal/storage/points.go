package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pable/go-tennis-metrics/internal/model"
)

// PlayerPoints returns every point the player took part in that passes f,
// ordered by date, match and point number, each with its shots in stroke
// order. Filters are applied in SQL.
func (db *DB) PlayerPoints(ctx context.Context, player string, f model.Filter, sides model.SideSets) ([]model.PlayerPoint, error) {
	where := []string{"(m.first_player_name = ? OR m.second_player_name = ?)"}
	args := []any{player, player}
	if f.Surface != "" {
		where = append(where, "m.surface = ?")
		args = append(args, f.Surface)
	}
	if !f.DateFrom.IsZero() {
		where = append(where, "m.date >= ?")
		args = append(args, f.DateFrom.Format(dateLayout))
	}
	if !f.DateTo.IsZero() {
		where = append(where, "m.date <= ?")
		args = append(args, f.DateTo.Format(dateLayout))
	}
	if f.Side != model.SideAll {
		scores := sides.Scores(f.Side)
		if len(scores) == 0 {
			return []model.PlayerPoint{}, nil
		}
		where = append(where, "p.game_score IN ("+placeholders(len(scores))+")")
		for _, s := range scores {
			args = append(args, s)
		}
	}

	query := fmt.Sprintf(`
		SELECT m.id, m.date, COALESCE(m.surface, ''), m.first_player_name,
		       p.number, p.game_score, COALESCE(p.player_won, 0),
		       s.number, s.shot_type, s.direction, s.serve_direction, s.depth, s.outcome
		FROM matches m
		JOIN points p ON p.match_id = m.id
		LEFT JOIN shots s ON s.match_id = p.match_id AND s.point_number = p.number
		WHERE %s
		ORDER BY m.date, m.id, p.number, s.number`, strings.Join(where, " AND "))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query player points: %w", err)
	}
	defer rows.Close()

	out := []model.PlayerPoint{}
	cur := -1
	for rows.Next() {
		var (
			matchID, date, surface, first, gameScore string
			number, winner                           int
			shotNum                                  sql.NullInt64
			shotType, dir, serveDir, depth, outcome  sql.NullString
		)
		if err := rows.Scan(&matchID, &date, &surface, &first, &number, &gameScore, &winner,
			&shotNum, &shotType, &dir, &serveDir, &depth, &outcome); err != nil {
			return nil, err
		}
		if cur < 0 || out[cur].MatchID != matchID || out[cur].Number != number {
			playerNum := 2
			if first == player {
				playerNum = 1
			}
			d, _ := time.Parse(dateLayout, date)
			out = append(out, model.PlayerPoint{
				MatchID:   matchID,
				Number:    number,
				Date:      d,
				Surface:   surface,
				GameScore: gameScore,
				PlayerNum: playerNum,
				Winner:    winner,
				MatchWon:  playerNum == 1,
			})
			cur = len(out) - 1
		}
		if !shotNum.Valid {
			continue
		}
		o, _ := model.ParseOutcome(outcome.String)
		out[cur].Shots = append(out[cur].Shots, model.Shot{
			MatchID:        matchID,
			PointNumber:    number,
			Number:         int(shotNum.Int64),
			ShotType:       shotType.String,
			Direction:      dir.String,
			ServeDirection: serveDir.String,
			Depth:          depth.String,
			Outcome:        o,
		})
	}
	return out, rows.Err()
}

// MatchPoints returns the points of every match, ordered by match and number,
// with the score state the winner derivation needs.
func (db *DB) MatchPoints(ctx context.Context) ([]model.Point, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT match_id, number, game_score, set1, set2, gm1, gm2, COALESCE(player_won, 0)
		FROM points ORDER BY match_id, number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Point
	for rows.Next() {
		var p model.Point
		if err := rows.Scan(&p.MatchID, &p.Number, &p.GameScore, &p.Set1, &p.Set2, &p.Gm1, &p.Gm2, &p.Winner); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PointsMissingWinner returns the number of points whose winner is unknown.
func (db *DB) PointsMissingWinner(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM points WHERE player_won IS NULL`).Scan(&n)
	return n, err
}

// SetPointWinners writes derived winners in one transaction. Entries with a
// winner other than 1 or 2 are ignored.
func (db *DB) SetPointWinners(ctx context.Context, points []model.Point) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE points SET player_won = ? WHERE match_id = ? AND number = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, p := range points {
		if p.Winner != 1 && p.Winner != 2 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, p.Winner, p.MatchID, p.Number); err != nil {
			return 0, fmt.Errorf("set winner %s/%d: %w", p.MatchID, p.Number, err)
		}
		n++
	}
	return n, tx.Commit()
}
