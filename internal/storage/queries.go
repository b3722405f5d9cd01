package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pable/go-tennis-metrics/internal/model"
)

const dateLayout = "2006-01-02"

// InsertMatches upserts match rows in one transaction.
func (db *DB) InsertMatches(matches []model.Match) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO matches(id, date, first_player_name, second_player_name, surface, best_of, p1_hand, p2_hand, tournament)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			first_player_name = excluded.first_player_name,
			second_player_name = excluded.second_player_name,
			surface = COALESCE(excluded.surface, matches.surface),
			best_of = COALESCE(excluded.best_of, matches.best_of),
			p1_hand = COALESCE(excluded.p1_hand, matches.p1_hand),
			p2_hand = COALESCE(excluded.p2_hand, matches.p2_hand),
			tournament = excluded.tournament`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range matches {
		_, err = stmt.Exec(m.ID, m.Date.Format(dateLayout), m.FirstPlayer, m.SecondPlayer,
			nullString(m.Surface), nullInt(m.BestOf), nullString(m.P1Hand), nullString(m.P2Hand), m.Tournament)
		if err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// InsertPoints bulk-upserts points. An update keeps the point's shots.
func (db *DB) InsertPoints(points []model.Point) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO points(match_id, number, game_score, set1, set2, gm1, gm2, player_won)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(match_id, number) DO UPDATE SET
			game_score = excluded.game_score,
			set1 = excluded.set1, set2 = excluded.set2,
			gm1 = excluded.gm1, gm2 = excluded.gm2,
			player_won = COALESCE(excluded.player_won, points.player_won)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		_, err = stmt.Exec(p.MatchID, p.Number, p.GameScore, p.Set1, p.Set2, p.Gm1, p.Gm2, nullInt(p.Winner))
		if err != nil {
			return fmt.Errorf("insert point %s/%d: %w", p.MatchID, p.Number, err)
		}
	}
	return tx.Commit()
}

// InsertShots bulk-inserts shots. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertShots(shots []model.Shot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO shots(match_id, point_number, number, shot_type, direction, serve_direction, depth, outcome)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range shots {
		_, err = stmt.Exec(s.MatchID, s.PointNumber, s.Number, s.ShotType, s.Direction,
			s.ServeDirection, s.Depth, string(s.Outcome))
		if err != nil {
			return fmt.Errorf("insert shot %s/%d/%d: %w", s.MatchID, s.PointNumber, s.Number, err)
		}
	}
	return tx.Commit()
}

// GetMatch returns a match by ID, or nil if it does not exist.
func (db *DB) GetMatch(id string) (*model.Match, error) {
	row := db.conn.QueryRow(`
		SELECT id, date, first_player_name, second_player_name,
		       COALESCE(surface, ''), COALESCE(best_of, 0), COALESCE(p1_hand, ''), COALESCE(p2_hand, ''), tournament
		FROM matches WHERE id = ?`, id)
	var m model.Match
	var date string
	err := row.Scan(&m.ID, &date, &m.FirstPlayer, &m.SecondPlayer, &m.Surface, &m.BestOf, &m.P1Hand, &m.P2Hand, &m.Tournament)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Date, _ = time.Parse(dateLayout, date)
	return &m, nil
}

// Counts returns the number of stored matches, points and shots.
func (db *DB) Counts() (matches, points, shots int, err error) {
	err = db.conn.QueryRow(`
		SELECT (SELECT COUNT(*) FROM matches), (SELECT COUNT(*) FROM points), (SELECT COUNT(*) FROM shots)`).
		Scan(&matches, &points, &shots)
	return
}

// SearchPlayers returns player names containing q, case-insensitively, in name
// order. A limit of 0 returns every match.
func (db *DB) SearchPlayers(ctx context.Context, q string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT name FROM (
			SELECT first_player_name AS name FROM matches
			UNION
			SELECT second_player_name AS name FROM matches
		)
		WHERE LOWER(name) LIKE LOWER(?)
		ORDER BY name`
	args := []any{"%" + q + "%"}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// PlayerMatchCount holds the number of charted matches for a player.
type PlayerMatchCount struct {
	Name    string
	Matches int
}

// PlayersWithMinMatches returns every player with at least min charted
// matches, ordered by name.
func (db *DB) PlayersWithMinMatches(ctx context.Context, min int) ([]PlayerMatchCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, COUNT(*) AS n FROM (
			SELECT first_player_name AS name FROM matches
			UNION ALL
			SELECT second_player_name AS name FROM matches
		)
		GROUP BY name
		HAVING COUNT(*) >= ?
		ORDER BY name`, min)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerMatchCount
	for rows.Next() {
		var p PlayerMatchCount
		if err := rows.Scan(&p.Name, &p.Matches); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Coverage returns a player's charted matches and points by year and surface.
// Matches without a surface are reported as "Unknown".
func (db *DB) Coverage(ctx context.Context, player string) (model.Coverage, error) {
	cov := model.Coverage{Breakdown: []model.CoverageRow{}}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT CAST(substr(m.date, 1, 4) AS INTEGER) AS year,
		       COALESCE(m.surface, 'Unknown') AS surface,
		       COUNT(DISTINCT m.id), COUNT(*)
		FROM matches m JOIN points p ON p.match_id = m.id
		WHERE m.first_player_name = ? OR m.second_player_name = ?
		GROUP BY year, surface
		ORDER BY year DESC, surface`, player, player)
	if err != nil {
		return cov, err
	}
	defer rows.Close()

	for rows.Next() {
		var r model.CoverageRow
		if err := rows.Scan(&r.Year, &r.Surface, &r.Matches, &r.Points); err != nil {
			return cov, err
		}
		cov.Breakdown = append(cov.Breakdown, r)
		cov.Totals.Matches += r.Matches
		cov.Totals.Points += r.Points
	}
	return cov, rows.Err()
}

// PlayerExists reports whether the player appears in any stored match.
func (db *DB) PlayerExists(ctx context.Context, player string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM matches WHERE first_player_name = ? OR second_player_name = ?`,
		player, player).Scan(&n)
	return n > 0, err
}

// MatchMetadata is the enrichment applied to a match identified by date and players.
type MatchMetadata struct {
	Date         time.Time
	FirstPlayer  string
	SecondPlayer string
	Surface      string
	BestOf       int
	P1Hand       string
	P2Hand       string
}

// UpdateMatchMetadata sets surface, best-of and hands on matching rows in one
// transaction and returns how many entries matched at least one match.
func (db *DB) UpdateMatchMetadata(ctx context.Context, metas []MatchMetadata) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE matches SET surface = ?, best_of = ?, p1_hand = ?, p2_hand = ?
		WHERE date = ? AND first_player_name = ? AND second_player_name = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	updated := 0
	for _, m := range metas {
		res, err := stmt.ExecContext(ctx, nullString(m.Surface), nullInt(m.BestOf),
			nullString(m.P1Hand), nullString(m.P2Hand),
			m.Date.Format(dateLayout), m.FirstPlayer, m.SecondPlayer)
		if err != nil {
			return 0, fmt.Errorf("update match %s vs %s: %w", m.FirstPlayer, m.SecondPlayer, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			updated++
		}
	}
	return updated, tx.Commit()
}

// SurfaceCounts returns the number of matches per surface, "Unknown" for NULL.
func (db *DB) SurfaceCounts(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT COALESCE(surface, 'Unknown'), COUNT(*) FROM matches GROUP BY COALESCE(surface, 'Unknown')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
