package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/pable/go-tennis-metrics/internal/model"
)

// ReadMatches parses a matches CSV with columns id, date, first_player_name,
// second_player_name and optionally surface, best_of, p1_hand, p2_hand,
// tournament.
func ReadMatches(r io.Reader) ([]model.Match, Stats, error) {
	var st Stats
	t, err := openTable(r, "id", "date", "first_player_name", "second_player_name")
	if err != nil {
		return nil, st, err
	}

	var out []model.Match
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		st.Rows++
		if errors.Is(err, errBadRecord) {
			st.Skipped++
			continue
		}
		if err != nil {
			return nil, st, fmt.Errorf("read matches: %w", err)
		}

		m, ok := t.match(rec)
		if !ok {
			st.Skipped++
			continue
		}
		out = append(out, m)
		st.Imported++
	}
	return out, st, nil
}

func (t *csvTable) match(rec []string) (model.Match, bool) {
	id := t.get(rec, "id")
	p1, p2 := t.get(rec, "first_player_name"), t.get(rec, "second_player_name")
	if id == "" || p1 == "" || p2 == "" {
		return model.Match{}, false
	}
	date, err := parseDate(t.get(rec, "date"))
	if err != nil {
		return model.Match{}, false
	}
	bestOf, err := t.optInt(rec, "best_of")
	if err != nil {
		return model.Match{}, false
	}
	return model.Match{
		ID:           id,
		Date:         date,
		FirstPlayer:  p1,
		SecondPlayer: p2,
		Surface:      t.get(rec, "surface"),
		BestOf:       bestOf,
		P1Hand:       t.get(rec, "p1_hand"),
		P2Hand:       t.get(rec, "p2_hand"),
		Tournament:   t.get(rec, "tournament"),
	}, true
}

// ReadPoints parses a points CSV with columns match_id, number, game_score,
// set1, set2, gm1, gm2 and optionally player_won. A player_won outside
// {1, 2} is stored as unknown.
func ReadPoints(r io.Reader) ([]model.Point, Stats, error) {
	var st Stats
	t, err := openTable(r, "match_id", "number", "game_score", "set1", "set2", "gm1", "gm2")
	if err != nil {
		return nil, st, err
	}

	var out []model.Point
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		st.Rows++
		if errors.Is(err, errBadRecord) {
			st.Skipped++
			continue
		}
		if err != nil {
			return nil, st, fmt.Errorf("read points: %w", err)
		}

		p, ok := t.point(rec)
		if !ok {
			st.Skipped++
			continue
		}
		out = append(out, p)
		st.Imported++
	}
	return out, st, nil
}

func (t *csvTable) point(rec []string) (model.Point, bool) {
	p := model.Point{MatchID: t.get(rec, "match_id"), GameScore: t.get(rec, "game_score")}
	if p.MatchID == "" {
		return p, false
	}
	var err error
	if p.Number, err = t.atoi(rec, "number"); err != nil || p.Number < 1 {
		return p, false
	}
	for name, dst := range map[string]*int{"set1": &p.Set1, "set2": &p.Set2, "gm1": &p.Gm1, "gm2": &p.Gm2} {
		if *dst, err = t.optInt(rec, name); err != nil {
			return p, false
		}
	}
	if w, err := t.optInt(rec, "player_won"); err == nil && (w == 1 || w == 2) {
		p.Winner = w
	}
	return p, true
}

// ReadShots parses a shots CSV with columns match_id, point_number, number,
// shot_type, direction, serve_direction, depth, outcome. Rows with an
// unrecognised outcome are skipped.
func ReadShots(r io.Reader) ([]model.Shot, Stats, error) {
	var st Stats
	t, err := openTable(r, "match_id", "point_number", "number", "outcome")
	if err != nil {
		return nil, st, err
	}

	var out []model.Shot
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		st.Rows++
		if errors.Is(err, errBadRecord) {
			st.Skipped++
			continue
		}
		if err != nil {
			return nil, st, fmt.Errorf("read shots: %w", err)
		}

		s, ok := t.shot(rec)
		if !ok {
			st.Skipped++
			continue
		}
		out = append(out, s)
		st.Imported++
	}
	return out, st, nil
}

func (t *csvTable) shot(rec []string) (model.Shot, bool) {
	s := model.Shot{
		MatchID:        t.get(rec, "match_id"),
		ShotType:       t.get(rec, "shot_type"),
		Direction:      t.get(rec, "direction"),
		ServeDirection: t.get(rec, "serve_direction"),
		Depth:          t.get(rec, "depth"),
	}
	if s.MatchID == "" {
		return s, false
	}
	var err error
	if s.PointNumber, err = t.atoi(rec, "point_number"); err != nil {
		return s, false
	}
	if s.Number, err = t.atoi(rec, "number"); err != nil || s.Number < 0 {
		return s, false
	}
	o, ok := model.ParseOutcome(t.get(rec, "outcome"))
	if !ok {
		return s, false
	}
	s.Outcome = o
	return s, true
}
