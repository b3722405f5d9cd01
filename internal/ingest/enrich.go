package ingest

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pable/go-tennis-metrics/internal/storage"
)

// Column names of the Match Charting Project matches file.
const (
	colMatchID = "match_id"
	colSurface = "Surface"
	colBestOf  = "Best of"
	colP1Hand  = "Pl 1 hand"
	colP2Hand  = "Pl 2 hand"
)

// ParseChartingMatches reads charting-m-matches.csv into metadata updates.
//
// A match_id looks like 20190707-M-Wimbledon-F-Novak_Djokovic-Roger_Federer:
// the first dash-separated part is the date and the last two are the players,
// with underscores kept. Rows with fewer than six parts, a bad date or no
// surface are skipped.
func ParseChartingMatches(r io.Reader) ([]storage.MatchMetadata, Stats, error) {
	var st Stats
	t, err := openTable(r, colMatchID, colSurface)
	if err != nil {
		return nil, st, err
	}

	var out []storage.MatchMetadata
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
			return nil, st, fmt.Errorf("read charting matches: %w", err)
		}

		meta, ok := t.metadata(rec)
		if !ok {
			st.Skipped++
			continue
		}
		out = append(out, meta)
		st.Imported++
	}
	return out, st, nil
}

func (t *csvTable) metadata(rec []string) (storage.MatchMetadata, bool) {
	var m storage.MatchMetadata
	parts := strings.Split(t.get(rec, colMatchID), "-")
	if len(parts) < 6 {
		return m, false
	}
	date, err := parseDate(parts[0])
	if err != nil {
		return m, false
	}
	m.Surface = t.get(rec, colSurface)
	if m.Surface == "" {
		return m, false
	}
	m.Date = date
	m.FirstPlayer = parts[len(parts)-2]
	m.SecondPlayer = parts[len(parts)-1]
	if n, err := strconv.Atoi(t.get(rec, colBestOf)); err == nil {
		m.BestOf = n
	}
	m.P1Hand = t.get(rec, colP1Hand)
	m.P2Hand = t.get(rec, colP2Hand)
	return m, true
}
