// Package ingest reads charting data from CSV into model rows, derives point
// winners from score progression and parses match metadata for enrichment.
//
// Readers are header-driven: columns may appear in any order and unknown
// columns are ignored. A row that cannot be parsed is skipped and counted in
// Stats, never fatal.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Stats counts the rows a reader saw.
type Stats struct {
	Rows     int
	Imported int
	Skipped  int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rows, %d imported, %d skipped", s.Rows, s.Imported, s.Skipped)
}

// csvTable is a CSV stream with a parsed header.
type csvTable struct {
	r    *csv.Reader
	cols map[string]int
}

func openTable(r io.Reader, required ...string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV header missing columns: %s", strings.Join(missing, ", "))
	}
	return &csvTable{r: reader, cols: cols}, nil
}

// next returns the next record. A malformed line yields errBadRecord so the
// caller can count it and move on.
func (t *csvTable) next() ([]string, error) {
	rec, err := t.r.Read()
	if err == nil || errors.Is(err, io.EOF) {
		return rec, err
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return nil, errBadRecord
	}
	return nil, err
}

var errBadRecord = errors.New("malformed CSV record")

func (t *csvTable) get(rec []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *csvTable) atoi(rec []string, name string) (int, error) {
	return strconv.Atoi(t.get(rec, name))
}

// optInt parses an optional integer column; empty means 0.
func (t *csvTable) optInt(rec []string, name string) (int, error) {
	v := t.get(rec, name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// parseDate accepts ISO dates and the compact YYYYMMDD form used in match ids.
func parseDate(s string) (time.Time, error) {
	if len(s) == 8 {
		return time.Parse("20060102", s)
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return time.Parse("2006-01-02", s)
}
