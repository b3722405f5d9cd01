package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pable/go-tennis-metrics/internal/model"
)

// Store is the write side of the match database.
type Store interface {
	InsertMatches(matches []model.Match) error
	InsertPoints(points []model.Point) error
	InsertShots(shots []model.Shot) error
}

// Files names the CSV files of one import. Empty paths are skipped.
type Files struct {
	Matches string
	Points  string
	Shots   string
}

// DirFiles returns the conventional file names inside dir.
func DirFiles(dir string) Files {
	return Files{
		Matches: filepath.Join(dir, "matches.csv"),
		Points:  filepath.Join(dir, "points.csv"),
		Shots:   filepath.Join(dir, "shots.csv"),
	}
}

// Summary reports per-file reader stats.
type Summary struct {
	Matches Stats
	Points  Stats
	Shots   Stats
}

// Skipped returns the total number of skipped rows.
func (s Summary) Skipped() int {
	return s.Matches.Skipped + s.Points.Skipped + s.Shots.Skipped
}

// Import loads matches, then points, then shots so foreign keys resolve.
func Import(files Files, store Store) (Summary, error) {
	var sum Summary
	var err error

	if files.Matches != "" {
		var rows []model.Match
		err = readFile(files.Matches, func(r io.Reader) error {
			rows, sum.Matches, err = ReadMatches(r)
			return err
		})
		if err != nil {
			return sum, err
		}
		if err := store.InsertMatches(rows); err != nil {
			return sum, fmt.Errorf("insert matches: %w", err)
		}
	}

	if files.Points != "" {
		var rows []model.Point
		err = readFile(files.Points, func(r io.Reader) error {
			rows, sum.Points, err = ReadPoints(r)
			return err
		})
		if err != nil {
			return sum, err
		}
		if err := store.InsertPoints(rows); err != nil {
			return sum, fmt.Errorf("insert points: %w", err)
		}
	}

	if files.Shots != "" {
		var rows []model.Shot
		err = readFile(files.Shots, func(r io.Reader) error {
			rows, sum.Shots, err = ReadShots(r)
			return err
		})
		if err != nil {
			return sum, err
		}
		if err := store.InsertShots(rows); err != nil {
			return sum, fmt.Errorf("insert shots: %w", err)
		}
	}
	return sum, nil
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
