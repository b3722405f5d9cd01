package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-tennis-metrics/internal/export"
	"github.com/pable/go-tennis-metrics/internal/ingest"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/stats"
	"github.com/pable/go-tennis-metrics/internal/storage"
)

type fakeStore struct {
	points  []model.Point
	winners []model.Point
	metas   []storage.MatchMetadata
}

func (f *fakeStore) MatchPoints(context.Context) ([]model.Point, error) { return f.points, nil }

func (f *fakeStore) SetPointWinners(_ context.Context, pts []model.Point) (int, error) {
	f.winners = append(f.winners, pts...)
	return len(pts), nil
}

func (f *fakeStore) UpdateMatchMetadata(_ context.Context, metas []storage.MatchMetadata) (int, error) {
	f.metas = append(f.metas, metas...)
	return len(metas), nil
}

type fakeFetcher struct {
	metas []storage.MatchMetadata
	err   error
}

func (f fakeFetcher) FetchMatches(context.Context) ([]storage.MatchMetadata, ingest.Stats, error) {
	return f.metas, ingest.Stats{Rows: len(f.metas), Imported: len(f.metas)}, f.err
}

type fakeExporter struct {
	calls int
	err   error
}

func (f *fakeExporter) Run(context.Context) (*export.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &export.Result{Players: 1, Exported: 1}, nil
}

// twoPoints is a match where player 1 wins the opening point on serve.
func twoPoints() []model.Point {
	return []model.Point{
		{MatchID: "m1", Number: 1, GameScore: "0-0"},
		{MatchID: "m1", Number: 2, GameScore: "15-0"},
	}
}

func TestDeriveWinners(t *testing.T) {
	st := &fakeStore{points: twoPoints()}
	n, err := DeriveWinners(context.Background(), st, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, st.winners[0].Winner)

	// Nothing left to fill once every winner is known.
	st = &fakeStore{points: []model.Point{{MatchID: "m1", Number: 1, Winner: 2}}}
	n, err = DeriveWinners(context.Background(), st, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, st.winners)
}

func TestEnrich(t *testing.T) {
	st := &fakeStore{}
	n, stats, err := Enrich(context.Background(), st, fakeFetcher{metas: []storage.MatchMetadata{{FirstPlayer: "A", SecondPlayer: "B", Surface: "Clay"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, stats.Imported)

	_, _, err = Enrich(context.Background(), st, fakeFetcher{err: errors.New("down")})
	assert.Error(t, err)
}

func TestRebuild(t *testing.T) {
	t.Run("enrichment failure does not stop the export", func(t *testing.T) {
		st := &fakeStore{points: twoPoints()}
		ex := &fakeExporter{}
		r := &Rebuild{Store: st, Fetcher: fakeFetcher{err: errors.New("down")}, Exporter: ex}
		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, 1, ex.calls)
		assert.Len(t, st.winners, 2)
	})

	t.Run("export failure is returned", func(t *testing.T) {
		r := &Rebuild{Store: &fakeStore{}, Exporter: &fakeExporter{err: errors.New("disk full")}}
		assert.ErrorContains(t, r.Run(context.Background()), "disk full")
	})

	t.Run("fresh distributions reach the model callback when reload is on", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dist.json")
		require.NoError(t, radar.NewDistributions(map[string][]float64{"serve": {0.1, 0.2}}).Save(path))
		require.NoError(t, radar.NewDistributions(map[string][]float64{"serve": {0.1, 0.2, 0.3}}).Save(radar.ComparePath(path)))

		var got *radar.Model
		r := &Rebuild{
			Store:             &fakeStore{},
			Exporter:          &fakeExporter{},
			DistributionsPath: path,
			Reload:            true,
			NewModel:          newModel,
			OnModel:           func(m *radar.Model) { got = m },
		}
		require.NoError(t, r.Run(context.Background()))
		require.NotNil(t, got)
		assert.Equal(t, 2, got.Dist.Len("serve"))
		assert.Equal(t, 3, got.CompareDist.Len("serve"))

		p := got.ProfileFromScores(radar.Scores{"serve": stats.Float(0.3)})
		require.NotNil(t, p.Axes["serve"].Percentile)
	})

	t.Run("the running model is kept when reload is off", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dist.json")
		require.NoError(t, radar.NewDistributions(map[string][]float64{"serve": {0.1, 0.2}}).Save(path))

		calls := 0
		ex := &fakeExporter{}
		r := &Rebuild{
			Store:             &fakeStore{},
			Exporter:          ex,
			DistributionsPath: path,
			NewModel:          newModel,
			OnModel:           func(*radar.Model) { calls++ },
		}
		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, 1, ex.calls)
		assert.Zero(t, calls)
	})
}

func newModel(tour, compare *radar.Distributions) (*radar.Model, error) {
	m := radar.NewModel(tour)
	m.CompareDist = compare
	return m, nil
}
