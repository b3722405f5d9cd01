package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-tennis-metrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) time.Time {
	d, _ := time.Parse(dateLayout, s)
	return d
}

// seed stores two matches: Alpha beat Bravo on grass in 2019, Charlie beat
// Alpha on an unknown surface in 2021.
func seed(t *testing.T, db *DB) {
	t.Helper()
	require.NoError(t, db.InsertMatches([]model.Match{
		{ID: "m1", Date: day("2019-07-01"), FirstPlayer: "Alpha", SecondPlayer: "Bravo", Surface: "Grass", BestOf: 5},
		{ID: "m2", Date: day("2021-03-10"), FirstPlayer: "Charlie", SecondPlayer: "Alpha"},
	}))
	require.NoError(t, db.InsertPoints([]model.Point{
		{MatchID: "m1", Number: 1, GameScore: "0-0", Winner: 1},
		{MatchID: "m1", Number: 2, GameScore: "40-0", Winner: 2},
		{MatchID: "m2", Number: 1, GameScore: "0-0"},
	}))
	require.NoError(t, db.InsertShots([]model.Shot{
		{MatchID: "m1", PointNumber: 1, Number: 1, ShotType: "FOREHAND", Direction: "CROSSCOURT", Outcome: model.OutcomeWinner},
		{MatchID: "m1", PointNumber: 1, Number: 0, ShotType: "SERVE", ServeDirection: "WIDE", Outcome: model.OutcomeContinue},
		{MatchID: "m1", PointNumber: 2, Number: 0, ShotType: "SERVE", ServeDirection: "T", Outcome: model.OutcomeWinner},
		{MatchID: "m2", PointNumber: 1, Number: 0, ShotType: "SERVE", ServeDirection: "BODY", Outcome: model.OutcomeContinue},
	}))
}

func TestOpen_Migrates(t *testing.T) {
	db := openMemDB(t)
	v, dirty, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), v)
}

func TestInsertAndGetMatch(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)

	m, err := db.GetMatch("m1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Alpha", m.FirstPlayer)
	assert.Equal(t, "Grass", m.Surface)
	assert.Equal(t, 5, m.BestOf)
	assert.True(t, m.Date.Equal(day("2019-07-01")))

	missing, err := db.GetMatch("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	matches, points, shots, err := db.Counts()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, []int{matches, points, shots})
}

func TestPlayerPoints_Attribution(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)
	ctx := context.Background()

	pts, err := db.PlayerPoints(ctx, "Alpha", model.Filter{}, model.DefaultSideSets())
	require.NoError(t, err)
	require.Len(t, pts, 3)

	first := pts[0]
	assert.Equal(t, 1, first.PlayerNum)
	assert.True(t, first.MatchWon)
	assert.True(t, first.Serving())
	assert.True(t, first.Won())
	require.Len(t, first.Shots, 2)
	assert.Equal(t, 0, first.Shots[0].Number, "shots are ordered by stroke number")
	assert.Equal(t, model.OutcomeWinner, first.Shots[1].Outcome)

	last := pts[2]
	assert.Equal(t, "m2", last.MatchID)
	assert.Equal(t, 2, last.PlayerNum)
	assert.False(t, last.MatchWon)
	assert.False(t, last.HasWinner())
	assert.Equal(t, "", last.Surface)
}

func TestPlayerPoints_Filters(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)
	ctx := context.Background()
	sides := model.DefaultSideSets()

	pts, err := db.PlayerPoints(ctx, "Alpha", model.Filter{Surface: "Grass"}, sides)
	require.NoError(t, err)
	assert.Len(t, pts, 2)

	pts, err = db.PlayerPoints(ctx, "Alpha", model.Filter{DateFrom: day("2020-01-01")}, sides)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, "m2", pts[0].MatchID)

	pts, err = db.PlayerPoints(ctx, "Alpha", model.Filter{Surface: "Grass", Side: model.SideDeuce}, sides)
	require.NoError(t, err)
	require.Len(t, pts, 1, "40-0 is an ad-side score")
	assert.Equal(t, 1, pts[0].Number)

	pts, err = db.PlayerPoints(ctx, "Nobody", model.Filter{}, sides)
	require.NoError(t, err)
	assert.Empty(t, pts)
}

func TestSearchPlayers(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)
	ctx := context.Background()

	got, err := db.SearchPlayers(ctx, "AL", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, got)

	got, err = db.SearchPlayers(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo"}, got)

	got, err = db.SearchPlayers(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCoverage(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)

	cov, err := db.Coverage(context.Background(), "Alpha")
	require.NoError(t, err)
	assert.Equal(t, []model.CoverageRow{
		{Year: 2021, Surface: "Unknown", Matches: 1, Points: 1},
		{Year: 2019, Surface: "Grass", Matches: 1, Points: 2},
	}, cov.Breakdown)
	assert.Equal(t, model.CoverageTotals{Matches: 2, Points: 3}, cov.Totals)
}

func TestPlayersWithMinMatches(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)

	got, err := db.PlayersWithMinMatches(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []PlayerMatchCount{{Name: "Alpha", Matches: 2}}, got)
}

func TestUpdateMatchMetadata(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)
	ctx := context.Background()

	n, err := db.UpdateMatchMetadata(ctx, []MatchMetadata{
		{Date: day("2021-03-10"), FirstPlayer: "Charlie", SecondPlayer: "Alpha", Surface: "Clay", BestOf: 3, P1Hand: "R", P2Hand: "L"},
		{Date: day("2021-03-11"), FirstPlayer: "Charlie", SecondPlayer: "Alpha", Surface: "Hard"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := db.GetMatch("m2")
	require.NoError(t, err)
	assert.Equal(t, "Clay", m.Surface)
	assert.Equal(t, "L", m.P2Hand)

	counts, err := db.SurfaceCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Grass": 1, "Clay": 1}, counts)
}

func TestSetPointWinners(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)
	ctx := context.Background()

	missing, err := db.PointsMissingWinner(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, missing)

	n, err := db.SetPointWinners(ctx, []model.Point{{MatchID: "m2", Number: 1, Winner: 1}, {MatchID: "m2", Number: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	missing, err = db.PointsMissingWinner(ctx)
	require.NoError(t, err)
	assert.Zero(t, missing)

	pts, err := db.MatchPoints(ctx)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, 1, pts[2].Winner)
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	seed(t, db)

	cols, rows, err := db.QueryRaw(context.Background(), `SELECT id, surface, best_of FROM matches ORDER BY id`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "surface", "best_of"}, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"m1", "Grass", "5"}, rows[0])
	assert.Equal(t, []string{"m2", "NULL", "NULL"}, rows[1])

	_, _, err = db.QueryRaw(context.Background(), `SELECT nope FROM nowhere`)
	assert.Error(t, err)
}
