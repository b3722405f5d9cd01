package aggregator

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/stats"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func shot(n int, typ, dir string, o model.Outcome) model.Shot {
	return model.Shot{MatchID: "m1", Number: n, ShotType: typ, Direction: dir, Outcome: o}
}

func serve(dir string, o model.Outcome) model.Shot {
	return model.Shot{MatchID: "m1", Number: 0, ShotType: "SERVE", ServeDirection: dir, Outcome: o}
}

// point builds a point seen from player 1 of match m1.
func point(num, winner int, shots ...model.Shot) model.PlayerPoint {
	for i := range shots {
		shots[i].PointNumber = num
	}
	return model.PlayerPoint{
		MatchID:   "m1",
		Number:    num,
		Date:      time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Surface:   "Hard",
		GameScore: "0-0",
		PlayerNum: 1,
		Winner:    winner,
		MatchWon:  true,
		Shots:     shots,
	}
}

// fixture: four points of player 1, two on serve (odd numbers) and two on return.
//
//	p1 serve WIDE, opp FH, FH CC winner       won
//	p2 opp serve, BH DTL unforced error       lost
//	p3 serve T ace                            won
//	p4 opp serve, FH CC in play, opp BH error won
func fixture() []model.PlayerPoint {
	return []model.PlayerPoint{
		point(1, 1,
			serve("WIDE", model.OutcomeContinue),
			shot(1, "FOREHAND", "CROSSCOURT", model.OutcomeContinue),
			shot(2, "FOREHAND", "CROSSCOURT", model.OutcomeWinner)),
		point(2, 2,
			serve("T", model.OutcomeContinue),
			shot(1, "BACKHAND", "DOWN_THE_LINE", model.OutcomeUnforcedError)),
		point(3, 1,
			serve("T", model.OutcomeWinner)),
		point(4, 1,
			serve("BODY", model.OutcomeContinue),
			shot(1, "FOREHAND", "CROSSCOURT", model.OutcomeContinue),
			shot(2, "BACKHAND", "CROSSCOURT", model.OutcomeForcedError)),
	}
}

func testParams() Params {
	p := DefaultParams()
	p.MinN = 1
	p.DescriptiveMinN = 1
	p.ComboMinN = 1
	return p
}

// ---- Attribution ----

func TestPlayerShots_Attribution(t *testing.T) {
	pts := fixture()

	got := pts[0].PlayerShots() // serving: indices 0 and 2
	if len(got) != 2 || got[0].Number != 0 || got[1].Number != 2 {
		t.Errorf("serving point: got shots %+v, want indices 0 and 2", got)
	}
	got = pts[1].PlayerShots() // receiving: index 1
	if len(got) != 1 || got[0].Number != 1 {
		t.Errorf("receiving point: got shots %+v, want index 1", got)
	}

	// The same point seen from player 2 flips the attribution.
	p := pts[0]
	p.PlayerNum = 2
	got = p.PlayerShots()
	if len(got) != 1 || got[0].Number != 1 {
		t.Errorf("player 2 view: got shots %+v, want index 1", got)
	}
}

// ---- Baseline ----

func TestBaseline_Modes(t *testing.T) {
	pts := fixture()
	pts = append(pts, point(5, 0, serve("WIDE", model.OutcomeContinue))) // winner unknown
	sides := model.DefaultSideSets()

	if got := Baseline(pts, model.Filter{}, sides, BaselineAll); !approx(got, 0.75) {
		t.Errorf("all-points baseline = %v, want 0.75", got)
	}
	if got := Baseline(pts, model.Filter{}, sides, BaselineServe); !approx(got, 1.0) {
		t.Errorf("serve baseline = %v, want 1.0", got)
	}
	if got := Baseline(nil, model.Filter{}, sides, BaselineAll); got != 0 {
		t.Errorf("empty baseline = %v, want 0", got)
	}
}

func TestBaseline_FiltersCompose(t *testing.T) {
	mk := func(num, winner int, surface, score string) model.PlayerPoint {
		p := point(num, winner)
		p.Surface = surface
		p.GameScore = score
		return p
	}
	pts := []model.PlayerPoint{
		mk(1, 1, "Hard", "0-0"),   // hard, deuce: won
		mk(2, 2, "Hard", "40-0"),  // ad side only
		mk(3, 2, "Clay", "0-0"),   // wrong surface
		mk(4, 2, "Hard", "15-30"), // hard, deuce: lost
	}
	f := model.Filter{Surface: "Hard", Side: model.SideDeuce}
	if got := Baseline(pts, f, model.DefaultSideSets(), BaselineAll); !approx(got, 0.5) {
		t.Errorf("filtered baseline = %v, want 0.5", got)
	}

	late := model.Filter{DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if got := Baseline(pts, late, model.DefaultSideSets(), BaselineAll); got != 0 {
		t.Errorf("baseline with no matching dates = %v, want 0", got)
	}
}

func TestNewQuery_BaselineComputedOnce(t *testing.T) {
	q := NewQuery("A", fixture(), model.Filter{}, testParams())
	rows := q.Patterns(1)
	for _, r := range rows {
		if !approx(r.AdjustedEffectiveness, r.WinnerRate-q.Baseline) {
			t.Errorf("%s: adjusted %v != rate %v - baseline %v", r.ShotType, r.AdjustedEffectiveness, r.WinnerRate, q.Baseline)
		}
	}
}

// ---- Descriptive model ----

func TestDescribe_ShotTypes(t *testing.T) {
	q := NewQuery("A", fixture(), model.Filter{}, testParams())
	rows := q.PatternsDescriptive(1)
	if len(rows) != 3 {
		t.Fatalf("expected 3 shot types, got %d: %+v", len(rows), rows)
	}

	// total desc, then label asc
	order := []string{"FOREHAND", "SERVE", "BACKHAND"}
	for i, want := range order {
		if rows[i].ShotType != want {
			t.Errorf("row %d = %s, want %s", i, rows[i].ShotType, want)
		}
	}

	fh := rows[0]
	if fh.Total != 2 || fh.Winners != 1 || fh.Continues != 1 {
		t.Errorf("forehand counts: %+v", fh)
	}
	if !approx(fh.Effectiveness, 0.5) || !approx(fh.WinnerRate, 0.5) || fh.ErrorRate != 0 {
		t.Errorf("forehand rates: eff=%v winner=%v error=%v", fh.Effectiveness, fh.WinnerRate, fh.ErrorRate)
	}
	if fh.WinnerCI != stats.Wilson(1, 2) {
		t.Errorf("forehand CI = %+v, want %+v", fh.WinnerCI, stats.Wilson(1, 2))
	}
	if fh.Confidence != stats.TierLow {
		t.Errorf("forehand confidence = %s, want low", fh.Confidence)
	}

	bh := rows[2]
	if bh.UnforcedErrors != 1 || !approx(bh.Effectiveness, -1) {
		t.Errorf("backhand: %+v", bh)
	}
}

func TestDescribe_MinNDrops(t *testing.T) {
	q := NewQuery("A", fixture(), model.Filter{}, testParams())
	rows := q.PatternsDescriptive(2)
	for _, r := range rows {
		if r.Total < 2 {
			t.Errorf("row %s with total %d survived minN 2", r.ShotType, r.Total)
		}
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows at minN 2, got %d", len(rows))
	}
}

func TestShotTypes_SkipsUnknown(t *testing.T) {
	pts := []model.PlayerPoint{
		point(2, 1,
			serve("T", model.OutcomeContinue),
			shot(1, model.UnknownShotType, "CROSSCOURT", model.OutcomeWinner)),
		point(4, 1,
			serve("T", model.OutcomeContinue),
			shot(1, "", "CROSSCOURT", model.OutcomeWinner)),
	}
	q := NewQuery("A", pts, model.Filter{}, testParams())
	b := q.ShotTypes()
	if b.Len() != 0 {
		t.Errorf("expected no buckets, got %d", b.Len())
	}
	if b.Skipped() != 2 {
		t.Errorf("expected 2 skipped shots, got %d", b.Skipped())
	}
}

// ---- Adjusted model ----

func TestAdjust_ShotTypes(t *testing.T) {
	q := NewQuery("A", fixture(), model.Filter{}, testParams())
	if !approx(q.Baseline, 0.75) {
		t.Fatalf("baseline = %v, want 0.75", q.Baseline)
	}
	byType := map[string]AdjustedStat{}
	for _, r := range q.Patterns(1) {
		byType[r.ShotType] = r
	}

	fh := byType["FOREHAND"]
	if fh.Total != 2 || fh.PointsWon != 2 || !approx(fh.AdjustedEffectiveness, 0.25) {
		t.Errorf("forehand: %+v", fh)
	}
	bh := byType["BACKHAND"]
	if bh.Total != 1 || bh.PointsWon != 0 || !approx(bh.AdjustedEffectiveness, -0.75) {
		t.Errorf("backhand: %+v", bh)
	}
}

func TestServePlusOne(t *testing.T) {
	q := NewQuery("A", fixture(), model.Filter{}, testParams())
	rows := q.ServePlusOne(1)
	if len(rows) != 1 {
		t.Fatalf("expected 1 serve+1 row, got %+v", rows)
	}
	r := rows[0]
	if r.ServeDir != "WIDE" || r.ResponseType != "FOREHAND" {
		t.Errorf("unexpected key %+v", r.PatternKey)
	}
	if r.Label() != "WIDE_FOREHAND" {
		t.Errorf("label = %q", r.Label())
	}
	// Measured against the serve baseline (1.0), not the overall one.
	if !approx(r.AdjustedEffectiveness, 0) {
		t.Errorf("adjusted = %v, want 0", r.AdjustedEffectiveness)
	}
}

func TestServe(t *testing.T) {
	q := NewQuery("A", fixture(), model.Filter{}, testParams())
	rows := q.Serve()
	if len(rows) != 2 {
		t.Fatalf("expected 2 serve directions, got %+v", rows)
	}
	if rows[0].Direction != "T" || rows[1].Direction != "WIDE" {
		t.Errorf("order: %s, %s", rows[0].Direction, rows[1].Direction)
	}
	tRow := rows[0]
	if tRow.Winners != 1 || !approx(tRow.WinnerRate, 1) || !approx(tRow.PointWinRate, 1) {
		t.Errorf("T serve: %+v", tRow)
	}
	if rows[1].InPlay != 1 || rows[1].Winners != 0 {
		t.Errorf("WIDE serve: %+v", rows[1])
	}
}

// ---- Compare and insights ----

// resultFixture gives three forehands in won matches (two winners) and one
// forehand error in a lost match.
func resultFixture() []model.PlayerPoint {
	won := []model.PlayerPoint{
		point(2, 1, serve("T", model.OutcomeContinue), shot(1, "FOREHAND", "CROSSCOURT", model.OutcomeWinner)),
		point(4, 1, serve("T", model.OutcomeContinue), shot(1, "FOREHAND", "CROSSCOURT", model.OutcomeWinner)),
		point(6, 2, serve("T", model.OutcomeContinue), shot(1, "FOREHAND", "CROSSCOURT", model.OutcomeContinue)),
	}
	lost := point(8, 2, serve("T", model.OutcomeContinue), shot(1, "FOREHAND", "CROSSCOURT", model.OutcomeUnforcedError))
	lost.MatchID = "m2"
	lost.MatchWon = false
	return append(won, lost)
}

func TestCompare_MinNPerSide(t *testing.T) {
	q := NewQuery("A", resultFixture(), model.Filter{}, testParams())
	c := q.Compare(2)
	if len(c.Wins) != 1 || c.Wins[0].Total != 3 {
		t.Errorf("wins: %+v", c.Wins)
	}
	if len(c.Losses) != 0 {
		t.Errorf("losses should be empty at minN 2: %+v", c.Losses)
	}

	c = q.Compare(1)
	if len(c.Losses) != 1 || !approx(c.Losses[0].Effectiveness, -1) {
		t.Errorf("losses at minN 1: %+v", c.Losses)
	}
}

func TestTrends(t *testing.T) {
	p := testParams()
	p.InsightMinN = 3
	q := NewQuery("A", resultFixture(), model.Filter{}, p)
	got := q.Trends()
	if len(got) != 1 {
		t.Fatalf("expected 1 trend, got %+v", got)
	}
	if got[0].Type != InsightStrength || got[0].Title != "Forehand is a key weapon in wins" {
		t.Errorf("unexpected trend: %+v", got[0])
	}

	p.InsightMinN = 4 // neither side has 4 samples
	q = NewQuery("A", resultFixture(), model.Filter{}, p)
	if got := q.Trends(); len(got) != 0 {
		t.Errorf("expected no trends below evidence floor, got %+v", got)
	}
}

func TestHighlights(t *testing.T) {
	rows := []AdjustedStat{
		{PatternKey: PatternKey{ShotType: "FOREHAND"}, Total: 40, AdjustedEffectiveness: 0.02},
		{PatternKey: PatternKey{ShotType: "BACKHAND_SLICE"}, Total: 30, AdjustedEffectiveness: -0.12},
		{PatternKey: PatternKey{ShotType: "FOREHAND_VOLLEY"}, Total: 20, AdjustedEffectiveness: 0.09},
		{PatternKey: PatternKey{ShotType: "LOB"}, Total: 15, AdjustedEffectiveness: 0.01},
	}
	got := Highlights(rows, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 highlights, got %d", len(got))
	}
	want := []string{"Weakness: Backhand Slice", "Strength: Forehand Volley", "Strength: Forehand"}
	for i, w := range want {
		if got[i].Title != w {
			t.Errorf("highlight %d = %q, want %q", i, got[i].Title, w)
		}
	}
}

// ---- Determinism ----

func TestAnalyze_Idempotent(t *testing.T) {
	pts := append(fixture(), resultFixture()...)
	p := testParams()

	first, err := json.Marshal(Analyze("A", pts, model.Filter{}, p))
	if err != nil {
		t.Fatal(err)
	}

	shuffled := append([]model.PlayerPoint(nil), pts...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second, err := json.Marshal(Analyze("A", shuffled, model.Filter{}, p))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("output differs between runs:\n%s\n%s", first, second)
	}
}
