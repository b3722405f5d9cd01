package sequence

import (
	"reflect"
	"testing"

	"github.com/pable/go-tennis-metrics/internal/model"
)

func TestNGrams_ThreeTokens(t *testing.T) {
	got := NGrams([]string{"A", "B", "C"}, 2, 4)
	want := []Gram{NewGram("A", "B"), NewGram("B", "C"), NewGram("A", "B", "C")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NGrams(A,B,C) = %v, want %v", got, want)
	}
}

func TestNGrams_Counts(t *testing.T) {
	tokens := []string{"A", "B", "C", "D", "E"}
	// 4 bigrams + 3 trigrams + 2 four-grams
	if got := len(NGrams(tokens, 2, 4)); got != 9 {
		t.Errorf("5 tokens: got %d n-grams, want 9", got)
	}
	if got := len(NGrams([]string{"A"}, 2, 4)); got != 0 {
		t.Errorf("1 token: got %d n-grams, want 0", got)
	}
}

func TestToken(t *testing.T) {
	tests := []struct {
		name string
		shot model.Shot
		want string
	}{
		{"serve", model.Shot{Number: 0, ShotType: "SERVE", ServeDirection: "WIDE", Outcome: model.OutcomeWinner}, "WIDE"},
		{"rally", model.Shot{Number: 1, ShotType: "FOREHAND", Direction: "CROSSCOURT", Outcome: model.OutcomeContinue}, "FOREHAND_CROSSCOURT"},
		{"depth", model.Shot{Number: 2, ShotType: "BACKHAND", Direction: "MIDDLE", Depth: "DEEP", Outcome: model.OutcomeContinue}, "BACKHAND_MIDDLE_DEEP"},
		{"unknown depth", model.Shot{Number: 2, ShotType: "BACKHAND", Direction: "MIDDLE", Depth: model.UnknownDepth}, "BACKHAND_MIDDLE"},
		{"winner", model.Shot{Number: 3, ShotType: "FOREHAND", Direction: "DOWN_THE_LINE", Outcome: model.OutcomeWinner}, "FOREHAND_DOWN_THE_LINE_WINNER"},
		{"forced error", model.Shot{Number: 3, ShotType: "LOB", Direction: "MIDDLE", Outcome: model.OutcomeForcedError}, "LOB_MIDDLE_FORCED_ERROR"},
		{"missing direction", model.Shot{Number: 4, ShotType: "LOB"}, ""},
	}
	for _, tt := range tests {
		if got := Token(tt.shot); got != tt.want {
			t.Errorf("%s: Token = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTokenize_DropsUnknownAndOrders(t *testing.T) {
	shots := []model.Shot{
		{Number: 2, ShotType: "BACKHAND", Direction: "CROSSCOURT"},
		{Number: 0, ShotType: "SERVE", ServeDirection: "T"},
		{Number: 1, ShotType: model.UnknownShotType, Direction: "MIDDLE"},
		{Number: 3, ShotType: "FOREHAND", Direction: model.UnknownDirection},
	}
	got := Tokenize(shots)
	want := []string{"T", "BACKHAND_CROSSCOURT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestMiner_Ranking(t *testing.T) {
	m := NewMiner(Params{MinLen: 2, MaxLen: 2, MinN: 2, Top: 15})
	// A→B wins 4 of 4, C→D wins 0 of 3, E→F wins 1 of 2, G→H seen once.
	for i := 0; i < 4; i++ {
		m.Add([]string{"A", "B"}, true)
	}
	for i := 0; i < 3; i++ {
		m.Add([]string{"C", "D"}, false)
	}
	m.Add([]string{"E", "F"}, true)
	m.Add([]string{"E", "F"}, false)
	m.Add([]string{"G", "H"}, true)

	res := m.Result(0.5)
	if len(res.Winning) != 1 || !reflect.DeepEqual(res.Winning[0].Sequence, []string{"A", "B"}) {
		t.Fatalf("winning = %+v", res.Winning)
	}
	if len(res.Losing) != 1 || !reflect.DeepEqual(res.Losing[0].Sequence, []string{"C", "D"}) {
		t.Fatalf("losing = %+v", res.Losing)
	}
	w := res.Winning[0]
	if w.Total != 4 || w.WinnerRate != 1 || w.Uplift != 0.5 {
		t.Errorf("A→B stats: %+v", w)
	}
	if w.RankScore <= 0 {
		t.Errorf("A→B rankScore should be positive, got %v", w.RankScore)
	}
	if res.Losing[0].RankScore >= 0 {
		t.Errorf("C→D rankScore should be negative, got %v", res.Losing[0].RankScore)
	}
}

func TestMiner_OrderAndTop(t *testing.T) {
	m := NewMiner(Params{MinLen: 2, MaxLen: 2, MinN: 1, Top: 2})
	add := func(a, b string, won, lost int) {
		for i := 0; i < won; i++ {
			m.Add([]string{a, b}, true)
		}
		for i := 0; i < lost; i++ {
			m.Add([]string{a, b}, false)
		}
	}
	add("A", "B", 10, 0) // uplift .5, big N
	add("C", "D", 3, 0)  // uplift .5, small N
	add("E", "F", 9, 1)  // uplift .4
	add("W", "X", 0, 10) // uplift -.5, big N
	add("Y", "Z", 0, 3)  // uplift -.5, small N

	res := m.Result(0.5)
	gotW := [][]string{res.Winning[0].Sequence, res.Winning[1].Sequence}
	if !reflect.DeepEqual(gotW, [][]string{{"A", "B"}, {"E", "F"}}) {
		t.Errorf("winning order = %v", gotW)
	}
	gotL := [][]string{res.Losing[0].Sequence, res.Losing[1].Sequence}
	if !reflect.DeepEqual(gotL, [][]string{{"W", "X"}, {"Y", "Z"}}) {
		t.Errorf("losing order = %v", gotL)
	}
}

func TestMine_SkipsUnknownWinner(t *testing.T) {
	shots := []model.Shot{
		{Number: 0, ServeDirection: "WIDE"},
		{Number: 1, ShotType: "FOREHAND", Direction: "CROSSCOURT"},
	}
	points := []model.PlayerPoint{
		{Number: 1, PlayerNum: 1, Winner: 1, Shots: shots},
		{Number: 3, PlayerNum: 1, Winner: 0, Shots: shots},
	}
	res := Mine(points, 0, Params{MinLen: 2, MaxLen: 4, MinN: 1, Top: 15})
	if len(res.Winning) != 1 || res.Winning[0].Total != 1 {
		t.Errorf("expected one n-gram from the decided point, got %+v", res.Winning)
	}
}
