package model

import (
	"testing"
	"time"
)

func TestParseOutcome(t *testing.T) {
	for in, want := range map[string]Outcome{
		"WINNER":           OutcomeWinner,
		" unforced_error ": OutcomeUnforcedError,
		"Forced_Error":     OutcomeForcedError,
		"continue":         OutcomeContinue,
	} {
		got, ok := ParseOutcome(in)
		if !ok || got != want {
			t.Errorf("ParseOutcome(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, bad := range []string{"", "ACE", "LET"} {
		if _, ok := ParseOutcome(bad); ok {
			t.Errorf("ParseOutcome(%q) accepted", bad)
		}
	}
}

func TestAttribution(t *testing.T) {
	shots := []Shot{{Number: 0}, {Number: 1}, {Number: 2}, {Number: 3}}

	// Player 1 serves point 3: shots 0 and 2 are theirs.
	p := PlayerPoint{Number: 3, PlayerNum: 1, Shots: shots}
	if !p.Serving() {
		t.Fatal("player 1 should serve odd points")
	}
	if got := p.PlayerShots(); len(got) != 2 || got[0].Number != 0 || got[1].Number != 2 {
		t.Errorf("serving shots = %+v", got)
	}

	// Player 2 receives point 3: shots 1 and 3.
	p.PlayerNum = 2
	if p.Serving() {
		t.Fatal("player 2 should not serve odd points")
	}
	if got := p.PlayerShots(); len(got) != 2 || got[0].Number != 1 || got[1].Number != 3 {
		t.Errorf("receiving shots = %+v", got)
	}

	if _, ok := p.ShotAt(7); ok {
		t.Error("ShotAt beyond the rally should miss")
	}
}

func TestIsUnknown(t *testing.T) {
	for _, s := range []string{"", UnknownShotType, "unknown_direction"} {
		if !IsUnknown(s) {
			t.Errorf("IsUnknown(%q) = false", s)
		}
	}
	if IsUnknown("FOREHAND") {
		t.Error("FOREHAND reported unknown")
	}
}

func TestFilterMatches(t *testing.T) {
	sides := DefaultSideSets()
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	p := PlayerPoint{Surface: "Clay", Date: day("2020-05-01"), GameScore: "40-15"}

	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"empty", Filter{}, true},
		{"surface", Filter{Surface: "Clay"}, true},
		{"other surface", Filter{Surface: "Grass"}, false},
		{"in range", Filter{DateFrom: day("2020-01-01"), DateTo: day("2020-12-31")}, true},
		{"before range", Filter{DateFrom: day("2020-06-01")}, false},
		// 40-15 is in both side sets.
		{"deuce", Filter{Side: SideDeuce}, true},
		{"ad", Filter{Side: SideAd}, true},
		{"and", Filter{Surface: "Clay", DateTo: day("2019-12-31")}, false},
	}
	for _, c := range cases {
		if got := c.f.Matches(p, sides); got != c.want {
			t.Errorf("%s: Matches = %v, want %v", c.name, got, c.want)
		}
	}

	p.GameScore = "AD-40"
	if (Filter{Side: SideDeuce}).Matches(p, sides) {
		t.Error("AD-40 is not a deuce-side score")
	}
}

func TestParseSide(t *testing.T) {
	if s, ok := ParseSide("DEUCE"); !ok || s != SideDeuce {
		t.Errorf("ParseSide(DEUCE) = %q, %v", s, ok)
	}
	if _, ok := ParseSide("middle"); ok {
		t.Error("ParseSide accepted middle")
	}
}
