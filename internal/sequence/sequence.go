// Package sequence mines multi-shot patterns from the ordered strokes of each
// point and ranks them by how much more (or less) often the player wins the
// points they appear in.
package sequence

import (
	"math"
	"sort"
	"strings"

	"github.com/pable/go-tennis-metrics/internal/model"
)

// MaxLen is the longest n-gram a Gram can hold.
const MaxLen = 4

// Params controls extraction and ranking.
type Params struct {
	MinLen int
	MaxLen int
	MinN   int // n-grams seen fewer times are dropped
	Top    int // length of each ranked list
}

// DefaultParams mines 2- to 4-grams seen at least 15 times and keeps 15 of each kind.
func DefaultParams() Params {
	return Params{MinLen: 2, MaxLen: MaxLen, MinN: 15, Top: 15}
}

func (p Params) bounds() (lo, hi int) {
	lo, hi = p.MinLen, p.MaxLen
	if lo < 1 {
		lo = 1
	}
	if hi <= 0 || hi > MaxLen {
		hi = MaxLen
	}
	return lo, hi
}

// Token renders a shot as a sequence token. The serve is its direction; other
// shots are type_direction, followed by _depth when the depth is known and
// _outcome when the shot ended the point. Shots missing a type or direction
// yield "".
func Token(s model.Shot) string {
	if s.IsServe() {
		return s.ServeDirection
	}
	if s.ShotType == "" || s.Direction == "" {
		return ""
	}
	tok := s.ShotType + "_" + s.Direction
	if s.Depth != "" && s.Depth != model.UnknownDepth {
		tok += "_" + s.Depth
	}
	if s.Outcome.Terminal() {
		tok += "_" + string(s.Outcome)
	}
	return tok
}

// Tokenize returns the tokens of every shot of a point, both players included,
// in stroke order. Empty tokens and tokens carrying an UNKNOWN sentinel are dropped.
func Tokenize(shots []model.Shot) []string {
	ordered := append([]model.Shot(nil), shots...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	out := make([]string, 0, len(ordered))
	for _, s := range ordered {
		tok := Token(s)
		if model.IsUnknown(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Gram is an ordered token tuple of up to MaxLen tokens. It is comparable and
// serves as the aggregation key.
type Gram struct {
	n      int
	tokens [MaxLen]string
}

// NewGram builds a Gram from up to MaxLen tokens.
func NewGram(tokens ...string) Gram {
	var g Gram
	g.n = copy(g.tokens[:], tokens)
	return g
}

// Len returns the number of tokens.
func (g Gram) Len() int { return g.n }

// Tokens returns a copy of the tokens.
func (g Gram) Tokens() []string { return append([]string(nil), g.tokens[:g.n]...) }

// String joins the tokens with " → ".
func (g Gram) String() string { return strings.Join(g.tokens[:g.n], " → ") }

// NGrams returns every contiguous window of length minLen through maxLen.
// Overlapping windows are all kept: a list of length L yields max(0, L-n+1)
// grams for each n.
func NGrams(tokens []string, minLen, maxLen int) []Gram {
	var out []Gram
	for n := minLen; n <= maxLen && n <= MaxLen; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, NewGram(tokens[i:i+n]...))
		}
	}
	return out
}

// NGram is a ranked sequence.
type NGram struct {
	Sequence   []string `json:"sequence"`
	Total      int      `json:"total"`
	Won        int      `json:"-"`
	WinnerRate float64  `json:"winnerRate"`
	Uplift     float64  `json:"uplift"`
	RankScore  float64  `json:"rankScore"`
}

// Result holds the best and worst sequences.
type Result struct {
	Winning []NGram `json:"winning"`
	Losing  []NGram `json:"losing"`
}

type counts struct{ total, won int }

// Miner accumulates n-gram counts across points. A Miner is not safe for
// concurrent use; each query owns its own.
type Miner struct {
	params  Params
	grams   map[Gram]*counts
	skipped int
}

// NewMiner returns an empty miner.
func NewMiner(p Params) *Miner {
	return &Miner{params: p, grams: make(map[Gram]*counts)}
}

// Add counts every n-gram of one point's tokens.
func (m *Miner) Add(tokens []string, won bool) {
	lo, hi := m.params.bounds()
	for _, g := range NGrams(tokens, lo, hi) {
		c, ok := m.grams[g]
		if !ok {
			c = &counts{}
			m.grams[g] = c
		}
		c.total++
		if won {
			c.won++
		}
	}
}

// Skipped returns the number of points left out because their winner was unknown.
func (m *Miner) Skipped() int { return m.skipped }

// Len returns the number of distinct n-grams seen.
func (m *Miner) Len() int { return len(m.grams) }

// Result scores every n-gram against baseline and returns the ranked lists.
// Winning sequences have positive uplift and are ordered by rankScore
// descending; losing ones have negative uplift, most negative first. Ties break
// on total descending, then on the token sequence.
func (m *Miner) Result(baseline float64) Result {
	type scored struct {
		NGram
		key string
	}
	var all []scored
	for g, c := range m.grams {
		if c.total == 0 || c.total < m.params.MinN {
			continue
		}
		rate := float64(c.won) / float64(c.total)
		uplift := rate - baseline
		all = append(all, scored{
			NGram: NGram{
				Sequence:   g.Tokens(),
				Total:      c.total,
				Won:        c.won,
				WinnerRate: rate,
				Uplift:     uplift,
				RankScore:  uplift * math.Log(float64(c.total)),
			},
			key: strings.Join(g.Tokens(), "|"),
		})
	}

	tie := func(a, b scored) bool {
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.key < b.key
	}
	rank := func(rows []scored, desc bool) {
		sort.Slice(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.RankScore != b.RankScore {
				return (a.RankScore > b.RankScore) == desc
			}
			return tie(a, b)
		})
	}

	var winning, losing []scored
	for _, s := range all {
		switch {
		case s.Uplift > 0:
			winning = append(winning, s)
		case s.Uplift < 0:
			losing = append(losing, s)
		}
	}
	rank(winning, true)
	rank(losing, false)

	top := m.params.Top
	if top <= 0 {
		top = DefaultParams().Top
	}
	res := Result{Winning: []NGram{}, Losing: []NGram{}}
	for i := 0; i < len(winning) && i < top; i++ {
		res.Winning = append(res.Winning, winning[i].NGram)
	}
	for i := 0; i < len(losing) && i < top; i++ {
		res.Losing = append(res.Losing, losing[i].NGram)
	}
	return res
}

// Mine tokenizes each point, counts its n-grams under the player's point
// result and ranks them against baseline. Points with an unknown winner are skipped.
func Mine(points []model.PlayerPoint, baseline float64, p Params) Result {
	m := NewMiner(p)
	for _, pt := range points {
		if !pt.HasWinner() {
			m.skipped++
			continue
		}
		m.Add(Tokenize(pt.Shots), pt.Won())
	}
	return m.Result(baseline)
}
