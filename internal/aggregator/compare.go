package aggregator

import "github.com/pable/go-tennis-metrics/internal/model"

// Comparison splits descriptive shot-type rows by match result.
type Comparison struct {
	Wins   []DescriptiveStat `json:"wins"`
	Losses []DescriptiveStat `json:"losses"`
}

// resultBuckets buckets the player's shot types separately for won and lost matches.
func (q *Query) resultBuckets() (wins, losses *Buckets[ShotTypeKey]) {
	wins, losses = NewBuckets[ShotTypeKey](), NewBuckets[ShotTypeKey]()
	for _, p := range q.Points {
		target := losses
		if p.MatchWon {
			target = wins
		}
		for _, s := range p.PlayerShots() {
			if model.IsUnknown(s.ShotType) {
				target.Skip()
				continue
			}
			target.Add(ShotTypeKey{ShotType: s.ShotType}, s, p)
		}
	}
	return wins, losses
}

// Compare returns descriptive shot-type rows for won and lost matches. The
// minimum applies to each side on its own, so a shot can appear on one side only.
func (q *Query) Compare(minN int) Comparison {
	wins, losses := q.resultBuckets()
	f := q.Params.Finalizer()
	return Comparison{
		Wins:   Describe(wins, minN, f),
		Losses: Describe(losses, minN, f),
	}
}
