package aggregator

import (
	"sort"

	"github.com/pable/go-tennis-metrics/internal/model"
)

// Bucket accumulates the shots that share a key. The outcome counters feed the
// descriptive model; Decided and PointsWon feed the baseline-adjusted model.
type Bucket struct {
	Total          int // shots with a recognised outcome
	Winners        int
	UnforcedErrors int
	ForcedErrors   int
	Continues      int

	Decided   int // shots in points whose winner is known
	PointsWon int
}

// Errors returns unforced plus forced errors.
func (b Bucket) Errors() int { return b.UnforcedErrors + b.ForcedErrors }

func (b *Bucket) add(s model.Shot, p model.PlayerPoint) {
	switch s.Outcome {
	case model.OutcomeWinner:
		b.Winners++
		b.Total++
	case model.OutcomeUnforcedError:
		b.UnforcedErrors++
		b.Total++
	case model.OutcomeForcedError:
		b.ForcedErrors++
		b.Total++
	case model.OutcomeContinue:
		b.Continues++
		b.Total++
	}
	if p.HasWinner() {
		b.Decided++
		if p.Won() {
			b.PointsWon++
		}
	}
}

// Buckets maps typed keys to their accumulators.
type Buckets[K Key] struct {
	m       map[K]*Bucket
	skipped int
}

// NewBuckets returns an empty set of buckets.
func NewBuckets[K Key]() *Buckets[K] {
	return &Buckets[K]{m: make(map[K]*Bucket)}
}

// Add records shot s of point p under key k.
func (b *Buckets[K]) Add(k K, s model.Shot, p model.PlayerPoint) {
	acc, ok := b.m[k]
	if !ok {
		acc = &Bucket{}
		b.m[k] = acc
	}
	acc.add(s, p)
}

// Skip counts a row that could not be keyed.
func (b *Buckets[K]) Skip() { b.skipped++ }

// Skipped returns the number of rows excluded as malformed.
func (b *Buckets[K]) Skipped() int { return b.skipped }

// Len returns the number of distinct keys.
func (b *Buckets[K]) Len() int { return len(b.m) }

// Get returns the bucket for k.
func (b *Buckets[K]) Get(k K) (Bucket, bool) {
	acc, ok := b.m[k]
	if !ok {
		return Bucket{}, false
	}
	return *acc, true
}

// Keys returns every key ordered by label, for deterministic iteration.
func (b *Buckets[K]) Keys() []K {
	keys := make([]K, 0, len(b.m))
	for k := range b.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Pattern().Label() < keys[j].Pattern().Label()
	})
	return keys
}
