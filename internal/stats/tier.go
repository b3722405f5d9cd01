package stats

// Tier is a categorical reliability label for a sample size.
type Tier string

const (
	TierHigh         Tier = "high"
	TierLow          Tier = "low"
	TierInsufficient Tier = "insufficient"
)

// Default sample-size cutoffs.
const (
	DefaultHighN = 30
	DefaultMinN  = 15
)

// ClassifyTier labels a sample of size total using the default high cutoff.
func ClassifyTier(total, minN int) Tier {
	return Tiers{High: DefaultHighN}.Classify(total, minN)
}

// Tiers carries the configurable high-confidence cutoff.
type Tiers struct {
	High int
}

// Classify returns high when total reaches the high cutoff, low when it reaches
// minN, and insufficient otherwise.
func (t Tiers) Classify(total, minN int) Tier {
	high := t.High
	if high <= 0 {
		high = DefaultHighN
	}
	switch {
	case total >= high:
		return TierHigh
	case total >= minN:
		return TierLow
	default:
		return TierInsufficient
	}
}
