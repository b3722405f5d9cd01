package stats

// DefaultShrinkK is the pseudo-count used to damp low-N effectiveness values.
const DefaultShrinkK = 50.0

// Evidence is one pattern's contribution to a composite: an effectiveness value
// (nil when absent) observed over N samples.
type Evidence struct {
	Eff *float64
	N   int
}

// Shrink scales eff by n/(n+k). A non-positive n yields 0.
func Shrink(eff float64, n int, k float64) float64 {
	if n <= 0 {
		return 0
	}
	return eff * float64(n) / (float64(n) + k)
}

// ShrunkComposite returns the N-weighted mean of shrunk effectiveness values,
// Σ(shrunk·n)/Σn. Items without an effectiveness value or with n <= 0 are left
// out of the denominator. The result is nil when Σn is below minEvidence.
func ShrunkComposite(items []Evidence, k float64, minEvidence int) *float64 {
	var sumW float64
	var sumN int
	for _, it := range items {
		if it.Eff == nil || it.N <= 0 {
			continue
		}
		sumW += Shrink(*it.Eff, it.N, k) * float64(it.N)
		sumN += it.N
	}
	if sumN == 0 || sumN < minEvidence {
		return nil
	}
	v := sumW / float64(sumN)
	return &v
}

// Float returns a pointer to v, for building Evidence literals.
func Float(v float64) *float64 { return &v }
