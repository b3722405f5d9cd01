package radar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"strings"

	"github.com/pable/go-tennis-metrics/internal/jsonfile"
	"github.com/pable/go-tennis-metrics/internal/stats"
)

// Distributions is the tour reference population: for each axis, the raw
// scores of every player with enough evidence. A value is immutable once built
// and safe for concurrent reads.
type Distributions struct {
	axes map[string][]float64
}

// NewDistributions copies m into a new snapshot. NaN and infinite values are dropped.
func NewDistributions(m map[string][]float64) *Distributions {
	d := &Distributions{axes: make(map[string][]float64, len(m))}
	for k, vals := range m {
		clean := make([]float64, 0, len(vals))
		for _, v := range vals {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				clean = append(clean, v)
			}
		}
		d.axes[k] = clean
	}
	return d
}

// LoadDistributions reads a snapshot written by Save. Null entries in the
// arrays are ignored.
func LoadDistributions(path string) (*Distributions, error) {
	var raw map[string][]*float64
	if err := jsonfile.Read(path, &raw); err != nil {
		return nil, fmt.Errorf("load distributions: %w", err)
	}
	m := make(map[string][]float64, len(raw))
	for k, vals := range raw {
		for _, v := range vals {
			if v != nil {
				m[k] = append(m[k], *v)
			}
		}
		if _, ok := m[k]; !ok {
			m[k] = nil
		}
	}
	return NewDistributions(m), nil
}

// ComparePath returns where the compare card population is stored next to the
// tour snapshot at path: "radar_distributions.json.zst" becomes
// "radar_distributions.compare.json.zst".
func ComparePath(path string) string {
	base, ext := path, ""
	if jsonfile.Compressed(base) {
		base, ext = strings.TrimSuffix(base, jsonfile.Ext), jsonfile.Ext
	}
	if strings.HasSuffix(base, ".json") {
		base, ext = strings.TrimSuffix(base, ".json"), ".json"+ext
	}
	return base + ".compare" + ext
}

// LoadSnapshots reads the tour snapshot at path and the compare population
// stored next to it. A missing compare file leaves compare nil.
func LoadSnapshots(path string) (tour, compare *Distributions, err error) {
	if tour, err = LoadDistributions(path); err != nil {
		return nil, nil, err
	}
	compare, err = LoadDistributions(ComparePath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return tour, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return tour, compare, nil
}

// Save writes the snapshot as {axis: [numbers]}, zstd-compressed for ".zst" paths.
func (d *Distributions) Save(path string) error {
	if err := jsonfile.Write(path, d); err != nil {
		return fmt.Errorf("save distributions: %w", err)
	}
	return nil
}

// MarshalJSON encodes the snapshot as an axis → values object.
func (d *Distributions) MarshalJSON() ([]byte, error) {
	out := make(map[string][]float64, len(d.axes))
	for k, v := range d.axes {
		if v == nil {
			v = []float64{}
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// Keys returns the axis keys present in the snapshot, sorted.
func (d *Distributions) Keys() []string {
	keys := make([]string, 0, len(d.axes))
	for k := range d.axes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the population size for an axis.
func (d *Distributions) Len(axis string) int {
	if d == nil {
		return 0
	}
	return len(d.axes[axis])
}

// Values returns a copy of an axis population.
func (d *Distributions) Values(axis string) []float64 {
	if d == nil {
		return nil
	}
	return append([]float64(nil), d.axes[axis]...)
}

// Percentile ranks raw against an axis population. It returns nil when raw is
// nil or when the axis has no population, so a missing comparison is never
// reported as a neutral score.
func (d *Distributions) Percentile(a Axis, raw *float64) *int {
	if raw == nil || d.Len(a.Key) == 0 {
		return nil
	}
	p := stats.PercentileOf(*raw, d.axes[a.Key], a.Invert)
	return &p
}
