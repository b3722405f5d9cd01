package radar

import "fmt"

// Axis keys. They double as the keys of the distribution snapshot.
const (
	AxisServe       = "serve"
	AxisServePlus1  = "serve_plus_1"
	AxisForehand    = "forehand"
	AxisBackhand    = "backhand"
	AxisDefense     = "defense"
	AxisVolleyNet   = "volley_net"
	AxisTouch       = "touch"
	AxisBalance     = "balance"
	AxisConsistency = "consistency"
	AxisAsymmetry   = "asymmetry"
	AxisStability   = "stability"
)

// Axis describes one radar dimension.
type Axis struct {
	Key    string `json:"key" koanf:"key"`
	Label  string `json:"label" koanf:"label"`
	Invert bool   `json:"invert" koanf:"invert"` // lower raw values rank higher
}

var knownAxes = map[string]Axis{
	AxisServe:       {AxisServe, "Serve", false},
	AxisServePlus1:  {AxisServePlus1, "Serve+1", false},
	AxisForehand:    {AxisForehand, "Forehand", false},
	AxisBackhand:    {AxisBackhand, "Backhand", false},
	AxisDefense:     {AxisDefense, "Defense", false},
	AxisVolleyNet:   {AxisVolleyNet, "Volley / Net", false},
	AxisTouch:       {AxisTouch, "Touch / Finesse", false},
	AxisBalance:     {AxisBalance, "Balance", true},
	AxisConsistency: {AxisConsistency, "Consistency", false},
	AxisAsymmetry:   {AxisAsymmetry, "Directional Asymmetry", true},
	AxisStability:   {AxisStability, "Pattern Stability", false},
}

// DefaultAxisKeys lists the nine standard axes in display order.
var DefaultAxisKeys = []string{
	AxisServe, AxisServePlus1, AxisForehand, AxisBackhand, AxisDefense,
	AxisVolleyNet, AxisTouch, AxisBalance, AxisConsistency,
}

// LookupAxis returns the definition of a known axis key.
func LookupAxis(key string) (Axis, bool) {
	a, ok := knownAxes[key]
	return a, ok
}

// AxesFor resolves keys to axis definitions, rejecting unknown keys.
func AxesFor(keys []string) ([]Axis, error) {
	out := make([]Axis, 0, len(keys))
	for _, k := range keys {
		a, ok := knownAxes[k]
		if !ok {
			return nil, fmt.Errorf("unknown radar axis %q", k)
		}
		out = append(out, a)
	}
	return out, nil
}

// DefaultAxes returns the nine standard axes.
func DefaultAxes() []Axis {
	axes, _ := AxesFor(DefaultAxisKeys)
	return axes
}
