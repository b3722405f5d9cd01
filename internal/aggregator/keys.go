package aggregator

import "strings"

// PatternKey is the flattened, JSON-facing form of a bucket key. Only the
// fields relevant to the pattern family are set.
type PatternKey struct {
	ShotType     string `json:"shotType,omitempty"`
	Direction    string `json:"direction,omitempty"`
	ServeDir     string `json:"serveDir,omitempty"`
	ResponseType string `json:"responseType,omitempty"`
}

// Label joins the set fields with "_" in serve, shot, direction, response order.
// It is the string the radar taxonomy classifies.
func (k PatternKey) Label() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{k.ServeDir, k.ShotType, k.Direction, k.ResponseType} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "_")
}

// Key is implemented by the typed bucket keys of each pattern family.
type Key interface {
	comparable
	Pattern() PatternKey
}

// ShotTypeKey groups shots by stroke type.
type ShotTypeKey struct {
	ShotType string
}

func (k ShotTypeKey) Pattern() PatternKey { return PatternKey{ShotType: k.ShotType} }

// ShotDirectionKey groups shots by stroke type and direction.
type ShotDirectionKey struct {
	ShotType  string
	Direction string
}

func (k ShotDirectionKey) Pattern() PatternKey {
	return PatternKey{ShotType: k.ShotType, Direction: k.Direction}
}

// ServeResponseKey pairs a serve direction with the type of the shot that follows it.
type ServeResponseKey struct {
	ServeDirection string
	ResponseType   string
}

func (k ServeResponseKey) Pattern() PatternKey {
	return PatternKey{ServeDir: k.ServeDirection, ResponseType: k.ResponseType}
}

// ServeDirectionKey groups serves by direction.
type ServeDirectionKey struct {
	ServeDirection string
}

func (k ServeDirectionKey) Pattern() PatternKey { return PatternKey{ServeDir: k.ServeDirection} }
