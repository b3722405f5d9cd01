package radar

import "strings"

// Archetype names.
const (
	ArchetypeBigServer           = "Big Server"
	ArchetypeCounterpuncher      = "Counterpuncher"
	ArchetypeAllCourt            = "All-Court"
	ArchetypeAggressiveBaseliner = "Aggressive Baseliner"
	ArchetypeAllRound            = "All-Round"
)

func (p Percentiles) value(key string) int {
	if v := p[key]; v != nil {
		return *v
	}
	return 0
}

// Archetype labels a player from their percentiles. Missing axes count as 0.
func Archetype(p Percentiles) string {
	srv := p.value(AxisServe)
	srv1 := p.value(AxisServePlus1)
	def := p.value(AxisDefense)
	con := p.value(AxisConsistency)
	fh := p.value(AxisForehand)
	bh := p.value(AxisBackhand)
	vol := p.value(AxisVolleyNet)

	switch {
	case srv >= 80 && srv1 >= 65:
		return ArchetypeBigServer
	case def >= 80 && con >= 70 && srv < 60:
		return ArchetypeCounterpuncher
	case srv >= 60 && fh >= 60 && bh >= 60 && vol >= 60:
		return ArchetypeAllCourt
	case (fh >= 75 || bh >= 75) && vol < 60:
		return ArchetypeAggressiveBaseliner
	default:
		return ArchetypeAllRound
	}
}

// CardRadar is the five-point radar of the compare card.
type CardRadar struct {
	Serve       *int `json:"serve"`
	Forehand    *int `json:"forehand"`
	Backhand    *int `json:"backhand"`
	Pace        *int `json:"pace"`
	Consistency *int `json:"consistency"`
}

// Attribute is one labelled percentile bar on the card.
type Attribute struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value *int   `json:"value"`
	Note  string `json:"note,omitempty"`
}

// Card is a player's compare card.
type Card struct {
	PlayerID   string      `json:"playerId"`
	FullName   string      `json:"fullName"`
	LastName   string      `json:"lastName"`
	Archetype  string      `json:"archetype"`
	Radar      CardRadar   `json:"radar"`
	Attributes []Attribute `json:"attributes"`
}

// BuildCard assembles the compare card. When the serve axis is missing, the
// serve+1 percentile stands in for it and the attribute is marked as a proxy.
func BuildCard(playerID string, p Percentiles) Card {
	serve := p[AxisServe]
	proxy := serve == nil && p[AxisServePlus1] != nil
	if proxy {
		serve = p[AxisServePlus1]
	}

	full := strings.ReplaceAll(playerID, "_", " ")
	parts := strings.Fields(full)
	last := full
	if len(parts) > 0 {
		last = parts[len(parts)-1]
	}

	attrs := make([]Attribute, 0, len(DefaultAxisKeys))
	for _, key := range DefaultAxisKeys {
		a := knownAxes[key]
		attr := Attribute{Key: key, Label: a.Label, Value: p[key]}
		if key == AxisServe && proxy {
			attr.Note = "Proxy"
		}
		attrs = append(attrs, attr)
	}

	return Card{
		PlayerID:  playerID,
		FullName:  full,
		LastName:  last,
		Archetype: Archetype(p),
		Radar: CardRadar{
			Serve:       serve,
			Forehand:    p[AxisForehand],
			Backhand:    p[AxisBackhand],
			Pace:        p[AxisDefense],
			Consistency: p[AxisConsistency],
		},
		Attributes: attrs,
	}
}
