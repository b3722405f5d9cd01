package radar

import "strings"

// IsDefensive reports whether a pattern label names a slice or a lob.
func IsDefensive(label string) bool {
	u := strings.ToUpper(label)
	return strings.Contains(u, "SLICE") || strings.Contains(u, "LOB")
}

// IsFinishing reports whether a pattern label names a net or put-away shot.
func IsFinishing(label string) bool {
	u := strings.ToUpper(label)
	return strings.Contains(u, "VOLLEY") || strings.Contains(u, "SMASH") || strings.Contains(u, "DROP_SHOT")
}

// IsTouch reports whether a pattern label names a feel shot.
func IsTouch(label string) bool {
	u := strings.ToUpper(label)
	return strings.Contains(u, "DROP_SHOT") || strings.Contains(u, "SLICE") || strings.Contains(u, "TOUCH")
}

// Direction is a coarse court direction.
type Direction string

const (
	DirNone   Direction = ""
	DirLeft   Direction = "LEFT"
	DirRight  Direction = "RIGHT"
	DirCenter Direction = "CENTER"
)

// DirectionTag classifies a direction label. LEFT wins over RIGHT, which wins
// over CENTER. CENTER matches CENTER, BODY, or a standalone T token
// (as in "T" or "SERVE_T").
func DirectionTag(label string) Direction {
	u := strings.ToUpper(label)
	switch {
	case strings.Contains(u, "LEFT"):
		return DirLeft
	case strings.Contains(u, "RIGHT"):
		return DirRight
	case strings.Contains(u, "CENTER"), strings.Contains(u, "BODY"):
		return DirCenter
	}
	for _, tok := range strings.Split(u, "_") {
		if tok == "T" {
			return DirCenter
		}
	}
	return DirNone
}

var coreShots = map[string]bool{
	"FOREHAND":        true,
	"BACKHAND":        true,
	"FOREHAND_VOLLEY": true,
	"BACKHAND_VOLLEY": true,
	"OVERHEAD":        true,
	"DROP_SHOT":       true,
}

// IsCoreShot reports whether a shot type belongs to the fixed set used for
// exploitability.
func IsCoreShot(shotType string) bool {
	return coreShots[strings.ToUpper(shotType)]
}
