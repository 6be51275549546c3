package types

import "fmt"

// Valence is the emotional color of a memory
type Valence string

const (
	ValencePositive Valence = "positive"
	ValenceNegative Valence = "negative"
	ValenceNeutral  Valence = "neutral"
)

// AllValences returns all valid valences
func AllValences() []Valence {
	return []Valence{
		ValencePositive,
		ValenceNegative,
		ValenceNeutral,
	}
}

// IsValid checks if the valence is valid
func (v Valence) IsValid() bool {
	switch v {
	case ValencePositive,
		ValenceNegative,
		ValenceNeutral:
		return true
	default:
		return false
	}
}

// String returns the string representation of the valence
func (v Valence) String() string {
	return string(v)
}

// ParseValence parses a string into a Valence
func ParseValence(s string) (Valence, error) {
	v := Valence(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid valence: %s", s)
	}
	return v, nil
}
