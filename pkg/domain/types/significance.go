package types

import "fmt"

// Significance says how an event type weighs on memory importance and fade
type Significance string

const (
	// SignificanceDecisive marks outcomes such as victories and defeats
	SignificanceDecisive Significance = "decisive"
	// SignificanceBreakthrough marks breakthroughs and resolved conflicts
	SignificanceBreakthrough Significance = "breakthrough"
	// SignificanceConflict marks arguments and open conflicts
	SignificanceConflict Significance = "conflict"
	SignificanceRoutine  Significance = "routine"
)

// IsValid checks if the significance is valid
func (s Significance) IsValid() bool {
	switch s {
	case SignificanceDecisive,
		SignificanceBreakthrough,
		SignificanceConflict,
		SignificanceRoutine:
		return true
	default:
		return false
	}
}

// ImportanceBonus is added on top of the severity bonus
func (s Significance) ImportanceBonus() int {
	switch s {
	case SignificanceDecisive:
		return 2
	case SignificanceBreakthrough:
		return 1
	default:
		return 0
	}
}

// DecayRate returns how fast a memory of this significance fades. Higher
// fades faster; the value is a ranking weight, not a timer.
func (s Significance) DecayRate() float64 {
	switch s {
	case SignificanceDecisive:
		return 0.1
	case SignificanceBreakthrough:
		return 0.2
	case SignificanceConflict:
		return 0.3
	default:
		return 0.5
	}
}

// String returns the string representation of the significance
func (s Significance) String() string {
	return string(s)
}

// ParseSignificance parses a string into a Significance
func ParseSignificance(s string) (Significance, error) {
	v := Significance(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid significance: %s", s)
	}
	return v, nil
}
