package model

import (
	"slices"
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// Memory is one character's recollection of one event. Content and
// importance never change after creation; only recall bookkeeping does.
type Memory struct {
	ID                     MemoryID
	CharacterID            CharacterID
	EventID                EventID
	MemoryType             types.MemoryType
	Content                string
	EmotionalIntensity     int
	EmotionalValence       types.Valence
	Importance             int
	CreatedAt              time.Time
	LastRecalled           time.Time
	RecallCount            int
	AssociatedCharacterIDs []CharacterID
	Tags                   []string
	DecayRate              float64
	Financial              *FinancialDetail
}

// FinancialDecision is the kind of money decision a financial memory records
type FinancialDecision string

const (
	FinancialDecisionInvestment   FinancialDecision = "investment"
	FinancialDecisionPurchase     FinancialDecision = "purchase"
	FinancialDecisionAdvice       FinancialDecision = "advice"
	FinancialDecisionCrisis       FinancialDecision = "crisis"
	FinancialDecisionSpiral       FinancialDecision = "spiral"
	FinancialDecisionBreakthrough FinancialDecision = "breakthrough"
)

// FinancialOutcome is how a financial decision turned out
type FinancialOutcome string

const (
	FinancialOutcomeSuccess FinancialOutcome = "success"
	FinancialOutcomeFailure FinancialOutcome = "failure"
	FinancialOutcomePending FinancialOutcome = "pending"
)

// FinancialDetail is attached to memories of significant financial events.
// The Financial* weights are advisory and never replace the memory's own
// importance, intensity, valence or decay rate.
type FinancialDetail struct {
	DecisionType        FinancialDecision
	AmountInvolved      float64
	Outcome             FinancialOutcome
	StressImpact        float64
	TrustImpact         float64
	FinancialImportance int
	FinancialIntensity  int
	FinancialValence    types.Valence
	FinancialDecayRate  float64
}

// Recall records one more recollection at t
func (m *Memory) Recall(t time.Time) {
	m.RecallCount++
	m.LastRecalled = t
}

// Copy returns a deep copy
func (m *Memory) Copy() *Memory {
	c := *m
	c.AssociatedCharacterIDs = slices.Clone(m.AssociatedCharacterIDs)
	c.Tags = slices.Clone(m.Tags)
	if m.Financial != nil {
		f := *m.Financial
		c.Financial = &f
	}
	return &c
}

// MemoryFilter narrows memory queries. Zero values do not filter.
type MemoryFilter struct {
	MemoryType    types.MemoryType
	MinImportance int
	Limit         int
}

// Match reports whether m passes the type and importance criteria
func (f *MemoryFilter) Match(m *Memory) bool {
	if f == nil {
		return true
	}
	if f.MemoryType != "" && m.MemoryType != f.MemoryType {
		return false
	}
	if f.MinImportance > 0 && m.Importance < f.MinImportance {
		return false
	}
	return true
}

// SortMemories orders memories by importance descending, newest first on
// ties, then by id for a total order.
func SortMemories(memories []*Memory) {
	slices.SortStableFunc(memories, func(a, b *Memory) int {
		if a.Importance != b.Importance {
			return b.Importance - a.Importance
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}
