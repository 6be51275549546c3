package usecase

import "github.com/secmon-lab/chronicle/pkg/domain/types"

// Derivation rules exported for testing
var (
	DeriveMemories      = deriveMemories
	MemoryContent       = memoryContent
	MemoryImportance    = memoryImportance
	FinancialImportance = financialImportance
	FinancialIntensity  = financialIntensity
	FinancialValence    = financialValence
	FinancialDecisionOf = financialDecisionOf
	FinancialOutcome    = financialOutcome
	FinancialDecayRate  = financialDecayRate
	StressSeverity      = stressSeverity
)

// SubscriberCount is exported for testing
func (b *EventBus) SubscriberCount(eventType types.EventType) int {
	return b.router.count(eventType)
}
