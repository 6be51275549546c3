package usecase

import (
	"context"
	"math"
	"slices"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FinancialSource is the source of every event built by the financial
// helpers
const FinancialSource types.EventSource = "financial_advisory"

// Financial event types
const (
	EventEarningsReceived         types.EventType = "earnings_received"
	EventFinancialDecisionPending types.EventType = "financial_decision_pending"
	EventFinancialDecisionMade    types.EventType = "financial_decision_made"
	EventFinancialStressIncrease  types.EventType = "financial_stress_increase"
	EventFinancialStressDecrease  types.EventType = "financial_stress_decrease"
	EventFinancialCrisis          types.EventType = "financial_crisis"
	EventFinancialBreakthrough    types.EventType = "financial_breakthrough"
	EventFinancialSpiralStarted   types.EventType = "financial_spiral_started"
	EventFinancialSpiralBroken    types.EventType = "financial_spiral_broken"
	EventFinancialGoalAchieved    types.EventType = "financial_goal_achieved"
	EventLuxuryPurchase           types.EventType = "luxury_purchase"
	EventInvestmentOutcome        types.EventType = "investment_outcome"
	EventTrustGained              types.EventType = "trust_gained"
	EventTrustLost                types.EventType = "trust_lost"
	EventVictorySplurge           types.EventType = "victory_splurge"
	EventDefeatDesperation        types.EventType = "defeat_desperation"
)

// Metadata keys read by the financial memory rules
const (
	MetaAmount       = "amount"
	MetaOutcome      = "outcome"
	MetaStressChange = "stress_change"
	MetaTrustChange  = "trust_change"
)

var (
	significantFinancialEvents = []types.EventType{
		EventFinancialDecisionMade, EventFinancialCrisis, EventFinancialBreakthrough,
		EventFinancialSpiralStarted, EventFinancialSpiralBroken, EventLuxuryPurchase,
		EventInvestmentOutcome, EventTrustGained, EventTrustLost,
		EventVictorySplurge, EventDefeatDesperation,
	}
	majorFinancialEvents     = []types.EventType{EventFinancialCrisis, EventFinancialBreakthrough, EventFinancialSpiralStarted}
	notableFinancialEvents   = []types.EventType{EventLuxuryPurchase, EventInvestmentOutcome, EventTrustGained, EventTrustLost}
	impulsiveFinancialEvents = []types.EventType{EventLuxuryPurchase, EventVictorySplurge, EventDefeatDesperation}
	positiveFinancialEvents  = []types.EventType{EventFinancialBreakthrough, EventTrustGained, EventFinancialGoalAchieved, EventInvestmentOutcome}
	negativeFinancialEvents  = []types.EventType{EventFinancialCrisis, EventFinancialSpiralStarted, EventTrustLost, EventDefeatDesperation}
	successFinancialEvents   = []types.EventType{EventFinancialBreakthrough, EventTrustGained, EventFinancialGoalAchieved}
	failureFinancialEvents   = []types.EventType{EventFinancialCrisis, EventFinancialSpiralStarted, EventTrustLost}
)

// PublishFinancialEvent publishes a single-character financial event. For
// significant events the character's memory carries the financial detail,
// which holds the financial weighting next to the generic one.
func (b *EventBus) PublishFinancialEvent(ctx context.Context, eventType types.EventType, id model.CharacterID, description string, metadata model.Metadata, severity types.Severity) (model.EventID, error) {
	if severity == "" {
		severity = types.SeverityMedium
	}
	draft := &model.EventDraft{
		Type:           eventType,
		Source:         FinancialSource,
		ParticipantIDs: []model.CharacterID{id},
		Severity:       severity,
		Category:       types.CategoryFinancial,
		Description:    description,
		Metadata:       metadata,
		Tags:           []string{"financial", "money"},
	}

	var override memoryOverride
	if isSignificantFinancialEvent(eventType, severity) {
		override = financialOverride(eventType, severity, metadata)
	}
	return b.publish(ctx, draft, override)
}

// PublishEarnings records money a character earned
func (b *EventBus) PublishEarnings(ctx context.Context, id model.CharacterID, amount float64, source string) (model.EventID, error) {
	p := printer()
	return b.PublishFinancialEvent(ctx, EventEarningsReceived, id,
		p.Sprintf("%s earned $%s from %s", id, formatAmount(p, amount), source),
		model.Metadata{MetaAmount: amount, "source": source, "type": "earnings"},
		types.SeverityLow)
}

// PublishFinancialDecision records a decision the character is weighing
func (b *EventBus) PublishFinancialDecision(ctx context.Context, id model.CharacterID, decisionType string, amount float64, coachAdvice string) (model.EventID, error) {
	p := printer()
	metadata := model.Metadata{MetaAmount: amount, "decision_type": decisionType, "type": "decision"}
	if coachAdvice != "" {
		metadata["coach_advice"] = coachAdvice
	}
	return b.PublishFinancialEvent(ctx, EventFinancialDecisionPending, id,
		p.Sprintf("%s is considering a %s decision involving $%s", id, decisionType, formatAmount(p, amount)),
		metadata, types.SeverityMedium)
}

// PublishFinancialStressChange records a change of financial stress. The
// severity grows with the size of the change.
func (b *EventBus) PublishFinancialStressChange(ctx context.Context, id model.CharacterID, oldStress, newStress int, reason string) (model.EventID, error) {
	eventType, direction := EventFinancialStressDecrease, "decreased"
	if newStress > oldStress {
		eventType, direction = EventFinancialStressIncrease, "increased"
	}
	change := abs(newStress - oldStress)

	return b.PublishFinancialEvent(ctx, eventType, id,
		printer().Sprintf("%s's financial stress %s by %d%% due to %s", id, direction, change, reason),
		model.Metadata{
			"old_stress": oldStress, "new_stress": newStress, "change": change,
			MetaStressChange: newStress - oldStress, "reason": reason, "type": "stress",
		},
		stressSeverity(change))
}

// PublishTrustChange records a change of the character's trust in their
// coach's financial advice
func (b *EventBus) PublishTrustChange(ctx context.Context, id model.CharacterID, oldTrust, newTrust int, reason string) (model.EventID, error) {
	eventType, direction := EventTrustLost, "decreased"
	if newTrust > oldTrust {
		eventType, direction = EventTrustGained, "increased"
	}
	change := abs(newTrust - oldTrust)

	return b.PublishFinancialEvent(ctx, eventType, id,
		printer().Sprintf("%s's trust in coach financial advice %s by %d%% due to %s", id, direction, change, reason),
		model.Metadata{
			"old_trust": oldTrust, "new_trust": newTrust, "change": change,
			MetaTrustChange: newTrust - oldTrust, "reason": reason, "type": "trust",
		},
		types.SeverityMedium)
}

// PublishFinancialCrisis records a loss-causing crisis
func (b *EventBus) PublishFinancialCrisis(ctx context.Context, id model.CharacterID, crisisType string, impact float64) (model.EventID, error) {
	p := printer()
	return b.PublishFinancialEvent(ctx, EventFinancialCrisis, id,
		p.Sprintf("%s experienced a %s causing $%s in losses", id, crisisType, formatAmount(p, impact)),
		model.Metadata{"crisis_type": crisisType, MetaAmount: impact, "impact": impact, "type": "crisis"},
		types.SeverityHigh)
}

func isSignificantFinancialEvent(eventType types.EventType, severity types.Severity) bool {
	return slices.Contains(significantFinancialEvents, eventType) ||
		severity == types.SeverityHigh || severity == types.SeverityCritical
}

func financialOverride(eventType types.EventType, severity types.Severity, metadata model.Metadata) memoryOverride {
	importance := financialImportance(eventType, severity, metadata)
	intensity := financialIntensity(eventType, metadata)
	return func(mem *model.Memory) {
		mem.MemoryType = types.MemoryTypeFinancial
		if !slices.Contains(mem.Tags, string(eventType)) {
			mem.Tags = append(mem.Tags, string(eventType))
		}
		mem.Financial = &model.FinancialDetail{
			DecisionType:        financialDecisionOf(eventType),
			AmountInvolved:      metadata.Float(MetaAmount),
			Outcome:             financialOutcome(eventType, metadata),
			StressImpact:        metadata.Float(MetaStressChange),
			TrustImpact:         metadata.Float(MetaTrustChange),
			FinancialImportance: importance,
			FinancialIntensity:  intensity,
			FinancialValence:    financialValence(eventType, metadata),
			FinancialDecayRate:  financialDecayRate(importance, intensity),
		}
	}
}

func financialImportance(eventType types.EventType, severity types.Severity, metadata model.Metadata) int {
	importance := baseMemoryImportance
	switch {
	case slices.Contains(majorFinancialEvents, eventType):
		importance += 3
	case slices.Contains(notableFinancialEvents, eventType):
		importance += 2
	}
	importance += severity.ImportanceBonus()

	switch amount := metadata.Float(MetaAmount); {
	case amount > 10000:
		importance += 2
	case amount > 5000:
		importance++
	}
	return clampImportance(importance)
}

func financialIntensity(eventType types.EventType, metadata model.Metadata) int {
	intensity := 5
	switch {
	case slices.Contains(majorFinancialEvents, eventType):
		intensity = 8
	case slices.Contains(impulsiveFinancialEvents, eventType):
		intensity = 6
	}

	stress := math.Abs(metadata.Float(MetaStressChange))
	trust := math.Abs(metadata.Float(MetaTrustChange))
	switch {
	case stress > 20 || trust > 20:
		intensity += 2
	case stress > 10 || trust > 10:
		intensity++
	}
	return clampImportance(intensity)
}

func financialValence(eventType types.EventType, metadata model.Metadata) types.Valence {
	switch {
	case slices.Contains(positiveFinancialEvents, eventType):
		return types.ValencePositive
	case slices.Contains(negativeFinancialEvents, eventType):
		return types.ValenceNegative
	}

	switch model.FinancialOutcome(metadata.String(MetaOutcome)) {
	case model.FinancialOutcomeSuccess:
		return types.ValencePositive
	case model.FinancialOutcomeFailure:
		return types.ValenceNegative
	}

	// more stress is bad news
	switch stress := metadata.Float(MetaStressChange); {
	case stress > 0:
		return types.ValenceNegative
	case stress < 0:
		return types.ValencePositive
	default:
		return types.ValenceNeutral
	}
}

var financialDecisions = map[types.EventType]model.FinancialDecision{
	EventInvestmentOutcome:      model.FinancialDecisionInvestment,
	EventLuxuryPurchase:         model.FinancialDecisionPurchase,
	EventVictorySplurge:         model.FinancialDecisionPurchase,
	EventTrustGained:            model.FinancialDecisionAdvice,
	EventTrustLost:              model.FinancialDecisionAdvice,
	EventFinancialCrisis:        model.FinancialDecisionCrisis,
	EventFinancialSpiralStarted: model.FinancialDecisionSpiral,
	EventFinancialSpiralBroken:  model.FinancialDecisionSpiral,
	EventFinancialBreakthrough:  model.FinancialDecisionBreakthrough,
}

// financialDecisionOf maps an event type onto a decision kind. Unlisted
// types count as advice.
func financialDecisionOf(eventType types.EventType) model.FinancialDecision {
	if decision, ok := financialDecisions[eventType]; ok {
		return decision
	}
	return model.FinancialDecisionAdvice
}

func financialOutcome(eventType types.EventType, metadata model.Metadata) model.FinancialOutcome {
	switch outcome := model.FinancialOutcome(metadata.String(MetaOutcome)); outcome {
	case model.FinancialOutcomeSuccess, model.FinancialOutcomeFailure, model.FinancialOutcomePending:
		return outcome
	}
	switch {
	case slices.Contains(successFinancialEvents, eventType):
		return model.FinancialOutcomeSuccess
	case slices.Contains(failureFinancialEvents, eventType):
		return model.FinancialOutcomeFailure
	default:
		return model.FinancialOutcomePending
	}
}

// financialDecayRate fades important, intense memories slower. Rates never
// drop below 0.01.
func financialDecayRate(importance, intensity int) float64 {
	rate := 0.1 - float64(importance-5)*0.01 - float64(intensity-5)*0.01
	return math.Max(0.01, math.Round(rate*1000)/1000)
}

func stressSeverity(change int) types.Severity {
	switch {
	case change > 20:
		return types.SeverityHigh
	case change > 10:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// formatAmount groups thousands and drops the fraction of whole amounts
func formatAmount(p *message.Printer, amount float64) string {
	if amount == math.Trunc(amount) {
		return p.Sprintf("%d", int64(amount))
	}
	return p.Sprintf("%.2f", amount)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
