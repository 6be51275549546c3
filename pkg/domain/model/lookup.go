package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// EventEffect is how one event of a given type moves the relationship of
// every pair of its participants.
type EventEffect struct {
	EventType    types.EventType
	Trust        int
	Respect      int
	Affection    int
	Rivalry      int
	IsConflict   bool
	IsResolution bool
}

// Validate checks the effect row
func (e *EventEffect) Validate() error {
	if err := e.EventType.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, "invalid effect event type", goerr.V(EventTypeKey, e.EventType), goerr.V("cause", err.Error()))
	}
	for name, v := range map[string]int{"trust": e.Trust, "respect": e.Respect, "affection": e.Affection, "rivalry": e.Rivalry} {
		if v < -2*MaxAffinity || v > 2*MaxAffinity {
			return goerr.Wrap(ErrValidation, "effect delta out of range", goerr.V(EventTypeKey, e.EventType), goerr.V(FieldKey, name), goerr.V(ValueKey, v))
		}
	}
	return nil
}

// Classification tags an event type with how memories of it are colored
// and weighted.
type Classification struct {
	EventType    types.EventType
	Valence      types.Valence
	MemoryType   types.MemoryType
	Significance types.Significance
}

// DefaultClassification is used for event types with no classification row
func DefaultClassification(t types.EventType) *Classification {
	return &Classification{
		EventType:    t,
		Valence:      types.ValenceNeutral,
		MemoryType:   types.MemoryTypeSocial,
		Significance: types.SignificanceRoutine,
	}
}

// Validate checks the classification row
func (c *Classification) Validate() error {
	if err := c.EventType.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, "invalid classification event type", goerr.V(EventTypeKey, c.EventType), goerr.V("cause", err.Error()))
	}
	if !c.Valence.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid valence", goerr.V(EventTypeKey, c.EventType), goerr.V(ValueKey, c.Valence))
	}
	if !c.MemoryType.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid memory type", goerr.V(EventTypeKey, c.EventType), goerr.V(ValueKey, c.MemoryType))
	}
	if !c.Significance.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid significance", goerr.V(EventTypeKey, c.EventType), goerr.V(ValueKey, c.Significance))
	}
	return nil
}

// DispositionModifier is a compatibility row between two species or two
// archetypes.
type DispositionModifier struct {
	Left        string
	Right       string
	Modifier    int
	Description string
}

// Validate checks the modifier row
func (d *DispositionModifier) Validate() error {
	if d.Left == "" || d.Right == "" {
		return goerr.Wrap(ErrMissingRequired, "modifier needs both sides", goerr.V("left", d.Left), goerr.V("right", d.Right))
	}
	if d.Modifier < MinAffinity || d.Modifier > MaxAffinity {
		return goerr.Wrap(ErrValidation, "modifier out of range", goerr.V(ValueKey, d.Modifier))
	}
	return nil
}

// Character is the part of a character instance the bus needs to seed
// relationships.
type Character struct {
	ID         CharacterID
	TemplateID string
	Name       string
	Species    string
	Archetype  string
}

// Validate checks the character row
func (c *Character) Validate() error {
	if err := c.ID.Validate(); err != nil {
		return err
	}
	if c.Species == "" {
		return goerr.Wrap(ErrMissingRequired, "species is required", goerr.V(CharacterIDKey, c.ID))
	}
	if c.Archetype == "" {
		return goerr.Wrap(ErrMissingRequired, "archetype is required", goerr.V(CharacterIDKey, c.ID))
	}
	return nil
}
