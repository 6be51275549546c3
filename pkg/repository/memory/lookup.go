package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// modifierKey orders the two sides so either lookup order hits the row
type modifierKey struct {
	a, b string
}

func newModifierKey(left, right string) modifierKey {
	if left > right {
		left, right = right, left
	}
	return modifierKey{a: left, b: right}
}

type lookupRepository struct {
	mu              sync.RWMutex
	effects         map[types.EventType]*model.EventEffect
	classifications map[types.EventType]*model.Classification
	species         map[modifierKey]*model.DispositionModifier
	archetypes      map[modifierKey]*model.DispositionModifier
}

func newLookupRepository() *lookupRepository {
	return &lookupRepository{
		effects:         make(map[types.EventType]*model.EventEffect),
		classifications: make(map[types.EventType]*model.Classification),
		species:         make(map[modifierKey]*model.DispositionModifier),
		archetypes:      make(map[modifierKey]*model.DispositionModifier),
	}
}

func (r *lookupRepository) GetEffect(ctx context.Context, eventType types.EventType) (*model.EventEffect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	effect, ok := r.effects[eventType]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "effect not found", goerr.V(model.EventTypeKey, eventType))
	}
	c := *effect
	return &c, nil
}

func (r *lookupRepository) PutEffect(ctx context.Context, effect *model.EventEffect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *effect
	r.effects[effect.EventType] = &c
	return nil
}

func (r *lookupRepository) GetClassification(ctx context.Context, eventType types.EventType) (*model.Classification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cls, ok := r.classifications[eventType]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "classification not found", goerr.V(model.EventTypeKey, eventType))
	}
	c := *cls
	return &c, nil
}

func (r *lookupRepository) PutClassification(ctx context.Context, cls *model.Classification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *cls
	r.classifications[cls.EventType] = &c
	return nil
}

func (r *lookupRepository) GetSpeciesModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error) {
	return r.getModifier(r.species, "species", left, right)
}

func (r *lookupRepository) PutSpeciesModifier(ctx context.Context, m *model.DispositionModifier) error {
	r.putModifier(r.species, m)
	return nil
}

func (r *lookupRepository) GetArchetypeModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error) {
	return r.getModifier(r.archetypes, "archetype", left, right)
}

func (r *lookupRepository) PutArchetypeModifier(ctx context.Context, m *model.DispositionModifier) error {
	r.putModifier(r.archetypes, m)
	return nil
}

func (r *lookupRepository) getModifier(table map[modifierKey]*model.DispositionModifier, kind, left, right string) (*model.DispositionModifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := table[newModifierKey(left, right)]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "modifier not found",
			goerr.V("kind", kind), goerr.V("left", left), goerr.V("right", right))
	}
	c := *m
	return &c, nil
}

func (r *lookupRepository) putModifier(table map[modifierKey]*model.DispositionModifier, m *model.DispositionModifier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *m
	table[newModifierKey(m.Left, m.Right)] = &c
}
