package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/service/lookup"
)

// relationshipEngine keeps the relationship cache in step with the store.
// A row enters the cache only after the store accepted it.
type relationshipEngine struct {
	repo   interfaces.RelationshipRepository
	lookup *lookup.Service
	jitter func() int
	locks  *keyLocker[model.PairKey]

	mu    sync.RWMutex
	cache map[model.PairKey]*model.Relationship
}

func newRelationshipEngine(repo interfaces.RelationshipRepository, svc *lookup.Service, jitter func() int) *relationshipEngine {
	return &relationshipEngine{
		repo:   repo,
		lookup: svc,
		jitter: jitter,
		locks:  newKeyLocker[model.PairKey](),
		cache:  make(map[model.PairKey]*model.Relationship),
	}
}

// apply updates every unordered pair of ev's participants. It stops at the
// first failing pair; pairs updated before it keep their new state.
func (e *relationshipEngine) apply(ctx context.Context, ev *model.Event) error {
	if len(ev.ParticipantIDs) < 2 {
		return nil
	}

	effect, err := e.lookup.Effect(ctx, ev.Type)
	if err != nil {
		return goerr.Wrap(err, "cannot propagate event to relationships",
			goerr.V(EventIDKey, ev.ID), goerr.V(EventTypeKey, ev.Type))
	}

	for i := 0; i < len(ev.ParticipantIDs); i++ {
		for j := i + 1; j < len(ev.ParticipantIDs); j++ {
			key, err := model.NewPairKey(ev.ParticipantIDs[i], ev.ParticipantIDs[j])
			if err != nil {
				return goerr.Wrap(err, "invalid participant pair", goerr.V(EventIDKey, ev.ID))
			}
			if err := e.update(ctx, key, ev, effect); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *relationshipEngine) update(ctx context.Context, key model.PairKey, ev *model.Event, effect *model.EventEffect) error {
	unlock := e.locks.lock(key)
	defer unlock()

	cached := e.cached(key)

	// The seed is resolved before the store transaction opens, so the
	// transaction never waits on lookup reads.
	var seed model.Disposition
	if cached == nil {
		d, err := e.lookup.Disposition(ctx, key.Low, key.High)
		if err != nil {
			return goerr.Wrap(err, "cannot seed relationship",
				goerr.V(PairKey, key.String()), goerr.V(EventIDKey, ev.ID))
		}
		seed = d
		seed.Jitter = e.jitter()
	}

	stored, err := e.repo.Upsert(ctx, key, func(current *model.Relationship) (*model.Relationship, error) {
		switch {
		case current != nil:
		case cached != nil:
			current = cached.Copy()
		default:
			current = model.NewRelationship(key, seed, ev.Timestamp)
		}
		current.Apply(ev.ID, effect, ev.Timestamp)
		return current, nil
	})
	if err != nil {
		return goerr.Wrap(errors.Join(ErrPersistence, err), "failed to persist relationship",
			goerr.V(PairKey, key.String()), goerr.V(EventIDKey, ev.ID))
	}

	e.mu.Lock()
	e.cache[key] = stored.Copy()
	e.mu.Unlock()
	return nil
}

func (e *relationshipEngine) cached(key model.PairKey) *model.Relationship {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if rel, ok := e.cache[key]; ok {
		return rel.Copy()
	}
	return nil
}

// get returns the relationship oriented from a towards b
func (e *relationshipEngine) get(a, b model.CharacterID) (*model.Relationship, error) {
	key, err := model.NewPairKey(a, b)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	rel, ok := e.cache[key]
	if !ok {
		return nil, goerr.Wrap(ErrRelationshipNotFound, "pair has never interacted",
			goerr.V(CharacterIDKey, a), goerr.V(TargetIDKey, b))
	}
	return rel.ViewFrom(a), nil
}

// summary returns every relationship of id keyed by the other character
func (e *relationshipEngine) summary(id model.CharacterID) map[model.CharacterID]*model.Relationship {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make(map[model.CharacterID]*model.Relationship)
	for key, rel := range e.cache {
		if key.Has(id) {
			result[key.Other(id)] = rel.ViewFrom(id)
		}
	}
	return result
}

func (e *relationshipEngine) reset(rows []*model.Relationship) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache = make(map[model.PairKey]*model.Relationship, len(rows))
	for _, rel := range rows {
		e.cache[rel.Key()] = rel
	}
}

// referencedEvents returns every event id a relationship points at
func (e *relationshipEngine) referencedEvents() []model.EventID {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var ids []model.EventID
	for _, rel := range e.cache {
		ids = append(ids, rel.SharedEventIDs...)
	}
	return ids
}
