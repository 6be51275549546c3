package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/service/lookup"
)

// Sentinel errors for the event bus. Match them with errors.Is.
var (
	// ErrValidation rejects input before any state is touched
	ErrValidation = model.ErrValidation

	// ErrLookup means a lookup table row the bus depends on is missing
	ErrLookup         = lookup.ErrLookup
	ErrEffectNotFound = lookup.ErrEffectNotFound

	// ErrPersistence means the durable store rejected a write that must
	// succeed
	ErrPersistence = goerr.New("persistence failed")

	// ErrNotFound is the root of every failed point read
	ErrNotFound             = goerr.New("not found")
	ErrMemoryNotFound       = goerr.Wrap(ErrNotFound, "memory not found")
	ErrRelationshipNotFound = goerr.Wrap(ErrNotFound, "relationship not found")
	ErrEventNotFound        = goerr.Wrap(ErrNotFound, "event not found")
	// ErrEventPruned is returned for events whose body was removed by the
	// prune sweep. The id stays valid as a relationship reference.
	ErrEventPruned = goerr.Wrap(ErrEventNotFound, "event was pruned")

	// ErrNotReady is returned by Publish until Rehydrate has completed
	ErrNotReady = goerr.New("event bus is not ready")
)

// Context keys for error values
const (
	CharacterIDKey = model.CharacterIDKey
	TargetIDKey    = "target_character_id"
	EventIDKey     = model.EventIDKey
	EventTypeKey   = model.EventTypeKey
	MemoryIDKey    = model.MemoryIDKey
	PairKey        = model.PairKeyKey
)
