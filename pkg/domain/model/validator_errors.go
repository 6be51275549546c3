package model

import "github.com/m-mizutani/goerr/v2"

// ErrValidation is the root of every error that rejects input before any
// state is touched.
var ErrValidation = goerr.New("validation failed")

// Validation errors
var (
	ErrInvalidCharacterID   = goerr.Wrap(ErrValidation, "invalid character id")
	ErrMissingRequired      = goerr.Wrap(ErrValidation, "required field is missing")
	ErrDuplicateParticipant = goerr.Wrap(ErrValidation, "duplicate participant")
	ErrInvalidImportance    = goerr.Wrap(ErrValidation, "importance out of range")
	ErrInvalidMetadata      = goerr.Wrap(ErrValidation, "invalid metadata")
	ErrInvalidEnum          = goerr.Wrap(ErrValidation, "invalid enumerated value")
	ErrSelfRelationship     = goerr.Wrap(ErrValidation, "a character cannot relate to itself")
)

// Context keys for error values
const (
	CharacterIDKey = "character_id"
	EventIDKey     = "event_id"
	EventTypeKey   = "event_type"
	FieldKey       = "field"
	ValueKey       = "value"
	MemoryIDKey    = "memory_id"
	PairKeyKey     = "pair"
)
