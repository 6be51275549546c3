package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound      = goerr.New("configuration file not found")
	ErrInvalidConfig       = goerr.New("invalid configuration")
	ErrDuplicateEventType  = goerr.New("duplicate event type")
	ErrDuplicateModifier   = goerr.New("duplicate disposition modifier")
	ErrDuplicateCharacter  = goerr.New("duplicate character")
	ErrInvalidBackend      = goerr.New("invalid repository backend")
	ErrMissingFirestoreArg = goerr.New("firestore-project-id is required when using firestore backend")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	EventTypeKey   = "event_type"
	ModifierKey    = "modifier"
	CharacterIDKey = "character_id"
	TableKey       = "table"
	IndexKey       = "index"
)
