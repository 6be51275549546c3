package interfaces

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned by every backend when a point read misses
var ErrNotFound = goerr.New("not found")

// Repository defines the durable store the bus writes through
type Repository interface {
	Event() EventRepository
	Memory() MemoryRepository
	Relationship() RelationshipRepository
	Lookup() LookupRepository
	Character() CharacterRepository

	Close() error
}
