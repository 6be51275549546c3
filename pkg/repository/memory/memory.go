package memory

import (
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
)

// ErrNotFound is returned when a point read misses
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every aggregate in process memory. It backs tests and local
// runs; nothing survives the process.
type Memory struct {
	event        *eventRepository
	memory       *memoryRepository
	relationship *relationshipRepository
	lookup       *lookupRepository
	character    *characterRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		event:        newEventRepository(),
		memory:       newMemoryRepository(),
		relationship: newRelationshipRepository(),
		lookup:       newLookupRepository(),
		character:    newCharacterRepository(),
	}
}

func (m *Memory) Event() interfaces.EventRepository {
	return m.event
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memory
}

func (m *Memory) Relationship() interfaces.RelationshipRepository {
	return m.relationship
}

func (m *Memory) Lookup() interfaces.LookupRepository {
	return m.lookup
}

func (m *Memory) Character() interfaces.CharacterRepository {
	return m.character
}

func (m *Memory) Close() error {
	return nil
}
