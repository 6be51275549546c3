package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
)

// ErrNotFound is returned when a point read misses
var ErrNotFound = interfaces.ErrNotFound

type Firestore struct {
	client       *firestore.Client
	event        *eventRepository
	memory       *memoryRepository
	relationship *relationshipRepository
	lookup       *lookupRepository
	character    *characterRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces every collection, so several test runs
// can share one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.event.collectionPrefix = prefix
		f.memory.collectionPrefix = prefix
		f.relationship.collectionPrefix = prefix
		f.lookup.collectionPrefix = prefix
		f.character.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		event:        &eventRepository{client: client},
		memory:       &memoryRepository{client: client},
		relationship: &relationshipRepository{client: client},
		lookup:       &lookupRepository{client: client},
		character:    &characterRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Event() interfaces.EventRepository {
	return f.event
}

func (f *Firestore) Memory() interfaces.MemoryRepository {
	return f.memory
}

func (f *Firestore) Relationship() interfaces.RelationshipRepository {
	return f.relationship
}

func (f *Firestore) Lookup() interfaces.LookupRepository {
	return f.lookup
}

func (f *Firestore) Character() interfaces.CharacterRepository {
	return f.character
}

func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

// Collection names before the optional prefix
const (
	CollectionEvents        = "events"
	CollectionTombstones    = "event_tombstones"
	CollectionMemories      = "memories"
	CollectionRelationships = "relationships"
	CollectionCharacters    = "characters"
)

// CollectionName returns name under prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
