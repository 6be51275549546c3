package interfaces

import (
	"context"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// RelationshipUpdateFunc receives the stored row (nil when the pair has no
// row yet) and returns the row to store.
type RelationshipUpdateFunc func(current *model.Relationship) (*model.Relationship, error)

// RelationshipRepository stores one row per character pair
type RelationshipRepository interface {
	// Get returns the row of key, or ErrNotFound
	Get(ctx context.Context, key model.PairKey) (*model.Relationship, error)

	// Upsert runs fn and stores its result while holding a lock on the row,
	// so concurrent upserts of one pair never lose an update. fn may be
	// called more than once by backends that retry on contention.
	Upsert(ctx context.Context, key model.PairKey, fn RelationshipUpdateFunc) (*model.Relationship, error)

	// List returns every stored row
	List(ctx context.Context) ([]*model.Relationship, error)
}
