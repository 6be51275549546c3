package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

type relationshipRepository struct {
	mu   sync.RWMutex
	rows map[model.PairKey]*model.Relationship
}

func newRelationshipRepository() *relationshipRepository {
	return &relationshipRepository{
		rows: make(map[model.PairKey]*model.Relationship),
	}
}

func (r *relationshipRepository) Get(ctx context.Context, key model.PairKey) (*model.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[key]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V(model.PairKeyKey, key.String()))
	}
	return row.Copy(), nil
}

// Upsert holds the write lock for the whole read-modify-write, so fn must
// not call back into the repository.
func (r *relationshipRepository) Upsert(ctx context.Context, key model.PairKey, fn interfaces.RelationshipUpdateFunc) (*model.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *model.Relationship
	if row, ok := r.rows[key]; ok {
		current = row.Copy()
	}

	next, err := fn(current)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update relationship", goerr.V(model.PairKeyKey, key.String()))
	}
	if next == nil {
		return nil, goerr.New("relationship update returned nil", goerr.V(model.PairKeyKey, key.String()))
	}

	stored := next.Copy()
	stored.CharacterID, stored.TargetCharacterID = key.Low, key.High
	r.rows[key] = stored
	return stored.Copy(), nil
}

func (r *relationshipRepository) List(ctx context.Context) ([]*model.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]*model.Relationship, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row.Copy())
	}
	return rows, nil
}
