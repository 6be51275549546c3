package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[model.MemoryID]*model.Memory
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		entries: make(map[model.MemoryID]*model.Memory),
	}
}

func (r *memoryRepository) Put(ctx context.Context, mem *model.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[mem.ID] = mem.Copy()
	return nil
}

func (r *memoryRepository) UpdateRecall(ctx context.Context, id model.MemoryID, recallCount int, lastRecalled time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mem, ok := r.entries[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, id))
	}
	mem.RecallCount = recallCount
	mem.LastRecalled = lastRecalled
	return nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memories := make([]*model.Memory, 0, len(r.entries))
	for _, mem := range r.entries {
		memories = append(memories, mem.Copy())
	}

	slices.SortFunc(memories, func(a, b *model.Memory) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return memories, nil
}

func (r *memoryRepository) Delete(ctx context.Context, ids []model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.entries, id)
	}
	return nil
}
