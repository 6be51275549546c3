package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// MemoryRepository defines the interface for Memory data persistence
type MemoryRepository interface {
	// Put appends a memory. Putting an existing id overwrites it.
	Put(ctx context.Context, memory *model.Memory) error

	// UpdateRecall stores the recall bookkeeping of an existing memory
	UpdateRecall(ctx context.Context, id model.MemoryID, recallCount int, lastRecalled time.Time) error

	// List returns every stored memory, oldest first
	List(ctx context.Context) ([]*model.Memory, error)

	// Delete removes pruned memories. Unknown ids are ignored.
	Delete(ctx context.Context, ids []model.MemoryID) error
}
