package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/errutil"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

const (
	DefaultRetention       = 14 * 24 * time.Hour
	DefaultImportanceFloor = 7
	DefaultSafetyWindow    = time.Hour
	MinSafetyWindow        = time.Minute
)

// PruneResult counts what one sweep removed
type PruneResult = model.PruneResult

// Prune removes events and memories older than the retention window whose
// importance is below the floor. Records younger than the safety window
// are never touched, whatever the retention. Pruned event ids are kept as
// tombstones, so relationship history stays intact. Store deletions are
// best-effort.
func (b *EventBus) Prune(ctx context.Context, now time.Time) PruneResult {
	cutoff := now.Add(-max(b.retention, b.safetyWindow))

	eventIDs := b.events.expired(cutoff, b.importanceFloor)
	memoryIDs := b.memories.expired(cutoff, b.importanceFloor)

	b.events.prune(eventIDs)
	b.memories.prune(memoryIDs)

	if err := b.repo.Event().Delete(ctx, eventIDs); err != nil {
		errutil.Handle(ctx, err, "failed to delete pruned events")
	}
	if err := b.repo.Memory().Delete(ctx, memoryIDs); err != nil {
		errutil.Handle(ctx, err, "failed to delete pruned memories")
	}

	result := PruneResult{Events: len(eventIDs), Memories: len(memoryIDs)}
	if result.Events > 0 || result.Memories > 0 {
		logging.From(ctx).Info("pruned expired records",
			"events", result.Events,
			"memories", result.Memories,
			"cutoff", cutoff,
		)
	}
	return result
}
