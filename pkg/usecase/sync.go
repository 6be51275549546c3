package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Rehydrate rebuilds every in-memory index from the store and marks the
// bus ready. It replaces whatever the bus held before. A read failure
// leaves the bus not ready.
func (b *EventBus) Rehydrate(ctx context.Context) error {
	var (
		events        []*model.Event
		tombstones    []model.EventID
		memories      []*model.Memory
		relationships []*model.Relationship
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		if events, err = b.repo.Event().List(egCtx); err != nil {
			return goerr.Wrap(err, "failed to load events")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if tombstones, err = b.repo.Event().Tombstones(egCtx); err != nil {
			return goerr.Wrap(err, "failed to load event tombstones")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if memories, err = b.repo.Memory().List(egCtx); err != nil {
			return goerr.Wrap(err, "failed to load memories")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if relationships, err = b.repo.Relationship().List(egCtx); err != nil {
			return goerr.Wrap(err, "failed to load relationships")
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		b.ready.Store(false)
		return goerr.Wrap(err, "rehydration failed")
	}

	b.events.reset(events)
	b.memories.reset(memories)
	b.relationships.reset(relationships)
	b.events.markTombstones(tombstones)
	// stores written before tombstones were kept only know them from
	// relationship history
	b.events.markTombstones(b.relationships.referencedEvents())
	b.ready.Store(true)

	logging.From(ctx).Info("event bus rehydrated",
		"events", len(events),
		"tombstones", len(tombstones),
		"memories", len(memories),
		"relationships", len(relationships),
	)
	return nil
}
