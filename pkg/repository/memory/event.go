package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

type eventRepository struct {
	mu         sync.RWMutex
	events     map[model.EventID]*model.Event
	tombstones map[model.EventID]struct{}
}

func newEventRepository() *eventRepository {
	return &eventRepository{
		events:     make(map[model.EventID]*model.Event),
		tombstones: make(map[model.EventID]struct{}),
	}
}

func (r *eventRepository) Put(ctx context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.ID] = event.Copy()
	return nil
}

func (r *eventRepository) List(ctx context.Context) ([]*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.Event, 0, len(r.events))
	for _, ev := range r.events {
		events = append(events, ev.Copy())
	}

	// ULIDs sort by creation time
	slices.SortFunc(events, func(a, b *model.Event) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return events, nil
}

func (r *eventRepository) Delete(ctx context.Context, ids []model.EventID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.events, id)
		r.tombstones[id] = struct{}{}
	}
	return nil
}

func (r *eventRepository) Tombstones(ctx context.Context) ([]model.EventID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := slices.Collect(maps.Keys(r.tombstones))
	slices.Sort(ids)
	return ids, nil
}
