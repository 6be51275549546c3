package usecase

import (
	"slices"
	"sync"
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// eventIndex is the primary event map plus the participant, type and
// day-bucket indexes. Index slices keep insertion order.
type eventIndex struct {
	mu          sync.RWMutex
	events      map[model.EventID]*model.Event
	byCharacter map[model.CharacterID][]model.EventID
	byType      map[types.EventType][]model.EventID
	byDay       map[string][]model.EventID
	tombstones  map[model.EventID]struct{}
}

func newEventIndex() *eventIndex {
	return &eventIndex{
		events:      make(map[model.EventID]*model.Event),
		byCharacter: make(map[model.CharacterID][]model.EventID),
		byType:      make(map[types.EventType][]model.EventID),
		byDay:       make(map[string][]model.EventID),
		tombstones:  make(map[model.EventID]struct{}),
	}
}

func (x *eventIndex) add(ev *model.Event) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.addLocked(ev)
}

func (x *eventIndex) addLocked(ev *model.Event) {
	if _, exists := x.events[ev.ID]; exists {
		return
	}
	x.events[ev.ID] = ev
	for _, id := range ev.ParticipantIDs {
		x.byCharacter[id] = append(x.byCharacter[id], ev.ID)
	}
	x.byType[ev.Type] = append(x.byType[ev.Type], ev.ID)
	day := ev.DayBucket()
	x.byDay[day] = append(x.byDay[day], ev.ID)
}

// get returns a copy of the event. pruned is true when the id is known but
// its body was removed.
func (x *eventIndex) get(id model.EventID) (ev *model.Event, pruned bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if ev, ok := x.events[id]; ok {
		return ev.Copy(), false
	}
	_, pruned = x.tombstones[id]
	return nil, pruned
}

func (x *eventIndex) forCharacter(id model.CharacterID, filter *model.EventFilter, now time.Time) []*model.Event {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collect(x.byCharacter[id], filter, now)
}

func (x *eventIndex) forType(t types.EventType, filter *model.EventFilter, now time.Time) []*model.Event {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collect(x.byType[t], filter, now)
}

func (x *eventIndex) forDay(day string) []*model.Event {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.collect(x.byDay[day], nil, time.Time{})
}

// collect applies the filter, keeps the most recent Limit matches and
// returns copies newest first
func (x *eventIndex) collect(ids []model.EventID, filter *model.EventFilter, now time.Time) []*model.Event {
	matched := make([]*model.Event, 0, len(ids))
	for _, id := range ids {
		ev, ok := x.events[id]
		if !ok || !filter.Match(ev, now) {
			continue
		}
		matched = append(matched, ev)
	}

	slices.SortStableFunc(matched, compareEventTime)
	if filter != nil && filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[len(matched)-filter.Limit:]
	}

	result := make([]*model.Event, len(matched))
	for i, ev := range matched {
		result[len(matched)-1-i] = ev.Copy()
	}
	return result
}

// compareEventTime orders events oldest first, ties broken by id
func compareEventTime(a, b *model.Event) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
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
}

// expired returns the ids of events published before cutoff whose
// importance is below floor
func (x *eventIndex) expired(cutoff time.Time, floor int) []model.EventID {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var ids []model.EventID
	for id, ev := range x.events {
		if ev.Timestamp.Before(cutoff) && ev.ImportanceOrDefault() < floor {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// prune drops the bodies of ids from every index and tombstones them
func (x *eventIndex) prune(ids []model.EventID) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, id := range ids {
		ev, ok := x.events[id]
		if !ok {
			continue
		}
		delete(x.events, id)
		x.tombstones[id] = struct{}{}

		for _, cid := range ev.ParticipantIDs {
			x.byCharacter[cid] = removeID(x.byCharacter[cid], id)
			if len(x.byCharacter[cid]) == 0 {
				delete(x.byCharacter, cid)
			}
		}
		x.byType[ev.Type] = removeID(x.byType[ev.Type], id)
		if len(x.byType[ev.Type]) == 0 {
			delete(x.byType, ev.Type)
		}
		day := ev.DayBucket()
		x.byDay[day] = removeID(x.byDay[day], id)
		if len(x.byDay[day]) == 0 {
			delete(x.byDay, day)
		}
	}
}

// reset replaces the whole index, used by rehydration
func (x *eventIndex) reset(events []*model.Event) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.events = make(map[model.EventID]*model.Event, len(events))
	x.byCharacter = make(map[model.CharacterID][]model.EventID)
	x.byType = make(map[types.EventType][]model.EventID)
	x.byDay = make(map[string][]model.EventID)
	x.tombstones = make(map[model.EventID]struct{})

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, compareEventTime)
	for _, ev := range sorted {
		x.addLocked(ev)
	}
}

// markTombstones records ids referenced elsewhere whose body is gone
func (x *eventIndex) markTombstones(ids []model.EventID) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, id := range ids {
		if _, ok := x.events[id]; !ok {
			x.tombstones[id] = struct{}{}
		}
	}
}

func (x *eventIndex) len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.events)
}

func removeID[T comparable](ids []T, target T) []T {
	return slices.DeleteFunc(ids, func(id T) bool { return id == target })
}
