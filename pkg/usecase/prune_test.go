package usecase_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/repository/sqlite"
	"github.com/secmon-lab/chronicle/pkg/usecase"
)

func TestPrune_RetentionAndImportanceFloor(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 2)
	clock := newFakeClock()
	bus := newTestBus(t, repo, usecase.WithClock(clock.Now))

	routineID, err := bus.Publish(ctx, draft("shared_meal", types.SeverityLow, ids...))
	gt.NoError(t, err).Required()

	important := 8
	keep := draft("battle_victory", types.SeverityHigh, ids...)
	keep.Importance = &important
	keepID, err := bus.Publish(ctx, keep)
	gt.NoError(t, err).Required()

	clock.Advance(usecase.DefaultRetention - time.Hour)
	result := bus.Prune(ctx, clock.Now())
	gt.Value(t, result).Equal(usecase.PruneResult{})

	clock.Advance(2 * time.Hour)
	result = bus.Prune(ctx, clock.Now())
	gt.Value(t, result.Events).Equal(1)
	// the shared meal memory of both participants; battle memories are 9
	gt.Value(t, result.Memories).Equal(2)

	_, err = bus.GetEvent(ctx, routineID)
	gt.Error(t, err).Is(usecase.ErrEventPruned)
	gt.Error(t, err).Is(usecase.ErrEventNotFound)

	_, err = bus.GetEvent(ctx, keepID)
	gt.NoError(t, err)

	events, err := bus.GetCharacterEvents(ctx, ids[0], nil)
	gt.NoError(t, err).Required()
	gt.Array(t, events).Length(1)

	memories, err := bus.GetCharacterMemories(ctx, ids[0], nil)
	gt.NoError(t, err).Required()
	gt.Array(t, memories).Length(1)

	rel, err := bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()
	gt.Array(t, rel.SharedEventIDs).Has(routineID)

	stored, err := repo.Event().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(1)

	t.Run("tombstones survive rehydration", func(t *testing.T) {
		after := newTestBus(t, repo, usecase.WithClock(clock.Now))
		_, err := after.GetEvent(ctx, routineID)
		gt.Error(t, err).Is(usecase.ErrEventPruned)
		_, err = after.GetEvent(ctx, model.NewEventID(clock.Now()))
		gt.Error(t, err).Is(usecase.ErrEventNotFound)
	})

	t.Run("sweeping again removes nothing", func(t *testing.T) {
		gt.Value(t, bus.Prune(ctx, clock.Now())).Equal(usecase.PruneResult{})
	})
}

func TestPrune_SoloEventStaysPrunedAfterRestart(t *testing.T) {
	ctx := context.Background()
	repo, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "chronicle.db"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = repo.Close() })
	seedTables(t, repo)
	ids := newCharacters(t, repo, 1)
	clock := newFakeClock()
	bus := newTestBus(t, repo, usecase.WithClock(clock.Now))

	// no relationship ever references this event
	soloID, err := bus.Publish(ctx, draft("shared_meal", types.SeverityLow, ids[0]))
	gt.NoError(t, err).Required()

	clock.Advance(usecase.DefaultRetention + time.Hour)
	gt.Value(t, bus.Prune(ctx, clock.Now()).Events).Equal(1)

	after := newTestBus(t, repo, usecase.WithClock(clock.Now))
	_, err = after.GetEvent(ctx, soloID)
	gt.Error(t, err).Is(usecase.ErrEventPruned)
}

func TestPrune_SafetyWindow(t *testing.T) {
	testCases := []struct {
		name   string
		opts   []usecase.Option
		age    time.Duration
		pruned bool
	}{
		{
			name: "zero retention still spares the last hour",
			opts: []usecase.Option{usecase.WithRetention(0)},
			age:  30 * time.Minute,
		},
		{
			name:   "zero retention prunes past the safety window",
			opts:   []usecase.Option{usecase.WithRetention(0)},
			age:    2 * time.Hour,
			pruned: true,
		},
		{
			name: "safety window cannot go below one minute",
			opts: []usecase.Option{usecase.WithRetention(0), usecase.WithSafetyWindow(time.Second)},
			age:  30 * time.Second,
		},
		{
			name:   "short safety window",
			opts:   []usecase.Option{usecase.WithRetention(0), usecase.WithSafetyWindow(time.Second)},
			age:    2 * time.Minute,
			pruned: true,
		},
		{
			name: "records at the floor are kept",
			opts: []usecase.Option{usecase.WithRetention(0), usecase.WithImportanceFloor(3)},
			age:  2 * time.Hour,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo := newSeededRepo(t)
			ids := newCharacters(t, repo, 1)
			clock := newFakeClock()
			bus := newTestBus(t, repo, append(tc.opts, usecase.WithClock(clock.Now))...)

			eventID, err := bus.Publish(ctx, draft("shared_meal", types.SeverityLow, ids[0]))
			gt.NoError(t, err).Required()

			clock.Advance(tc.age)
			result := bus.Prune(ctx, clock.Now())

			_, err = bus.GetEvent(ctx, eventID)
			if tc.pruned {
				gt.Value(t, result.Events).Equal(1)
				gt.Error(t, err).Is(usecase.ErrEventPruned)
			} else {
				gt.Value(t, result.Events).Equal(0)
				gt.NoError(t, err)
			}
		})
	}
}
