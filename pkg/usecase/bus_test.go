package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/repository/memory"
	"github.com/secmon-lab/chronicle/pkg/usecase"
)

func TestPublish_BeforeRehydrate(t *testing.T) {
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 1)
	bus := usecase.New(repo)

	gt.Bool(t, bus.Ready()).False()
	_, err := bus.Publish(context.Background(), draft("battle_victory", types.SeverityLow, ids[0]))
	gt.Error(t, err).Is(usecase.ErrNotReady)
}

func TestPublish_ValidationHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	importance := 11

	testCases := []struct {
		name   string
		mutate func(d *model.EventDraft)
		target error
		hint   string
	}{
		{
			name:   "template id instead of instance id",
			mutate: func(d *model.EventDraft) { d.ParticipantIDs = append(d.ParticipantIDs, "sun_wukong") },
			target: model.ErrInvalidCharacterID,
			hint:   "sun_wukong",
		},
		{
			name:   "braced uuid is not canonical",
			mutate: func(d *model.EventDraft) { d.ParticipantIDs[0] = "{" + d.ParticipantIDs[0] + "}" },
			target: model.ErrInvalidCharacterID,
		},
		{
			name:   "missing type",
			mutate: func(d *model.EventDraft) { d.Type = "" },
			target: model.ErrMissingRequired,
		},
		{
			name:   "missing description",
			mutate: func(d *model.EventDraft) { d.Description = "" },
			target: model.ErrMissingRequired,
		},
		{
			name:   "no participants",
			mutate: func(d *model.EventDraft) { d.ParticipantIDs = nil },
			target: model.ErrMissingRequired,
		},
		{
			name:   "duplicate participant",
			mutate: func(d *model.EventDraft) { d.ParticipantIDs = append(d.ParticipantIDs, d.ParticipantIDs[0]) },
			target: model.ErrDuplicateParticipant,
		},
		{
			name:   "unknown severity",
			mutate: func(d *model.EventDraft) { d.Severity = "apocalyptic" },
			target: model.ErrInvalidEnum,
		},
		{
			name:   "importance out of range",
			mutate: func(d *model.EventDraft) { d.Importance = &importance },
			target: model.ErrInvalidImportance,
		},
		{
			name:   "metadata not serializable",
			mutate: func(d *model.EventDraft) { d.Metadata = model.Metadata{"callback": func() {}} },
			target: model.ErrInvalidMetadata,
		},
		{
			name: "metadata too large",
			mutate: func(d *model.EventDraft) {
				d.Metadata = model.Metadata{"blob": strings.Repeat("x", model.MaxMetadataBytes)}
			},
			target: model.ErrInvalidMetadata,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newSeededRepo(t)
			ids := newCharacters(t, repo, 2)
			bus := newTestBus(t, repo)

			called := false
			bus.Subscribe(usecase.AllEvents, func(context.Context, *model.Event) error {
				called = true
				return nil
			})

			d := draft("battle_victory", types.SeverityHigh, ids...)
			tc.mutate(d)

			id, err := bus.Publish(ctx, d)
			gt.Error(t, err).Is(usecase.ErrValidation)
			gt.Error(t, err).Is(tc.target)
			gt.Value(t, id).Equal(model.EventID(""))
			if tc.hint != "" {
				gt.String(t, err.Error()).Contains(tc.hint)
			}

			events, err := bus.GetCharacterEvents(ctx, ids[0], nil)
			gt.NoError(t, err).Required()
			gt.Array(t, events).Length(0)

			memories, err := bus.GetCharacterMemories(ctx, ids[0], nil)
			gt.NoError(t, err).Required()
			gt.Array(t, memories).Length(0)

			stored, err := repo.Event().List(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, stored).Length(0)

			storedMemories, err := repo.Memory().List(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, storedMemories).Length(0)

			_, err = bus.GetRelationship(ctx, ids[0], ids[1])
			gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)
			gt.Bool(t, called).False()
		})
	}
}

func TestPublish_BattleVictoryWithThreeParticipants(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 3)
	bus := newTestBus(t, repo)

	var delivered []*model.Event
	bus.Subscribe("battle_victory", func(_ context.Context, ev *model.Event) error {
		delivered = append(delivered, ev)
		return nil
	})

	eventID, err := bus.Publish(ctx, draft("battle_victory", types.SeverityHigh, ids...))
	gt.NoError(t, err).Required()
	gt.Array(t, delivered).Length(1).Required()
	gt.Value(t, delivered[0].ID).Equal(eventID)

	var memoryCount int
	for _, id := range ids {
		memories, err := bus.GetCharacterMemories(ctx, id, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, memories).Length(1).Required()

		mem := memories[0]
		memoryCount++
		gt.Value(t, mem.EventID).Equal(eventID)
		gt.Value(t, mem.EmotionalValence).Equal(types.ValencePositive)
		gt.Value(t, mem.EmotionalIntensity).Equal(7)
		gt.Value(t, mem.Content).Equal("We defeated the shadow legion")
		// 5 base + 2 high severity + 2 decisive
		gt.Value(t, mem.Importance).Equal(9)
		gt.Value(t, mem.DecayRate).Equal(0.1)
		gt.Value(t, mem.MemoryType).Equal(types.MemoryTypeBattle)
		gt.Array(t, mem.AssociatedCharacterIDs).Length(2)
	}
	gt.Value(t, memoryCount).Equal(3)

	pairs := [][2]model.CharacterID{{ids[0], ids[1]}, {ids[0], ids[2]}, {ids[1], ids[2]}}
	for _, pair := range pairs {
		rel, err := bus.GetRelationship(ctx, pair[0], pair[1])
		gt.NoError(t, err).Required()
		gt.Value(t, rel.TrustLevel).Equal(5)
		gt.Value(t, rel.RespectLevel).Equal(3)
		gt.Value(t, rel.AffectionLevel).Equal(0)
		gt.Value(t, rel.RivalryIntensity).Equal(0)
		gt.Value(t, rel.Trajectory).Equal(types.TrajectoryImproving)
		gt.Value(t, rel.Status).Equal(types.RelationshipAcquaintances)
		gt.Array(t, rel.SharedEventIDs).Equal([]model.EventID{eventID})
		gt.Array(t, rel.ResolutionEventIDs).Equal([]model.EventID{eventID})
		gt.Value(t, rel.InteractionCount).Equal(1)
		gt.Value(t, rel.PositiveInteractions).Equal(1)
	}

	rows, err := repo.Relationship().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(3)
}

func TestPublish_IntensityFollowsSeverity(t *testing.T) {
	testCases := []struct {
		severity  types.Severity
		intensity int
	}{
		{types.SeverityLow, 3},
		{types.SeverityMedium, 5},
		{types.SeverityHigh, 7},
		{types.SeverityCritical, 10},
	}

	for _, tc := range testCases {
		t.Run(string(tc.severity), func(t *testing.T) {
			ctx := context.Background()
			repo := newSeededRepo(t)
			ids := newCharacters(t, repo, 4)
			bus := newTestBus(t, repo)

			for _, eventType := range []types.EventType{"battle_victory", "argument", "first_meeting"} {
				_, err := bus.Publish(ctx, draft(eventType, tc.severity, ids...))
				gt.NoError(t, err).Required()
			}

			for _, id := range ids {
				memories, err := bus.GetCharacterMemories(ctx, id, nil)
				gt.NoError(t, err).Required()
				gt.Array(t, memories).Length(3)
				for _, mem := range memories {
					gt.Value(t, mem.EmotionalIntensity).Equal(tc.intensity)
				}
			}
		})
	}
}

func TestPublish_SingleParticipant(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 1)
	bus := newTestBus(t, repo)

	// a type without effect row is fine when no pair exists
	eventID, err := bus.Publish(ctx, draft("solo_training", types.SeverityLow, ids[0]))
	gt.NoError(t, err).Required()

	memories, err := bus.GetCharacterMemories(ctx, ids[0], nil)
	gt.NoError(t, err).Required()
	gt.Array(t, memories).Length(1).Required()
	gt.Value(t, memories[0].EventID).Equal(eventID)
	gt.Value(t, memories[0].Content).Equal("I defeated the shadow legion")
	// unclassified types fall back to the neutral default
	gt.Value(t, memories[0].EmotionalValence).Equal(types.ValenceNeutral)
	gt.Value(t, memories[0].MemoryType).Equal(types.MemoryTypeSocial)
	gt.Value(t, memories[0].DecayRate).Equal(0.5)
	gt.Value(t, memories[0].Importance).Equal(5)
}

func TestPublish_MissingEffectKeepsEventAndMemories(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 2)
	bus := newTestBus(t, repo)

	called := false
	bus.Subscribe(usecase.AllEvents, func(context.Context, *model.Event) error {
		called = true
		return nil
	})

	eventID, err := bus.Publish(ctx, draft("unregistered_duel", types.SeverityMedium, ids...))
	gt.Error(t, err).Is(usecase.ErrLookup)
	gt.Error(t, err).Is(usecase.ErrEffectNotFound)
	gt.Value(t, eventID).NotEqual(model.EventID(""))

	ev, err := bus.GetEvent(ctx, eventID)
	gt.NoError(t, err).Required()
	gt.Value(t, ev.Type).Equal(types.EventType("unregistered_duel"))

	for _, id := range ids {
		memories, err := bus.GetCharacterMemories(ctx, id, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, memories).Length(1)
	}

	_, err = bus.GetRelationship(ctx, ids[0], ids[1])
	gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)
	gt.Bool(t, called).False()
}

func TestPublish_UnregisteredCharacterIsLookupError(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 1)
	bus := newTestBus(t, repo)

	_, err := bus.Publish(ctx, draft("shared_meal", types.SeverityLow, ids[0], model.NewCharacterID()))
	gt.Error(t, err).Is(usecase.ErrLookup)
}

func TestPublish_RelationshipPersistenceFailurePropagates(t *testing.T) {
	ctx := context.Background()
	base := newSeededRepo(t)
	ids := newCharacters(t, base, 2)
	repo := &failingRepo{Repository: base}
	bus := newTestBus(t, repo)

	_, err := bus.Publish(ctx, draft("shared_meal", types.SeverityLow, ids...))
	gt.NoError(t, err).Required()

	called := false
	bus.Subscribe(usecase.AllEvents, func(context.Context, *model.Event) error {
		called = true
		return nil
	})

	repo.failRelationships = true
	eventID, err := bus.Publish(ctx, draft("shared_meal", types.SeverityLow, ids...))
	gt.Error(t, err).Is(usecase.ErrPersistence)
	gt.Error(t, err).Is(errInjected)
	gt.Bool(t, called).False()

	// the cache still matches the store
	rel, err := bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()
	gt.Value(t, rel.TrustLevel).Equal(1)
	gt.Value(t, rel.InteractionCount).Equal(1)

	// the event itself was recorded
	_, err = bus.GetEvent(ctx, eventID)
	gt.NoError(t, err)
}

func TestPublish_EventAndMemoryPersistenceFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	base := newSeededRepo(t)
	ids := newCharacters(t, base, 2)
	repo := &failingRepo{Repository: base, failEvents: true, failMemories: true}
	bus := newTestBus(t, repo)

	eventID, err := bus.Publish(ctx, draft("battle_victory", types.SeverityMedium, ids...))
	gt.NoError(t, err).Required()

	ev, err := bus.GetEvent(ctx, eventID)
	gt.NoError(t, err).Required()
	gt.Value(t, ev.ID).Equal(eventID)

	memories, err := bus.GetCharacterMemories(ctx, ids[0], nil)
	gt.NoError(t, err).Required()
	gt.Array(t, memories).Length(1)

	stored, err := base.Event().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(0)

	_, err = bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err)
}

func TestPublish_ScoresAreClamped(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	gt.NoError(t, repo.Lookup().PutEffect(ctx, &model.EventEffect{
		EventType: "blood_oath", Trust: 90, Respect: 90, Affection: 90, Rivalry: -90,
	})).Required()
	gt.NoError(t, repo.Lookup().PutEffect(ctx, &model.EventEffect{
		EventType: "betrayal", Trust: -150, Respect: -150, Affection: -150, Rivalry: 150,
	})).Required()
	ids := newCharacters(t, repo, 2)
	bus := newTestBus(t, repo)

	for range 3 {
		_, err := bus.Publish(ctx, draft("blood_oath", types.SeverityCritical, ids...))
		gt.NoError(t, err).Required()
	}
	rel, err := bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()
	gt.Value(t, rel.TrustLevel).Equal(100)
	gt.Value(t, rel.RespectLevel).Equal(100)
	gt.Value(t, rel.AffectionLevel).Equal(100)
	gt.Value(t, rel.RivalryIntensity).Equal(0)
	gt.Value(t, rel.Status).Equal(types.RelationshipBestFriends)

	_, err = bus.Publish(ctx, draft("betrayal", types.SeverityCritical, ids...))
	gt.NoError(t, err).Required()
	rel, err = bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()
	gt.Value(t, rel.TrustLevel).Equal(-50)
	gt.Value(t, rel.AffectionLevel).Equal(-50)
	gt.Value(t, rel.RivalryIntensity).Equal(100)
	gt.Value(t, rel.Trajectory).Equal(types.TrajectoryDeclining)
	gt.Value(t, rel.NegativeInteractions).Equal(1)
	gt.Value(t, rel.PositiveInteractions).Equal(3)
	gt.Value(t, rel.InteractionCount).Equal(4)

	memories, err := bus.GetCharacterMemories(ctx, ids[0], nil)
	gt.NoError(t, err).Required()
	for _, mem := range memories {
		gt.Bool(t, mem.Importance >= 1 && mem.Importance <= 10).True()
	}
}

func TestPublish_SeedsFromDisposition(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	seedTables(t, repo)

	a := &model.Character{ID: model.NewCharacterID(), Species: "human", Archetype: "warrior"}
	b := &model.Character{ID: model.NewCharacterID(), Species: "vampire", Archetype: "scholar"}
	gt.NoError(t, repo.Character().Put(ctx, a)).Required()
	gt.NoError(t, repo.Character().Put(ctx, b)).Required()
	gt.NoError(t, repo.Lookup().PutSpeciesModifier(ctx, &model.DispositionModifier{Left: "vampire", Right: "human", Modifier: -15})).Required()
	gt.NoError(t, repo.Lookup().PutArchetypeModifier(ctx, &model.DispositionModifier{Left: "warrior", Right: "scholar", Modifier: -10})).Required()

	bus := usecase.New(repo, usecase.WithJitter(func() int { return -2 }))
	gt.NoError(t, bus.Rehydrate(ctx)).Required()

	_, err := bus.Publish(ctx, draft("first_meeting", types.SeverityLow, a.ID, b.ID))
	gt.NoError(t, err).Required()

	rel, err := bus.GetRelationship(ctx, a.ID, b.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, rel.BaseDisposition).Equal(-27)
	gt.Value(t, rel.SpeciesModifier).Equal(-15)
	gt.Value(t, rel.ArchetypeModifier).Equal(-10)
	gt.Value(t, rel.TrustLevel).Equal(-27)
	gt.Value(t, rel.RespectLevel).Equal(-19)
	gt.Value(t, rel.AffectionLevel).Equal(-14)
	gt.Value(t, rel.RivalryIntensity).Equal(20)
	gt.Value(t, rel.ProgressScore).Equal(0)
	gt.Value(t, rel.Status).Equal(types.RelationshipRivals)
	gt.Value(t, rel.Trajectory).Equal(types.TrajectoryStable)
}

func TestPublish_JitterIsBounded(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 2)

	bus := usecase.New(repo, usecase.WithJitter(func() int { return 40 }))
	gt.NoError(t, bus.Rehydrate(ctx)).Required()

	_, err := bus.Publish(ctx, draft("first_meeting", types.SeverityLow, ids...))
	gt.NoError(t, err).Required()

	rel, err := bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()
	gt.Value(t, rel.BaseDisposition).Equal(model.SeedJitter)
}

func TestPublish_PairsDoNotCrossContaminate(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 5)
	bus := newTestBus(t, repo)

	_, err := bus.Publish(ctx, draft("battle_victory", types.SeverityLow, ids[0], ids[1]))
	gt.NoError(t, err).Required()
	before, err := bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()

	_, err = bus.Publish(ctx, draft("argument", types.SeverityLow, ids[2], ids[3]))
	gt.NoError(t, err).Required()
	_, err = bus.Publish(ctx, draft("argument", types.SeverityLow, ids[3], ids[4]))
	gt.NoError(t, err).Required()

	after, err := bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()
	gt.Value(t, after).Equal(before)

	_, err = bus.GetRelationship(ctx, ids[0], ids[2])
	gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)
	_, err = bus.GetRelationship(ctx, ids[2], ids[4])
	gt.Error(t, err).Is(usecase.ErrRelationshipNotFound)
}

func TestPublish_ConcurrentUpdatesOfOnePair(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 2)
	bus := newTestBus(t, repo)

	const n = 50
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// alternate the order of the pair
			participants := []model.CharacterID{ids[0], ids[1]}
			if i%2 == 1 {
				participants = []model.CharacterID{ids[1], ids[0]}
			}
			if _, err := bus.Publish(ctx, draft("shared_meal", types.SeverityLow, participants...)); err != nil {
				t.Errorf("publish failed: %v", err)
			}
		}()
	}
	wg.Wait()

	rel, err := bus.GetRelationship(ctx, ids[0], ids[1])
	gt.NoError(t, err).Required()
	gt.Value(t, rel.TrustLevel).Equal(n)
	gt.Value(t, rel.InteractionCount).Equal(n)
	gt.Array(t, rel.SharedEventIDs).Length(n)

	stored, err := repo.Relationship().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(1).Required()
	gt.Value(t, stored[0].TrustLevel).Equal(n)
}

func TestGetRelationship(t *testing.T) {
	ctx := context.Background()
	repo := newSeededRepo(t)
	ids := newCharacters(t, repo, 3)
	bus := newTestBus(t, repo)

	_, err := bus.Publish(ctx, draft("argument", types.SeverityLow, ids[0], ids[1]))
	gt.NoError(t, err).Required()
	_, err = bus.Publish(ctx, draft("shared_meal", types.SeverityLow, ids[0], ids[2]))
	gt.NoError(t, err).Required()

	t.Run("views are oriented from the first id", func(t *testing.T) {
		ab, err := bus.GetRelationship(ctx, ids[0], ids[1])
		gt.NoError(t, err).Required()
		gt.Value(t, ab.CharacterID).Equal(ids[0])
		gt.Value(t, ab.TargetCharacterID).Equal(ids[1])

		ba, err := bus.GetRelationship(ctx, ids[1], ids[0])
		gt.NoError(t, err).Required()
		gt.Value(t, ba.CharacterID).Equal(ids[1])
		gt.Value(t, ba.TargetCharacterID).Equal(ids[0])
		gt.Value(t, ba.TrustLevel).Equal(ab.TrustLevel)
		gt.Array(t, ba.ConflictEventIDs).Length(1)
	})

	t.Run("self relationship is a validation error", func(t *testing.T) {
		_, err := bus.GetRelationship(ctx, ids[0], ids[0])
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("malformed id is a validation error", func(t *testing.T) {
		_, err := bus.GetRelationship(ctx, ids[0], "sun_wukong")
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("summary lists every partner", func(t *testing.T) {
		summary, err := bus.GetRelationshipSummary(ctx, ids[0])
		gt.NoError(t, err).Required()
		gt.Value(t, len(summary)).Equal(2)
		gt.Map(t, summary).HasKey(ids[1])
		gt.Map(t, summary).HasKey(ids[2])
		gt.Value(t, summary[ids[2]].CharacterID).Equal(ids[0])

		summary, err = bus.GetRelationshipSummary(ctx, ids[1])
		gt.NoError(t, err).Required()
		gt.Value(t, len(summary)).Equal(1)
	})

	t.Run("returned rows are copies", func(t *testing.T) {
		rel, err := bus.GetRelationship(ctx, ids[0], ids[2])
		gt.NoError(t, err).Required()
		rel.TrustLevel = -100
		rel.SharedEventIDs[0] = "tampered"

		again, err := bus.GetRelationship(ctx, ids[0], ids[2])
		gt.NoError(t, err).Required()
		gt.Value(t, again.TrustLevel).Equal(1)
		gt.Value(t, again.SharedEventIDs[0]).NotEqual(model.EventID("tampered"))
	})
}
