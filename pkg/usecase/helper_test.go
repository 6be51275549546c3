package usecase_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/repository/memory"
	"github.com/secmon-lab/chronicle/pkg/usecase"
)

var (
	battleVictory = &model.EventEffect{EventType: "battle_victory", Trust: 5, Respect: 3, IsResolution: true}
	sharedMeal    = &model.EventEffect{EventType: "shared_meal", Trust: 1}
	argument      = &model.EventEffect{EventType: "argument", Trust: -3, Respect: -2, Affection: -2, Rivalry: 5, IsConflict: true}
	firstMeeting  = &model.EventEffect{EventType: "first_meeting"}
)

var classifications = []*model.Classification{
	{EventType: "battle_victory", Valence: types.ValencePositive, MemoryType: types.MemoryTypeBattle, Significance: types.SignificanceDecisive},
	{EventType: "argument", Valence: types.ValenceNegative, MemoryType: types.MemoryTypeConflict, Significance: types.SignificanceConflict},
	{EventType: "shared_meal", Valence: types.ValencePositive, MemoryType: types.MemoryTypeBonding, Significance: types.SignificanceRoutine},
}

// seedTables registers the effects and classifications every test uses
func seedTables(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	ctx := context.Background()

	for _, effect := range []*model.EventEffect{battleVictory, sharedMeal, argument, firstMeeting} {
		gt.NoError(t, repo.Lookup().PutEffect(ctx, effect)).Required()
	}
	for _, cls := range classifications {
		gt.NoError(t, repo.Lookup().PutClassification(ctx, cls)).Required()
	}
}

// newCharacters registers n characters sharing one species and archetype
func newCharacters(t *testing.T, repo interfaces.Repository, n int) []model.CharacterID {
	t.Helper()

	ids := make([]model.CharacterID, n)
	for i := range ids {
		ids[i] = model.NewCharacterID()
		gt.NoError(t, repo.Character().Put(context.Background(), &model.Character{
			ID:        ids[i],
			Species:   "human",
			Archetype: "warrior",
		})).Required()
	}
	return ids
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func zeroJitter() int { return 0 }

// newTestBus returns a rehydrated bus over repo with zero jitter
func newTestBus(t *testing.T, repo interfaces.Repository, opts ...usecase.Option) *usecase.EventBus {
	t.Helper()

	bus := usecase.New(repo, append([]usecase.Option{usecase.WithJitter(zeroJitter)}, opts...)...)
	gt.NoError(t, bus.Rehydrate(context.Background())).Required()
	return bus
}

func newSeededRepo(t *testing.T) *memory.Memory {
	t.Helper()
	repo := memory.New()
	seedTables(t, repo)
	return repo
}

func draft(eventType types.EventType, severity types.Severity, participants ...model.CharacterID) *model.EventDraft {
	return &model.EventDraft{
		Type:           eventType,
		Source:         "battle_system",
		ParticipantIDs: slices.Clone(participants),
		Severity:       severity,
		Category:       types.CategoryBattle,
		Description:    "Defeated the Shadow Legion",
		Tags:           []string{"arena"},
	}
}

var errInjected = errors.New("injected store failure")

// failingRepo fails the selected writes and reads of the wrapped store
type failingRepo struct {
	interfaces.Repository
	failEvents        bool
	failMemories      bool
	failRelationships bool
	failList          bool
}

func (r *failingRepo) Event() interfaces.EventRepository {
	return &failingEvents{EventRepository: r.Repository.Event(), repo: r}
}

func (r *failingRepo) Memory() interfaces.MemoryRepository {
	return &failingMemories{MemoryRepository: r.Repository.Memory(), repo: r}
}

func (r *failingRepo) Relationship() interfaces.RelationshipRepository {
	return &failingRelationships{RelationshipRepository: r.Repository.Relationship(), repo: r}
}

type failingEvents struct {
	interfaces.EventRepository
	repo *failingRepo
}

func (f *failingEvents) Put(ctx context.Context, ev *model.Event) error {
	if f.repo.failEvents {
		return errInjected
	}
	return f.EventRepository.Put(ctx, ev)
}

func (f *failingEvents) List(ctx context.Context) ([]*model.Event, error) {
	if f.repo.failList {
		return nil, errInjected
	}
	return f.EventRepository.List(ctx)
}

type failingMemories struct {
	interfaces.MemoryRepository
	repo *failingRepo
}

func (f *failingMemories) Put(ctx context.Context, mem *model.Memory) error {
	if f.repo.failMemories {
		return errInjected
	}
	return f.MemoryRepository.Put(ctx, mem)
}

type failingRelationships struct {
	interfaces.RelationshipRepository
	repo *failingRepo
}

func (f *failingRelationships) Upsert(ctx context.Context, key model.PairKey, fn interfaces.RelationshipUpdateFunc) (*model.Relationship, error) {
	if f.repo.failRelationships {
		return nil, errInjected
	}
	return f.RelationshipRepository.Upsert(ctx, key, fn)
}

// heldRecallRepo blocks the first UpdateRecall until release is closed
type heldRecallRepo struct {
	interfaces.Repository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newHeldRecallRepo(base interfaces.Repository) *heldRecallRepo {
	return &heldRecallRepo{
		Repository: base,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (r *heldRecallRepo) Memory() interfaces.MemoryRepository {
	return &heldRecalls{MemoryRepository: r.Repository.Memory(), repo: r}
}

type heldRecalls struct {
	interfaces.MemoryRepository
	repo *heldRecallRepo
}

func (h *heldRecalls) UpdateRecall(ctx context.Context, id model.MemoryID, count int, at time.Time) error {
	first := false
	h.repo.once.Do(func() { first = true })
	if first {
		close(h.repo.entered)
		<-h.repo.release
	}
	return h.MemoryRepository.UpdateRecall(ctx, id, count, at)
}
