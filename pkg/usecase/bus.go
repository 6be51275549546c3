package usecase

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/service/lookup"
	"github.com/secmon-lab/chronicle/pkg/utils/errutil"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// EventBus accepts game events, derives memories and relationships from
// them and notifies subscribers. It is safe for concurrent use. Build one
// per process with New and call Rehydrate before Publish.
type EventBus struct {
	repo   interfaces.Repository
	lookup *lookup.Service
	clock  func() time.Time
	jitter func() int

	retention       time.Duration
	importanceFloor int
	safetyWindow    time.Duration

	ready atomic.Bool

	events        *eventIndex
	memories      *memoryEngine
	relationships *relationshipEngine
	router        *router
}

type Option func(*EventBus)

// WithLookup replaces the default lookup service built over the repository
func WithLookup(svc *lookup.Service) Option {
	return func(b *EventBus) {
		b.lookup = svc
	}
}

// WithClock sets the time source used to stamp events
func WithClock(clock func() time.Time) Option {
	return func(b *EventBus) {
		b.clock = clock
	}
}

// WithJitter sets the source of the random variance added to a new
// relationship's disposition. Values are clamped to ±model.SeedJitter.
func WithJitter(jitter func() int) Option {
	return func(b *EventBus) {
		b.jitter = jitter
	}
}

// WithRetention sets how long low-importance records are kept
func WithRetention(d time.Duration) Option {
	return func(b *EventBus) {
		b.retention = d
	}
}

// WithImportanceFloor sets the importance at or above which records are
// never pruned
func WithImportanceFloor(floor int) Option {
	return func(b *EventBus) {
		b.importanceFloor = floor
	}
}

// WithSafetyWindow sets the minimum age of a record before the prune sweep
// may touch it
func WithSafetyWindow(d time.Duration) Option {
	return func(b *EventBus) {
		b.safetyWindow = d
	}
}

func defaultJitter() int {
	return rand.IntN(2*model.SeedJitter+1) - model.SeedJitter
}

func New(repo interfaces.Repository, opts ...Option) *EventBus {
	b := &EventBus{
		repo:            repo,
		clock:           func() time.Time { return time.Now().UTC() },
		jitter:          defaultJitter,
		retention:       DefaultRetention,
		importanceFloor: DefaultImportanceFloor,
		safetyWindow:    DefaultSafetyWindow,
		events:          newEventIndex(),
		memories:        newMemoryEngine(),
		router:          newRouter(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.lookup == nil {
		b.lookup = lookup.New(repo)
	}
	if b.safetyWindow < MinSafetyWindow {
		b.safetyWindow = MinSafetyWindow
	}
	jitter := b.jitter
	b.relationships = newRelationshipEngine(repo.Relationship(), b.lookup, func() int {
		return min(model.SeedJitter, max(-model.SeedJitter, jitter()))
	})

	return b
}

// Ready reports whether Rehydrate has completed
func (b *EventBus) Ready() bool {
	return b.ready.Load()
}

// Publish validates draft, records it and runs every derivation before
// returning. A validation failure leaves no trace. If the event type has
// no relationship effect, or a relationship write fails, the event and its
// memories are kept and the id is returned together with the error.
func (b *EventBus) Publish(ctx context.Context, draft *model.EventDraft) (model.EventID, error) {
	return b.publish(ctx, draft, nil)
}

func (b *EventBus) publish(ctx context.Context, draft *model.EventDraft, override memoryOverride) (model.EventID, error) {
	if !b.ready.Load() {
		return "", goerr.Wrap(ErrNotReady, "publish called before rehydration")
	}
	if draft == nil {
		return "", goerr.Wrap(model.ErrMissingRequired, "event draft is nil")
	}
	if err := draft.Validate(); err != nil {
		return "", goerr.Wrap(err, "rejected event", goerr.V(EventTypeKey, draft.Type))
	}

	now := b.clock()
	ev := model.NewEvent(model.NewEventID(now), now, draft)
	ctx = logging.With(ctx, logging.From(ctx).With("event_id", ev.ID, "event_type", ev.Type))

	b.events.add(ev)
	if err := b.repo.Event().Put(ctx, ev); err != nil {
		errutil.Handle(ctx, err, "failed to persist event")
	}

	cls := b.classify(ctx, ev.Type)
	for _, mem := range deriveMemories(ev, cls, override) {
		b.memories.add(mem.Copy())
		if err := b.repo.Memory().Put(ctx, mem); err != nil {
			errutil.Handle(ctx, err, "failed to persist memory")
		}
	}

	if err := b.relationships.apply(ctx, ev); err != nil {
		return ev.ID, err
	}

	b.router.deliver(ctx, ev)
	return ev.ID, nil
}

// classify returns the classification of eventType, falling back to the
// neutral default when the table has no row or cannot be read
func (b *EventBus) classify(ctx context.Context, eventType types.EventType) *model.Classification {
	cls, ok, err := b.lookup.Classification(ctx, eventType)
	if err != nil {
		errutil.Handle(ctx, err, "failed to read classification, using default")
		return model.DefaultClassification(eventType)
	}
	if !ok {
		logging.From(ctx).Warn("no classification for event type, using default", "event_type", eventType)
		return model.DefaultClassification(eventType)
	}
	return cls
}

// Subscribe registers handler for eventType, or for every event when
// eventType is AllEvents. The returned function removes the subscription;
// calling it more than once is harmless.
func (b *EventBus) Subscribe(eventType types.EventType, handler Handler) func() {
	return b.router.subscribe(eventType, handler)
}

// GetEvent returns one event by id
func (b *EventBus) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	ev, pruned := b.events.get(id)
	switch {
	case ev != nil:
		return ev, nil
	case pruned:
		return nil, goerr.Wrap(ErrEventPruned, "event body is gone", goerr.V(EventIDKey, id))
	default:
		return nil, goerr.Wrap(ErrEventNotFound, "unknown event", goerr.V(EventIDKey, id))
	}
}

// GetCharacterEvents returns the events id took part in, newest first
func (b *EventBus) GetCharacterEvents(ctx context.Context, id model.CharacterID, filter *model.EventFilter) ([]*model.Event, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return b.events.forCharacter(id, filter, b.clock()), nil
}

// GetEventsByType returns the events of one type, newest first
func (b *EventBus) GetEventsByType(ctx context.Context, eventType types.EventType, filter *model.EventFilter) ([]*model.Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return b.events.forType(eventType, filter, b.clock()), nil
}

// GetEventsByDay returns the events of one UTC day (model.DayBucketLayout),
// newest first
func (b *EventBus) GetEventsByDay(ctx context.Context, day string) ([]*model.Event, error) {
	if _, err := time.Parse(model.DayBucketLayout, day); err != nil {
		return nil, goerr.Wrap(model.ErrValidation, "invalid day bucket", goerr.V("day", day))
	}
	return b.events.forDay(day), nil
}

// GetCharacterMemories returns id's memories, most important first
func (b *EventBus) GetCharacterMemories(ctx context.Context, id model.CharacterID, filter *model.MemoryFilter) ([]*model.Memory, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if filter != nil && filter.MemoryType != "" && !filter.MemoryType.IsValid() {
		return nil, goerr.Wrap(model.ErrInvalidEnum, "invalid memory type", goerr.V("memory_type", filter.MemoryType))
	}
	return b.memories.forCharacter(id, filter), nil
}

// GetMemory returns one memory by id
func (b *EventBus) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	return b.memories.get(id)
}

// RecallMemory records one recollection of the memory. The store update is
// best-effort. Recalls of one memory reach the store in the order they were
// counted.
func (b *EventBus) RecallMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	unlock := b.memories.recalls.lock(id)
	defer unlock()

	mem, err := b.memories.recall(id, b.clock())
	if err != nil {
		return nil, err
	}

	if err := b.repo.Memory().UpdateRecall(ctx, mem.ID, mem.RecallCount, mem.LastRecalled); err != nil {
		errutil.Handle(ctx, err, "failed to persist memory recall")
	}
	return mem, nil
}

// GetRelationship returns the relationship oriented from a towards b.
// Pairs that never shared an event return ErrRelationshipNotFound.
func (b *EventBus) GetRelationship(ctx context.Context, a, target model.CharacterID) (*model.Relationship, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return b.relationships.get(a, target)
}

// GetRelationshipSummary returns every relationship of id keyed by the
// other character
func (b *EventBus) GetRelationshipSummary(ctx context.Context, id model.CharacterID) (map[model.CharacterID]*model.Relationship, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return b.relationships.summary(id), nil
}
