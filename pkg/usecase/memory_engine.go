package usecase

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

const baseMemoryImportance = 5

// memoryOverride adjusts a derived memory before it is stored
type memoryOverride func(mem *model.Memory)

// deriveMemories builds one memory per participant of ev. Every
// participant gets the same intensity, valence and importance.
func deriveMemories(ev *model.Event, cls *model.Classification, override memoryOverride) []*model.Memory {
	content := memoryContent(ev)
	importance := memoryImportance(ev.Severity, cls.Significance)

	memories := make([]*model.Memory, 0, len(ev.ParticipantIDs))
	for _, owner := range ev.ParticipantIDs {
		mem := &model.Memory{
			ID:                 model.NewMemoryID(ev.ID, owner),
			CharacterID:        owner,
			EventID:            ev.ID,
			MemoryType:         cls.MemoryType,
			Content:            content,
			EmotionalIntensity: ev.Severity.Intensity(),
			EmotionalValence:   cls.Valence,
			Importance:         importance,
			CreatedAt:          ev.Timestamp,
			LastRecalled:       ev.Timestamp,
			AssociatedCharacterIDs: slices.DeleteFunc(slices.Clone(ev.ParticipantIDs), func(id model.CharacterID) bool {
				return id == owner
			}),
			Tags:      slices.Clone(ev.Tags),
			DecayRate: cls.Significance.DecayRate(),
		}
		if override != nil {
			override(mem)
		}
		memories = append(memories, mem)
	}
	return memories
}

// memoryContent renders the shared recollection text
func memoryContent(ev *model.Event) string {
	pronoun := "I"
	if len(ev.ParticipantIDs) > 1 {
		pronoun = "We"
	}
	return pronoun + " " + strings.ToLower(ev.Description)
}

func memoryImportance(severity types.Severity, significance types.Significance) int {
	return clampImportance(baseMemoryImportance + severity.ImportanceBonus() + significance.ImportanceBonus())
}

func clampImportance(v int) int {
	return min(model.MaxImportance, max(model.MinImportance, v))
}

// memoryEngine holds every memory and the per-character memory index
type memoryEngine struct {
	mu          sync.RWMutex
	memories    map[model.MemoryID]*model.Memory
	byCharacter map[model.CharacterID][]model.MemoryID

	// held across a recall and its store write
	recalls *keyLocker[model.MemoryID]
}

func newMemoryEngine() *memoryEngine {
	return &memoryEngine{
		memories:    make(map[model.MemoryID]*model.Memory),
		byCharacter: make(map[model.CharacterID][]model.MemoryID),
		recalls:     newKeyLocker[model.MemoryID](),
	}
}

func (e *memoryEngine) add(memories ...*model.Memory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, mem := range memories {
		e.addLocked(mem)
	}
}

func (e *memoryEngine) addLocked(mem *model.Memory) {
	if _, exists := e.memories[mem.ID]; !exists {
		e.byCharacter[mem.CharacterID] = append(e.byCharacter[mem.CharacterID], mem.ID)
	}
	e.memories[mem.ID] = mem
}

func (e *memoryEngine) get(id model.MemoryID) (*model.Memory, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	mem, ok := e.memories[id]
	if !ok {
		return nil, goerr.Wrap(ErrMemoryNotFound, "unknown memory", goerr.V(MemoryIDKey, id))
	}
	return mem.Copy(), nil
}

// recall bumps the recall bookkeeping of id and returns the updated copy
func (e *memoryEngine) recall(id model.MemoryID, at time.Time) (*model.Memory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mem, ok := e.memories[id]
	if !ok {
		return nil, goerr.Wrap(ErrMemoryNotFound, "cannot recall unknown memory", goerr.V(MemoryIDKey, id))
	}
	mem.Recall(at)
	return mem.Copy(), nil
}

// forCharacter keeps the most recent Limit matches, then orders them by
// importance
func (e *memoryEngine) forCharacter(id model.CharacterID, filter *model.MemoryFilter) []*model.Memory {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var matched []*model.Memory
	for _, mid := range e.byCharacter[id] {
		mem, ok := e.memories[mid]
		if !ok || !filter.Match(mem) {
			continue
		}
		matched = append(matched, mem.Copy())
	}

	slices.SortStableFunc(matched, func(a, b *model.Memory) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if filter != nil && filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[len(matched)-filter.Limit:]
	}

	model.SortMemories(matched)
	return matched
}

func (e *memoryEngine) expired(cutoff time.Time, floor int) []model.MemoryID {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var ids []model.MemoryID
	for id, mem := range e.memories {
		if mem.CreatedAt.Before(cutoff) && mem.Importance < floor {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (e *memoryEngine) prune(ids []model.MemoryID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		mem, ok := e.memories[id]
		if !ok {
			continue
		}
		delete(e.memories, id)
		e.byCharacter[mem.CharacterID] = removeID(e.byCharacter[mem.CharacterID], id)
		if len(e.byCharacter[mem.CharacterID]) == 0 {
			delete(e.byCharacter, mem.CharacterID)
		}
	}
}

func (e *memoryEngine) reset(memories []*model.Memory) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.memories = make(map[model.MemoryID]*model.Memory, len(memories))
	e.byCharacter = make(map[model.CharacterID][]model.MemoryID)

	sorted := slices.Clone(memories)
	slices.SortStableFunc(sorted, func(a, b *model.Memory) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	for _, mem := range sorted {
		e.addLocked(mem)
	}
}

func (e *memoryEngine) len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.memories)
}
