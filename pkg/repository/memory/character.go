package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

type characterRepository struct {
	mu         sync.RWMutex
	characters map[model.CharacterID]*model.Character
}

func newCharacterRepository() *characterRepository {
	return &characterRepository{
		characters: make(map[model.CharacterID]*model.Character),
	}
}

func (r *characterRepository) Get(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.characters[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "character not found", goerr.V(model.CharacterIDKey, id))
	}
	c := *ch
	return &c, nil
}

func (r *characterRepository) Put(ctx context.Context, character *model.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *character
	r.characters[character.ID] = &c
	return nil
}
