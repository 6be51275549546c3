package interfaces

import (
	"context"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// CharacterRepository resolves character instances to their species and
// archetype
type CharacterRepository interface {
	Get(ctx context.Context, id model.CharacterID) (*model.Character, error)
	Put(ctx context.Context, character *model.Character) error
}
