package interfaces

import (
	"context"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// LookupRepository holds the tables that drive relationship and memory
// derivation. Every Get returns ErrNotFound when no row exists.
type LookupRepository interface {
	GetEffect(ctx context.Context, eventType types.EventType) (*model.EventEffect, error)
	PutEffect(ctx context.Context, effect *model.EventEffect) error

	GetClassification(ctx context.Context, eventType types.EventType) (*model.Classification, error)
	PutClassification(ctx context.Context, c *model.Classification) error

	// GetSpeciesModifier and GetArchetypeModifier match the row in either
	// order of left and right.
	GetSpeciesModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error)
	PutSpeciesModifier(ctx context.Context, m *model.DispositionModifier) error

	GetArchetypeModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error)
	PutArchetypeModifier(ctx context.Context, m *model.DispositionModifier) error
}
