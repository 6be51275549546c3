package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

const (
	kindSpecies   = "species"
	kindArchetype = "archetype"
)

type lookupRepository struct {
	db *sql.DB
}

func (r *lookupRepository) GetEffect(ctx context.Context, eventType types.EventType) (*model.EventEffect, error) {
	var (
		effect                   = model.EventEffect{EventType: eventType}
		isConflict, isResolution int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT trust, respect, affection, rivalry, is_conflict, is_resolution FROM event_effects WHERE event_type = ?`,
		string(eventType)).Scan(&effect.Trust, &effect.Respect, &effect.Affection, &effect.Rivalry, &isConflict, &isResolution)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "effect not found", goerr.V(model.EventTypeKey, eventType))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query effect", goerr.V(model.EventTypeKey, eventType))
	}
	effect.IsConflict = isConflict != 0
	effect.IsResolution = isResolution != 0
	return &effect, nil
}

func (r *lookupRepository) PutEffect(ctx context.Context, effect *model.EventEffect) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_effects (event_type, trust, respect, affection, rivalry, is_conflict, is_resolution)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(event_type) DO UPDATE SET trust = excluded.trust, respect = excluded.respect,
		   affection = excluded.affection, rivalry = excluded.rivalry,
		   is_conflict = excluded.is_conflict, is_resolution = excluded.is_resolution`,
		string(effect.EventType), effect.Trust, effect.Respect, effect.Affection, effect.Rivalry,
		boolToInt(effect.IsConflict), boolToInt(effect.IsResolution))
	if err != nil {
		return goerr.Wrap(err, "failed to upsert effect", goerr.V(model.EventTypeKey, effect.EventType))
	}
	return nil
}

func (r *lookupRepository) GetClassification(ctx context.Context, eventType types.EventType) (*model.Classification, error) {
	var (
		cls                            = model.Classification{EventType: eventType}
		valence, memType, significance string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT valence, memory_type, significance FROM event_classifications WHERE event_type = ?`,
		string(eventType)).Scan(&valence, &memType, &significance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "classification not found", goerr.V(model.EventTypeKey, eventType))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query classification", goerr.V(model.EventTypeKey, eventType))
	}
	cls.Valence = types.Valence(valence)
	cls.MemoryType = types.MemoryType(memType)
	cls.Significance = types.Significance(significance)
	return &cls, nil
}

func (r *lookupRepository) PutClassification(ctx context.Context, cls *model.Classification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_classifications (event_type, valence, memory_type, significance) VALUES (?, ?, ?, ?)
		 ON CONFLICT(event_type) DO UPDATE SET valence = excluded.valence, memory_type = excluded.memory_type, significance = excluded.significance`,
		string(cls.EventType), string(cls.Valence), string(cls.MemoryType), string(cls.Significance))
	if err != nil {
		return goerr.Wrap(err, "failed to upsert classification", goerr.V(model.EventTypeKey, cls.EventType))
	}
	return nil
}

func (r *lookupRepository) GetSpeciesModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error) {
	return r.getModifier(ctx, kindSpecies, left, right)
}

func (r *lookupRepository) PutSpeciesModifier(ctx context.Context, m *model.DispositionModifier) error {
	return r.putModifier(ctx, kindSpecies, m)
}

func (r *lookupRepository) GetArchetypeModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error) {
	return r.getModifier(ctx, kindArchetype, left, right)
}

func (r *lookupRepository) PutArchetypeModifier(ctx context.Context, m *model.DispositionModifier) error {
	return r.putModifier(ctx, kindArchetype, m)
}

func sortedSides(left, right string) (string, string) {
	if left > right {
		return right, left
	}
	return left, right
}

func (r *lookupRepository) getModifier(ctx context.Context, kind, left, right string) (*model.DispositionModifier, error) {
	a, b := sortedSides(left, right)

	var m model.DispositionModifier
	err := r.db.QueryRowContext(ctx,
		`SELECT left_side, right_side, modifier, description FROM disposition_modifiers WHERE kind = ? AND side_a = ? AND side_b = ?`,
		kind, a, b).Scan(&m.Left, &m.Right, &m.Modifier, &m.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "modifier not found",
			goerr.V("kind", kind), goerr.V("left", left), goerr.V("right", right))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query modifier",
			goerr.V("kind", kind), goerr.V("left", left), goerr.V("right", right))
	}
	return &m, nil
}

func (r *lookupRepository) putModifier(ctx context.Context, kind string, m *model.DispositionModifier) error {
	a, b := sortedSides(m.Left, m.Right)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO disposition_modifiers (kind, side_a, side_b, left_side, right_side, modifier, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(kind, side_a, side_b) DO UPDATE SET left_side = excluded.left_side, right_side = excluded.right_side,
		   modifier = excluded.modifier, description = excluded.description`,
		kind, a, b, m.Left, m.Right, m.Modifier, m.Description)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert modifier",
			goerr.V("kind", kind), goerr.V("left", m.Left), goerr.V("right", m.Right))
	}
	return nil
}
