package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

type characterRepository struct {
	db *sql.DB
}

func (r *characterRepository) Get(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	ch := model.Character{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT template_id, name, species, archetype FROM characters WHERE id = ?`,
		string(id)).Scan(&ch.TemplateID, &ch.Name, &ch.Species, &ch.Archetype)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "character not found", goerr.V(model.CharacterIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query character", goerr.V(model.CharacterIDKey, id))
	}
	return &ch, nil
}

func (r *characterRepository) Put(ctx context.Context, character *model.Character) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO characters (id, template_id, name, species, archetype) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET template_id = excluded.template_id, name = excluded.name,
		   species = excluded.species, archetype = excluded.archetype`,
		string(character.ID), character.TemplateID, character.Name, character.Species, character.Archetype)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert character", goerr.V(model.CharacterIDKey, character.ID))
	}
	return nil
}
