package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

type relationshipRepository struct {
	db *sql.DB
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRelationship(ctx context.Context, q queryer, key model.PairKey) (*model.Relationship, error) {
	var body string
	err := q.QueryRowContext(ctx,
		`SELECT body FROM relationships WHERE low = ? AND high = ?`,
		string(key.Low), string(key.High)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V(model.PairKeyKey, key.String()))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query relationship", goerr.V(model.PairKeyKey, key.String()))
	}

	var rel model.Relationship
	if err := decode(body, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *relationshipRepository) Get(ctx context.Context, key model.PairKey) (*model.Relationship, error) {
	return getRelationship(ctx, r.db, key)
}

func (r *relationshipRepository) Upsert(ctx context.Context, key model.PairKey, fn interfaces.RelationshipUpdateFunc) (*model.Relationship, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction", goerr.V(model.PairKeyKey, key.String()))
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getRelationship(ctx, tx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	next, err := fn(current)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update relationship", goerr.V(model.PairKeyKey, key.String()))
	}
	if next == nil {
		return nil, goerr.New("relationship update returned nil", goerr.V(model.PairKeyKey, key.String()))
	}

	stored := next.Copy()
	stored.CharacterID, stored.TargetCharacterID = key.Low, key.High
	body, err := encode(stored)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode relationship", goerr.V(model.PairKeyKey, key.String()))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO relationships (low, high, updated_at, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(low, high) DO UPDATE SET updated_at = excluded.updated_at, body = excluded.body`,
		string(key.Low), string(key.High), formatTime(stored.UpdatedAt), body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert relationship", goerr.V(model.PairKeyKey, key.String()))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit relationship", goerr.V(model.PairKeyKey, key.String()))
	}
	return stored, nil
}

func (r *relationshipRepository) List(ctx context.Context) ([]*model.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM relationships ORDER BY low, high`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query relationships")
	}
	defer safe.Close(ctx, rows)

	var result []*model.Relationship
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, goerr.Wrap(err, "failed to scan relationship")
		}
		var rel model.Relationship
		if err := decode(body, &rel); err != nil {
			return nil, err
		}
		result = append(result, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate relationships")
	}
	return result, nil
}
