package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

type memoryRepository struct {
	db *sql.DB
}

func (r *memoryRepository) Put(ctx context.Context, mem *model.Memory) error {
	body, err := encode(mem)
	if err != nil {
		return goerr.Wrap(err, "failed to encode memory", goerr.V(model.MemoryIDKey, mem.ID))
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO memories (id, character_id, event_id, created_at, recall_count, last_recalled, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET recall_count = excluded.recall_count, last_recalled = excluded.last_recalled, body = excluded.body`,
		string(mem.ID), string(mem.CharacterID), string(mem.EventID), formatTime(mem.CreatedAt),
		mem.RecallCount, formatTime(mem.LastRecalled), body)
	if err != nil {
		return goerr.Wrap(err, "failed to insert memory", goerr.V(model.MemoryIDKey, mem.ID))
	}
	return nil
}

func (r *memoryRepository) UpdateRecall(ctx context.Context, id model.MemoryID, recallCount int, lastRecalled time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memories SET recall_count = ?, last_recalled = ? WHERE id = ?`,
		recallCount, formatTime(lastRecalled), string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to update memory recall", goerr.V(model.MemoryIDKey, id))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows", goerr.V(model.MemoryIDKey, id))
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, id))
	}
	return nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*model.Memory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT recall_count, last_recalled, body FROM memories ORDER BY created_at, id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query memories")
	}
	defer safe.Close(ctx, rows)

	var memories []*model.Memory
	for rows.Next() {
		var (
			recallCount  int
			lastRecalled string
			body         string
		)
		if err := rows.Scan(&recallCount, &lastRecalled, &body); err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory")
		}

		var mem model.Memory
		if err := decode(body, &mem); err != nil {
			return nil, err
		}
		// recall columns are updated in place; the body keeps creation values
		mem.RecallCount = recallCount
		if mem.LastRecalled, err = parseTime(lastRecalled); err != nil {
			return nil, err
		}
		memories = append(memories, &mem)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate memories")
	}
	return memories, nil
}

func (r *memoryRepository) Delete(ctx context.Context, ids []model.MemoryID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, string(id)); err != nil {
			return goerr.Wrap(err, "failed to delete memory", goerr.V(model.MemoryIDKey, id))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit memory deletion")
	}
	return nil
}
