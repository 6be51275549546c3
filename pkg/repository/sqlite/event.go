package sqlite

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

type eventRepository struct {
	db *sql.DB
}

func (r *eventRepository) Put(ctx context.Context, event *model.Event) error {
	body, err := encode(event)
	if err != nil {
		return goerr.Wrap(err, "failed to encode event", goerr.V(model.EventIDKey, event.ID))
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO events (id, event_type, timestamp, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET event_type = excluded.event_type, timestamp = excluded.timestamp, body = excluded.body`,
		string(event.ID), string(event.Type), formatTime(event.Timestamp), body)
	if err != nil {
		return goerr.Wrap(err, "failed to insert event", goerr.V(model.EventIDKey, event.ID))
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM events ORDER BY id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query events")
	}
	defer safe.Close(ctx, rows)

	var events []*model.Event
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, goerr.Wrap(err, "failed to scan event")
		}
		var ev model.Event
		if err := decode(body, &ev); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate events")
	}
	return events, nil
}

func (r *eventRepository) Delete(ctx context.Context, ids []model.EventID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, string(id)); err != nil {
			return goerr.Wrap(err, "failed to delete event", goerr.V(model.EventIDKey, id))
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO event_tombstones (id) VALUES (?)`, string(id)); err != nil {
			return goerr.Wrap(err, "failed to record event tombstone", goerr.V(model.EventIDKey, id))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit event deletion")
	}
	return nil
}

func (r *eventRepository) Tombstones(ctx context.Context) ([]model.EventID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM event_tombstones ORDER BY id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query event tombstones")
	}
	defer safe.Close(ctx, rows)

	var ids []model.EventID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, goerr.Wrap(err, "failed to scan event tombstone")
		}
		ids = append(ids, model.EventID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate event tombstones")
	}
	return ids, nil
}
