package interfaces

import (
	"context"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// EventRepository is the append-only event log
type EventRepository interface {
	// Put appends an event. Putting an existing id overwrites it.
	Put(ctx context.Context, event *model.Event) error

	// List returns every stored event, oldest first
	List(ctx context.Context) ([]*model.Event, error)

	// Delete removes pruned events and keeps their ids as tombstones.
	// Unknown ids are tombstoned as well.
	Delete(ctx context.Context, ids []model.EventID) error

	// Tombstones returns the id of every deleted event
	Tombstones(ctx context.Context) ([]model.EventID, error)
}
