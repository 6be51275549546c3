package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type eventRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *eventRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionEvents))
}

func (r *eventRepository) tombstones() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionTombstones))
}

type tombstone struct {
	EventID model.EventID `firestore:"event_id"`
}

func (r *eventRepository) Put(ctx context.Context, event *model.Event) error {
	if _, err := r.collection().Doc(string(event.ID)).Set(ctx, event); err != nil {
		return goerr.Wrap(err, "failed to put event", goerr.V(model.EventIDKey, event.ID))
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context) ([]*model.Event, error) {
	iter := r.collection().OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var events []*model.Event
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate events")
		}

		var ev model.Event
		if err := docSnap.DataTo(&ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode event", goerr.V("doc_id", docSnap.Ref.ID))
		}
		events = append(events, &ev)
	}

	return events, nil
}

func (r *eventRepository) Delete(ctx context.Context, ids []model.EventID) error {
	for _, id := range ids {
		// tombstone first so a failed delete never loses the id
		if _, err := r.tombstones().Doc(string(id)).Set(ctx, &tombstone{EventID: id}); err != nil {
			return goerr.Wrap(err, "failed to record event tombstone", goerr.V(model.EventIDKey, id))
		}
		if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to delete event", goerr.V(model.EventIDKey, id))
		}
	}
	return nil
}

func (r *eventRepository) Tombstones(ctx context.Context) ([]model.EventID, error) {
	iter := r.tombstones().OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var ids []model.EventID
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate event tombstones")
		}
		ids = append(ids, model.EventID(docSnap.Ref.ID))
	}
	return ids, nil
}
