package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *memoryRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionMemories))
}

func (r *memoryRepository) Put(ctx context.Context, mem *model.Memory) error {
	if _, err := r.collection().Doc(string(mem.ID)).Set(ctx, mem); err != nil {
		return goerr.Wrap(err, "failed to put memory", goerr.V(model.MemoryIDKey, mem.ID))
	}
	return nil
}

func (r *memoryRepository) UpdateRecall(ctx context.Context, id model.MemoryID, recallCount int, lastRecalled time.Time) error {
	_, err := r.collection().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "RecallCount", Value: recallCount},
		{Path: "LastRecalled", Value: lastRecalled},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "memory not found", goerr.V(model.MemoryIDKey, id))
		}
		return goerr.Wrap(err, "failed to update memory recall", goerr.V(model.MemoryIDKey, id))
	}
	return nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*model.Memory, error) {
	iter := r.collection().OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var memories []*model.Memory
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories")
		}

		var mem model.Memory
		if err := docSnap.DataTo(&mem); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory", goerr.V("doc_id", docSnap.Ref.ID))
		}
		memories = append(memories, &mem)
	}

	return memories, nil
}

func (r *memoryRepository) Delete(ctx context.Context, ids []model.MemoryID) error {
	for _, id := range ids {
		if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to delete memory", goerr.V(model.MemoryIDKey, id))
		}
	}
	return nil
}
