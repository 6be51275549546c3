package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type relationshipRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *relationshipRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionRelationships))
}

func (r *relationshipRepository) Get(ctx context.Context, key model.PairKey) (*model.Relationship, error) {
	docSnap, err := r.collection().Doc(key.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "relationship not found", goerr.V(model.PairKeyKey, key.String()))
		}
		return nil, goerr.Wrap(err, "failed to get relationship", goerr.V(model.PairKeyKey, key.String()))
	}

	var rel model.Relationship
	if err := docSnap.DataTo(&rel); err != nil {
		return nil, goerr.Wrap(err, "failed to decode relationship", goerr.V(model.PairKeyKey, key.String()))
	}
	return &rel, nil
}

// Upsert runs fn inside a Firestore transaction. Firestore retries the
// transaction on contention, so fn may run more than once.
func (r *relationshipRepository) Upsert(ctx context.Context, key model.PairKey, fn interfaces.RelationshipUpdateFunc) (*model.Relationship, error) {
	docRef := r.collection().Doc(key.String())

	var stored *model.Relationship
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current *model.Relationship
		docSnap, err := tx.Get(docRef)
		switch {
		case err == nil:
			var rel model.Relationship
			if err := docSnap.DataTo(&rel); err != nil {
				return goerr.Wrap(err, "failed to decode relationship")
			}
			current = &rel
		case status.Code(err) == codes.NotFound:
		default:
			return goerr.Wrap(err, "failed to get relationship")
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return goerr.New("relationship update returned nil")
		}

		stored = next.Copy()
		stored.CharacterID, stored.TargetCharacterID = key.Low, key.High
		return tx.Set(docRef, stored)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert relationship", goerr.V(model.PairKeyKey, key.String()))
	}

	return stored, nil
}

func (r *relationshipRepository) List(ctx context.Context) ([]*model.Relationship, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var result []*model.Relationship
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate relationships")
		}

		var rel model.Relationship
		if err := docSnap.DataTo(&rel); err != nil {
			return nil, goerr.Wrap(err, "failed to decode relationship", goerr.V("doc_id", docSnap.Ref.ID))
		}
		result = append(result, &rel)
	}

	return result, nil
}
