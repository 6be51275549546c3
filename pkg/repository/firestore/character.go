package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

type characterRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *characterRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionCharacters))
}

func (r *characterRepository) Get(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	var ch model.Character
	if err := getDoc(ctx, r.collection().Doc(string(id)), &ch); err != nil {
		return nil, goerr.Wrap(err, "failed to get character", goerr.V(model.CharacterIDKey, id))
	}
	return &ch, nil
}

func (r *characterRepository) Put(ctx context.Context, character *model.Character) error {
	if _, err := r.collection().Doc(string(character.ID)).Set(ctx, character); err != nil {
		return goerr.Wrap(err, "failed to put character", goerr.V(model.CharacterIDKey, character.ID))
	}
	return nil
}
