package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type lookupRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *lookupRepository) effects() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "event_effects"))
}

func (r *lookupRepository) classifications() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "event_classifications"))
}

func (r *lookupRepository) modifiers(kind string) *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, kind+"_modifiers"))
}

// modifierDocID is the same for both orders of left and right
func modifierDocID(left, right string) string {
	if left > right {
		left, right = right, left
	}
	return left + "__" + right
}

func (r *lookupRepository) GetEffect(ctx context.Context, eventType types.EventType) (*model.EventEffect, error) {
	var effect model.EventEffect
	if err := getDoc(ctx, r.effects().Doc(string(eventType)), &effect); err != nil {
		return nil, goerr.Wrap(err, "failed to get effect", goerr.V(model.EventTypeKey, eventType))
	}
	return &effect, nil
}

func (r *lookupRepository) PutEffect(ctx context.Context, effect *model.EventEffect) error {
	if _, err := r.effects().Doc(string(effect.EventType)).Set(ctx, effect); err != nil {
		return goerr.Wrap(err, "failed to put effect", goerr.V(model.EventTypeKey, effect.EventType))
	}
	return nil
}

func (r *lookupRepository) GetClassification(ctx context.Context, eventType types.EventType) (*model.Classification, error) {
	var cls model.Classification
	if err := getDoc(ctx, r.classifications().Doc(string(eventType)), &cls); err != nil {
		return nil, goerr.Wrap(err, "failed to get classification", goerr.V(model.EventTypeKey, eventType))
	}
	return &cls, nil
}

func (r *lookupRepository) PutClassification(ctx context.Context, cls *model.Classification) error {
	if _, err := r.classifications().Doc(string(cls.EventType)).Set(ctx, cls); err != nil {
		return goerr.Wrap(err, "failed to put classification", goerr.V(model.EventTypeKey, cls.EventType))
	}
	return nil
}

func (r *lookupRepository) GetSpeciesModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error) {
	return r.getModifier(ctx, "species", left, right)
}

func (r *lookupRepository) PutSpeciesModifier(ctx context.Context, m *model.DispositionModifier) error {
	return r.putModifier(ctx, "species", m)
}

func (r *lookupRepository) GetArchetypeModifier(ctx context.Context, left, right string) (*model.DispositionModifier, error) {
	return r.getModifier(ctx, "archetype", left, right)
}

func (r *lookupRepository) PutArchetypeModifier(ctx context.Context, m *model.DispositionModifier) error {
	return r.putModifier(ctx, "archetype", m)
}

func (r *lookupRepository) getModifier(ctx context.Context, kind, left, right string) (*model.DispositionModifier, error) {
	var m model.DispositionModifier
	if err := getDoc(ctx, r.modifiers(kind).Doc(modifierDocID(left, right)), &m); err != nil {
		return nil, goerr.Wrap(err, "failed to get modifier",
			goerr.V("kind", kind), goerr.V("left", left), goerr.V("right", right))
	}
	return &m, nil
}

func (r *lookupRepository) putModifier(ctx context.Context, kind string, m *model.DispositionModifier) error {
	if _, err := r.modifiers(kind).Doc(modifierDocID(m.Left, m.Right)).Set(ctx, m); err != nil {
		return goerr.Wrap(err, "failed to put modifier",
			goerr.V("kind", kind), goerr.V("left", m.Left), goerr.V("right", m.Right))
	}
	return nil
}

// getDoc decodes one document into v and maps a missing document to
// ErrNotFound
func getDoc(ctx context.Context, ref *firestore.DocumentRef, v any) error {
	docSnap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "document not found", goerr.V("doc_id", ref.ID))
		}
		return goerr.Wrap(err, "failed to get document", goerr.V("doc_id", ref.ID))
	}
	if err := docSnap.DataTo(v); err != nil {
		return goerr.Wrap(err, "failed to decode document", goerr.V("doc_id", ref.ID))
	}
	return nil
}
