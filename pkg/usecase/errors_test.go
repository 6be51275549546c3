package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/usecase"
)

func TestErrorHierarchy(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		parent error
		want   bool
	}{
		{"pruned is a missing event", usecase.ErrEventPruned, usecase.ErrEventNotFound, true},
		{"missing event is not found", usecase.ErrEventNotFound, usecase.ErrNotFound, true},
		{"missing memory is not found", usecase.ErrMemoryNotFound, usecase.ErrNotFound, true},
		{"missing relationship is not found", usecase.ErrRelationshipNotFound, usecase.ErrNotFound, true},
		{"missing effect is a lookup error", usecase.ErrEffectNotFound, usecase.ErrLookup, true},
		{"invalid id is a validation error", model.ErrInvalidCharacterID, usecase.ErrValidation, true},
		{"self relationship is a validation error", model.ErrSelfRelationship, usecase.ErrValidation, true},
		{"lookup is not persistence", usecase.ErrLookup, usecase.ErrPersistence, false},
		{"not ready is not validation", usecase.ErrNotReady, usecase.ErrValidation, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, errors.Is(tc.err, tc.parent)).Equal(tc.want)
		})
	}
}
