package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		sentinelError error
		wantMatch     bool
	}{
		{
			name:          "ErrConfigNotFound can be identified",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrConfigNotFound,
			wantMatch:     true,
		},
		{
			name:          "ErrDuplicateEventType can be identified",
			err:           goerr.Wrap(config.ErrDuplicateEventType, "found duplicate", goerr.V(config.EventTypeKey, "battle_victory")),
			sentinelError: config.ErrDuplicateEventType,
			wantMatch:     true,
		},
		{
			name:          "ErrDuplicateModifier can be identified",
			err:           goerr.Wrap(config.ErrDuplicateModifier, "found duplicate", goerr.V(config.ModifierKey, "human/vampire")),
			sentinelError: config.ErrDuplicateModifier,
			wantMatch:     true,
		},
		{
			name:          "ErrInvalidBackend can be identified",
			err:           goerr.Wrap(config.ErrInvalidBackend, "unknown backend"),
			sentinelError: config.ErrInvalidBackend,
			wantMatch:     true,
		},
		{
			name:          "Different sentinel errors do not match",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrInvalidConfig,
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := errors.Is(tt.err, tt.sentinelError)
			gt.Value(t, matched).Equal(tt.wantMatch)
		})
	}
}

func TestConfigErrors_ContextExtraction(t *testing.T) {
	err := goerr.Wrap(config.ErrDuplicateCharacter, "duplicate character",
		goerr.V(config.CharacterIDKey, "3f2b8a1e-4c5d-4e6f-8a9b-0c1d2e3f4a5b"),
		goerr.V(config.IndexKey, 2))

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True().Required()
	gt.Value(t, ge.Values()[config.CharacterIDKey]).Equal("3f2b8a1e-4c5d-4e6f-8a9b-0c1d2e3f4a5b")
	gt.Value(t, ge.Values()[config.IndexKey]).Equal(2)
}
