// Package lookup resolves event types and character pairs to the table rows
// that drive memory and relationship derivation. Reads go through an
// expiring LRU cache, and concurrent misses for one key share a single
// store read.
package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// ErrLookup is the root of every lookup failure
var ErrLookup = goerr.New("lookup failed")

var (
	ErrEffectNotFound    = goerr.Wrap(ErrLookup, "no relationship effect registered for event type")
	ErrCharacterNotFound = goerr.Wrap(ErrLookup, "character not registered")
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 10 * time.Minute
)

// modifierRow caches modifier misses too, so a pair with no row does not
// hit the store on every new relationship
type modifierRow struct {
	modifier int
	found    bool
}

type classificationRow struct {
	classification *model.Classification
	found          bool
}

type Service struct {
	repo interfaces.Repository

	size int
	ttl  time.Duration

	effects         *expirable.LRU[types.EventType, *model.EventEffect]
	classifications *expirable.LRU[types.EventType, classificationRow]
	characters      *expirable.LRU[model.CharacterID, *model.Character]
	modifiers       *expirable.LRU[string, modifierRow]

	group singleflight.Group
}

type Option func(*Service)

// WithCacheSize bounds the number of cached rows per table
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.size = size
	}
}

// WithCacheTTL sets how long a cached row is trusted
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

func New(repo interfaces.Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		size: DefaultCacheSize,
		ttl:  DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.size <= 0 {
		s.size = DefaultCacheSize
	}

	s.effects = expirable.NewLRU[types.EventType, *model.EventEffect](s.size, nil, s.ttl)
	s.classifications = expirable.NewLRU[types.EventType, classificationRow](s.size, nil, s.ttl)
	s.characters = expirable.NewLRU[model.CharacterID, *model.Character](s.size, nil, s.ttl)
	s.modifiers = expirable.NewLRU[string, modifierRow](s.size, nil, s.ttl)
	return s
}

// Effect returns the relationship effect of eventType. An event type with
// no row is an error; there is no default effect.
func (s *Service) Effect(ctx context.Context, eventType types.EventType) (*model.EventEffect, error) {
	if effect, ok := s.effects.Get(eventType); ok {
		c := *effect
		return &c, nil
	}

	v, err, _ := s.group.Do("effect:"+string(eventType), func() (any, error) {
		effect, err := s.repo.Lookup().GetEffect(ctx, eventType)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrEffectNotFound, "missing effect row", goerr.V(model.EventTypeKey, eventType))
			}
			return nil, goerr.Wrap(err, "failed to read effect", goerr.V(model.EventTypeKey, eventType))
		}
		s.effects.Add(eventType, effect)
		return effect, nil
	})
	if err != nil {
		return nil, err
	}

	c := *v.(*model.EventEffect)
	return &c, nil
}

// Classification returns the memory classification of eventType. ok is
// false when the type has no row.
func (s *Service) Classification(ctx context.Context, eventType types.EventType) (*model.Classification, bool, error) {
	if row, hit := s.classifications.Get(eventType); hit {
		return cloneClassification(row), row.found, nil
	}

	v, err, _ := s.group.Do("classification:"+string(eventType), func() (any, error) {
		cls, err := s.repo.Lookup().GetClassification(ctx, eventType)
		switch {
		case err == nil:
			row := classificationRow{classification: cls, found: true}
			s.classifications.Add(eventType, row)
			return row, nil
		case errors.Is(err, interfaces.ErrNotFound):
			row := classificationRow{}
			s.classifications.Add(eventType, row)
			return row, nil
		default:
			return nil, goerr.Wrap(err, "failed to read classification", goerr.V(model.EventTypeKey, eventType))
		}
	})
	if err != nil {
		return nil, false, err
	}

	row := v.(classificationRow)
	return cloneClassification(row), row.found, nil
}

func cloneClassification(row classificationRow) *model.Classification {
	if !row.found {
		return nil
	}
	c := *row.classification
	return &c
}

// Disposition returns the species and archetype modifiers of the pair. A
// missing modifier row counts as 0 and is logged; an unregistered
// character is an error.
func (s *Service) Disposition(ctx context.Context, a, b model.CharacterID) (model.Disposition, error) {
	left, err := s.character(ctx, a)
	if err != nil {
		return model.Disposition{}, err
	}
	right, err := s.character(ctx, b)
	if err != nil {
		return model.Disposition{}, err
	}

	species, err := s.modifier(ctx, "species", left.Species, right.Species)
	if err != nil {
		return model.Disposition{}, err
	}
	archetype, err := s.modifier(ctx, "archetype", left.Archetype, right.Archetype)
	if err != nil {
		return model.Disposition{}, err
	}

	return model.Disposition{
		SpeciesModifier:   species,
		ArchetypeModifier: archetype,
	}, nil
}

func (s *Service) character(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	if ch, ok := s.characters.Get(id); ok {
		return ch, nil
	}

	v, err, _ := s.group.Do("character:"+string(id), func() (any, error) {
		ch, err := s.repo.Character().Get(ctx, id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrCharacterNotFound, "missing character row", goerr.V(model.CharacterIDKey, id))
			}
			return nil, goerr.Wrap(err, "failed to read character", goerr.V(model.CharacterIDKey, id))
		}
		if ch.Species == "" || ch.Archetype == "" {
			return nil, goerr.Wrap(ErrLookup, "character has no species or archetype", goerr.V(model.CharacterIDKey, id))
		}
		s.characters.Add(id, ch)
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Character), nil
}

func modifierKey(kind, left, right string) string {
	if left > right {
		left, right = right, left
	}
	return kind + ":" + left + ":" + right
}

func (s *Service) modifier(ctx context.Context, kind, left, right string) (int, error) {
	key := modifierKey(kind, left, right)
	if row, ok := s.modifiers.Get(key); ok {
		return row.modifier, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		var (
			m   *model.DispositionModifier
			err error
		)
		if kind == "species" {
			m, err = s.repo.Lookup().GetSpeciesModifier(ctx, left, right)
		} else {
			m, err = s.repo.Lookup().GetArchetypeModifier(ctx, left, right)
		}

		switch {
		case err == nil:
			row := modifierRow{modifier: m.Modifier, found: true}
			s.modifiers.Add(key, row)
			return row, nil
		case errors.Is(err, interfaces.ErrNotFound):
			logging.From(ctx).Warn("no disposition modifier for pair, using 0",
				"kind", kind, "left", left, "right", right)
			row := modifierRow{}
			s.modifiers.Add(key, row)
			return row, nil
		default:
			return nil, goerr.Wrap(err, "failed to read modifier",
				goerr.V("kind", kind), goerr.V("left", left), goerr.V("right", right))
		}
	})
	if err != nil {
		return 0, err
	}
	return v.(modifierRow).modifier, nil
}

// Purge drops every cached row, so the next read goes to the store
func (s *Service) Purge() {
	s.effects.Purge()
	s.classifications.Purge()
	s.characters.Purge()
	s.modifiers.Purge()
}
