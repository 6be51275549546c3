package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// Score bounds
const (
	MinAffinity = -100
	MaxAffinity = 100
	MinRivalry  = 0
	MaxRivalry  = 100

	// SeedJitter bounds the random variance added to a new pair's disposition
	SeedJitter = 5
	// hostileSeed is the disposition below which a new pair starts as rivals
	hostileSeed    = -20
	hostileRivalry = 20
)

// PairKey identifies the relationship between two characters regardless
// of the order they are named in. Low sorts before High.
type PairKey struct {
	Low  CharacterID
	High CharacterID
}

// NewPairKey builds the key for a and b
func NewPairKey(a, b CharacterID) (PairKey, error) {
	switch {
	case a == b:
		return PairKey{}, goerr.Wrap(ErrSelfRelationship, "pair needs two distinct characters", goerr.V(CharacterIDKey, a))
	case a < b:
		return PairKey{Low: a, High: b}, nil
	default:
		return PairKey{Low: b, High: a}, nil
	}
}

// String renders the key as "low_high"; it doubles as the storage key
func (k PairKey) String() string {
	return string(k.Low) + "_" + string(k.High)
}

// Has reports whether id is one side of the pair
func (k PairKey) Has(id CharacterID) bool {
	return k.Low == id || k.High == id
}

// Other returns the side of the pair that is not id
func (k PairKey) Other(id CharacterID) CharacterID {
	if k.Low == id {
		return k.High
	}
	return k.Low
}

// Relationship is the affinity state between two characters. One row
// exists per PairKey once the pair shared its first event.
type Relationship struct {
	// CharacterID and TargetCharacterID orient the row for the reader; the
	// stored row is oriented Low -> High.
	CharacterID       CharacterID
	TargetCharacterID CharacterID

	TrustLevel       int
	RespectLevel     int
	AffectionLevel   int
	RivalryIntensity int

	BaseDisposition   int
	SpeciesModifier   int
	ArchetypeModifier int

	SharedEventIDs     []EventID
	ConflictEventIDs   []EventID
	ResolutionEventIDs []EventID

	Trajectory    types.Trajectory
	Status        types.RelationshipStatus
	ProgressScore int

	InteractionCount     int
	PositiveInteractions int
	NegativeInteractions int

	LastInteraction time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Key returns the pair key of the relationship
func (r *Relationship) Key() PairKey {
	k, _ := NewPairKey(r.CharacterID, r.TargetCharacterID)
	return k
}

// Disposition is the seed of a new relationship
type Disposition struct {
	SpeciesModifier   int
	ArchetypeModifier int
	Jitter            int
}

// Base returns the seed value
func (d Disposition) Base() int {
	return d.SpeciesModifier + d.ArchetypeModifier + d.Jitter
}

// NewRelationship seeds the row for key from a disposition. Respect and
// affection start as a fraction of the seed, rounded toward negative
// infinity.
func NewRelationship(key PairKey, d Disposition, now time.Time) *Relationship {
	base := d.Base()
	r := &Relationship{
		CharacterID:       key.Low,
		TargetCharacterID: key.High,
		TrustLevel:        ClampAffinity(base),
		RespectLevel:      ClampAffinity(floorDiv(base*7, 10)),
		AffectionLevel:    ClampAffinity(floorDiv(base, 2)),
		BaseDisposition:   base,
		SpeciesModifier:   d.SpeciesModifier,
		ArchetypeModifier: d.ArchetypeModifier,
		Trajectory:        types.TrajectoryStable,
		LastInteraction:   now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if base < hostileSeed {
		r.RivalryIntensity = hostileRivalry
	}
	r.refresh()
	return r
}

// Apply folds one shared event into the relationship
func (r *Relationship) Apply(eventID EventID, effect *EventEffect, at time.Time) {
	r.TrustLevel = ClampAffinity(r.TrustLevel + effect.Trust)
	r.RespectLevel = ClampAffinity(r.RespectLevel + effect.Respect)
	r.AffectionLevel = ClampAffinity(r.AffectionLevel + effect.Affection)
	r.RivalryIntensity = ClampRivalry(r.RivalryIntensity + effect.Rivalry)

	r.SharedEventIDs = append(r.SharedEventIDs, eventID)
	if effect.IsConflict {
		r.ConflictEventIDs = append(r.ConflictEventIDs, eventID)
	}
	if effect.IsResolution {
		r.ResolutionEventIDs = append(r.ResolutionEventIDs, eventID)
	}

	r.Trajectory = types.TrajectoryOf(effect.Trust, effect.Respect)
	r.InteractionCount++
	switch r.Trajectory {
	case types.TrajectoryImproving:
		r.PositiveInteractions++
	case types.TrajectoryDeclining:
		r.NegativeInteractions++
	}

	r.LastInteraction = at
	r.UpdatedAt = at
	r.refresh()
}

// refresh recomputes the cached derived columns
func (r *Relationship) refresh() {
	r.Status = types.StatusFromScore(r.TrustLevel + r.AffectionLevel)
	r.ProgressScore = r.TrustLevel - r.BaseDisposition
}

// Copy returns a deep copy
func (r *Relationship) Copy() *Relationship {
	c := *r
	c.SharedEventIDs = slices.Clone(r.SharedEventIDs)
	c.ConflictEventIDs = slices.Clone(r.ConflictEventIDs)
	c.ResolutionEventIDs = slices.Clone(r.ResolutionEventIDs)
	return &c
}

// ViewFrom returns a copy oriented from the point of view of id
func (r *Relationship) ViewFrom(id CharacterID) *Relationship {
	c := r.Copy()
	if c.CharacterID != id {
		c.CharacterID, c.TargetCharacterID = c.TargetCharacterID, c.CharacterID
	}
	return c
}

// ClampAffinity bounds trust, respect and affection
func ClampAffinity(v int) int {
	return min(MaxAffinity, max(MinAffinity, v))
}

// ClampRivalry bounds rivalry intensity
func ClampRivalry(v int) int {
	return min(MaxRivalry, max(MinRivalry, v))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
