package model

import (
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oklog/ulid/v2"
)

// CharacterID is the canonical instance id of a character owned by a
// player. Template ids from the character catalog (e.g. "sun_wukong") are
// not CharacterIDs.
type CharacterID string

// canonicalIDPattern is the only accepted shape. uuid.Parse alone also
// accepts braces and urn prefixes, which are not canonical.
var canonicalIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Validate checks that the id has the canonical instance id format
func (id CharacterID) Validate() error {
	if !canonicalIDPattern.MatchString(string(id)) {
		return goerr.Wrap(ErrInvalidCharacterID,
			fmt.Sprintf("%q is not a canonical character id (expected a UUID instance id, not a template id)", string(id)),
			goerr.V(CharacterIDKey, id))
	}
	return nil
}

func (id CharacterID) String() string {
	return string(id)
}

// NewCharacterID generates a new canonical CharacterID
func NewCharacterID() CharacterID {
	return CharacterID(uuid.New().String())
}

// EventID is a ULID, so lexical order follows creation time
type EventID string

func (id EventID) String() string {
	return string(id)
}

var (
	eventEntropyMu sync.Mutex
	eventEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewEventID generates an EventID stamped with t
func NewEventID(t time.Time) EventID {
	eventEntropyMu.Lock()
	defer eventEntropyMu.Unlock()
	return EventID(ulid.MustNew(ulid.Timestamp(t), eventEntropy).String())
}

// MemoryID identifies one character's memory of one event
type MemoryID string

func (id MemoryID) String() string {
	return string(id)
}

var memoryNamespace = uuid.MustParse("6f1c2a7e-3b5d-4e89-9a4c-0d2e8b7f1a53")

// NewMemoryID derives the id of characterID's memory of eventID. The id is
// stable, so deriving the same memory twice yields the same id.
func NewMemoryID(eventID EventID, characterID CharacterID) MemoryID {
	return MemoryID(uuid.NewSHA1(memoryNamespace, []byte(string(eventID)+"/"+string(characterID))).String())
}
