package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a point read misses
var ErrNotFound = interfaces.ErrNotFound

// SQLite stores every aggregate in a single database file. Writes go
// through one connection, so a write transaction holds the whole database
// and relationship upserts are serialized without row locks.
type SQLite struct {
	db           *sql.DB
	event        *eventRepository
	memory       *memoryRepository
	relationship *relationshipRepository
	lookup       *lookupRepository
	character    *characterRepository
}

var _ interfaces.Repository = &SQLite{}

// New opens or creates the database at path and applies the schema
func New(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate sqlite database", goerr.V("path", path))
	}

	return &SQLite{
		db:           db,
		event:        &eventRepository{db: db},
		memory:       &memoryRepository{db: db},
		relationship: &relationshipRepository{db: db},
		lookup:       &lookupRepository{db: db},
		character:    &characterRepository{db: db},
	}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	timestamp  TEXT NOT NULL,
	body       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);

CREATE TABLE IF NOT EXISTS event_tombstones (
	id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS memories (
	id            TEXT PRIMARY KEY,
	character_id  TEXT NOT NULL,
	event_id      TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	recall_count  INTEGER NOT NULL DEFAULT 0,
	last_recalled TEXT NOT NULL,
	body          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_character ON memories(character_id, created_at);

CREATE TABLE IF NOT EXISTS relationships (
	low        TEXT NOT NULL,
	high       TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (low, high)
);

CREATE TABLE IF NOT EXISTS event_effects (
	event_type    TEXT PRIMARY KEY,
	trust         INTEGER NOT NULL,
	respect       INTEGER NOT NULL,
	affection     INTEGER NOT NULL,
	rivalry       INTEGER NOT NULL,
	is_conflict   INTEGER NOT NULL,
	is_resolution INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_classifications (
	event_type   TEXT PRIMARY KEY,
	valence      TEXT NOT NULL,
	memory_type  TEXT NOT NULL,
	significance TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS disposition_modifiers (
	kind        TEXT NOT NULL,
	side_a      TEXT NOT NULL,
	side_b      TEXT NOT NULL,
	left_side   TEXT NOT NULL,
	right_side  TEXT NOT NULL,
	modifier    INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (kind, side_a, side_b)
);

CREATE TABLE IF NOT EXISTS characters (
	id          TEXT PRIMARY KEY,
	template_id TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL DEFAULT '',
	species     TEXT NOT NULL,
	archetype   TEXT NOT NULL
);
`

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return goerr.Wrap(err, "failed to apply schema")
	}
	return nil
}

func (s *SQLite) Event() interfaces.EventRepository {
	return s.event
}

func (s *SQLite) Memory() interfaces.MemoryRepository {
	return s.memory
}

func (s *SQLite) Relationship() interfaces.RelationshipRepository {
	return s.relationship
}

func (s *SQLite) Lookup() interfaces.LookupRepository {
	return s.lookup
}

func (s *SQLite) Character() interfaces.CharacterRepository {
	return s.character
}

func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close sqlite database")
	}
	return nil
}
