package config

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// Tables is the TOML file holding the lookup tables and the character
// roster the bus reads while deriving memories and relationships
type Tables struct {
	Effects            []Effect         `toml:"effect"`
	Classifications    []Classification `toml:"classification"`
	SpeciesModifiers   []Modifier       `toml:"species_modifier"`
	ArchetypeModifiers []Modifier       `toml:"archetype_modifier"`
	Characters         []Character      `toml:"character"`
}

// Effect is one row of the event effect table
type Effect struct {
	EventType  string `toml:"event_type"`
	Trust      int    `toml:"trust"`
	Respect    int    `toml:"respect"`
	Affection  int    `toml:"affection"`
	Rivalry    int    `toml:"rivalry"`
	Conflict   bool   `toml:"conflict"`
	Resolution bool   `toml:"resolution"`
}

func (e *Effect) toModel() *model.EventEffect {
	return &model.EventEffect{
		EventType:    types.EventType(e.EventType),
		Trust:        e.Trust,
		Respect:      e.Respect,
		Affection:    e.Affection,
		Rivalry:      e.Rivalry,
		IsConflict:   e.Conflict,
		IsResolution: e.Resolution,
	}
}

// Classification is one row of the event classification table
type Classification struct {
	EventType    string `toml:"event_type"`
	Valence      string `toml:"valence"`
	MemoryType   string `toml:"memory_type"`
	Significance string `toml:"significance"`
}

func (c *Classification) toModel() *model.Classification {
	significance := types.Significance(c.Significance)
	if significance == "" {
		significance = types.SignificanceRoutine
	}
	return &model.Classification{
		EventType:    types.EventType(c.EventType),
		Valence:      types.Valence(c.Valence),
		MemoryType:   types.MemoryType(c.MemoryType),
		Significance: significance,
	}
}

// Modifier is one species or archetype compatibility row
type Modifier struct {
	Left        string `toml:"left"`
	Right       string `toml:"right"`
	Modifier    int    `toml:"modifier"`
	Description string `toml:"description"`
}

func (m *Modifier) toModel() *model.DispositionModifier {
	return &model.DispositionModifier{
		Left:        m.Left,
		Right:       m.Right,
		Modifier:    m.Modifier,
		Description: m.Description,
	}
}

// key identifies the pair regardless of order
func (m *Modifier) key() string {
	if m.Left > m.Right {
		return m.Right + "/" + m.Left
	}
	return m.Left + "/" + m.Right
}

// Character is one character instance of the roster
type Character struct {
	ID         string `toml:"id"`
	TemplateID string `toml:"template_id"`
	Name       string `toml:"name"`
	Species    string `toml:"species"`
	Archetype  string `toml:"archetype"`
}

func (c *Character) toModel() *model.Character {
	return &model.Character{
		ID:         model.CharacterID(c.ID),
		TemplateID: c.TemplateID,
		Name:       c.Name,
		Species:    c.Species,
		Archetype:  c.Archetype,
	}
}

// Validate checks every row and rejects duplicates
func (t *Tables) Validate() error {
	effects := make(map[string]bool)
	for i, e := range t.Effects {
		if err := e.toModel().Validate(); err != nil {
			return goerr.Wrap(err, "invalid effect", goerr.V(TableKey, "effect"), goerr.V(IndexKey, i))
		}
		if effects[e.EventType] {
			return goerr.Wrap(ErrDuplicateEventType, "effect listed twice", goerr.V(EventTypeKey, e.EventType))
		}
		effects[e.EventType] = true
	}

	classifications := make(map[string]bool)
	for i, c := range t.Classifications {
		if err := c.toModel().Validate(); err != nil {
			return goerr.Wrap(err, "invalid classification", goerr.V(TableKey, "classification"), goerr.V(IndexKey, i))
		}
		if classifications[c.EventType] {
			return goerr.Wrap(ErrDuplicateEventType, "classification listed twice", goerr.V(EventTypeKey, c.EventType))
		}
		classifications[c.EventType] = true
	}

	for table, rows := range map[string][]Modifier{
		"species_modifier":   t.SpeciesModifiers,
		"archetype_modifier": t.ArchetypeModifiers,
	} {
		seen := make(map[string]bool)
		for i, m := range rows {
			if err := m.toModel().Validate(); err != nil {
				return goerr.Wrap(err, "invalid modifier", goerr.V(TableKey, table), goerr.V(IndexKey, i))
			}
			if seen[m.key()] {
				return goerr.Wrap(ErrDuplicateModifier, "modifier listed twice", goerr.V(TableKey, table), goerr.V(ModifierKey, m.key()))
			}
			seen[m.key()] = true
		}
	}

	characters := make(map[string]bool)
	for i, c := range t.Characters {
		if err := c.toModel().Validate(); err != nil {
			return goerr.Wrap(err, "invalid character", goerr.V(TableKey, "character"), goerr.V(IndexKey, i))
		}
		if characters[c.ID] {
			return goerr.Wrap(ErrDuplicateCharacter, "character listed twice", goerr.V(CharacterIDKey, c.ID))
		}
		characters[c.ID] = true
	}

	return nil
}

// LoadTables reads and validates a tables file
func LoadTables(path string) (*Tables, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "tables file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read tables file", goerr.V(ConfigPathKey, path))
	}

	var tables Tables
	if err := toml.Unmarshal(data, &tables); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML tables", goerr.V(ConfigPathKey, path))
	}

	if err := tables.Validate(); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "tables validation failed", goerr.V(ConfigPathKey, path))
	}

	return &tables, nil
}

// SeedResult counts the rows written by Seed
type SeedResult struct {
	Effects            int
	Classifications    int
	SpeciesModifiers   int
	ArchetypeModifiers int
	Characters         int
}

// Seed writes every row into repo. Existing rows with the same key are
// overwritten.
func (t *Tables) Seed(ctx context.Context, repo interfaces.Repository) (*SeedResult, error) {
	result := &SeedResult{}

	for _, e := range t.Effects {
		if err := repo.Lookup().PutEffect(ctx, e.toModel()); err != nil {
			return result, goerr.Wrap(err, "failed to seed effect", goerr.V(EventTypeKey, e.EventType))
		}
		result.Effects++
	}
	for _, c := range t.Classifications {
		if err := repo.Lookup().PutClassification(ctx, c.toModel()); err != nil {
			return result, goerr.Wrap(err, "failed to seed classification", goerr.V(EventTypeKey, c.EventType))
		}
		result.Classifications++
	}
	for _, m := range t.SpeciesModifiers {
		if err := repo.Lookup().PutSpeciesModifier(ctx, m.toModel()); err != nil {
			return result, goerr.Wrap(err, "failed to seed species modifier", goerr.V(ModifierKey, m.key()))
		}
		result.SpeciesModifiers++
	}
	for _, m := range t.ArchetypeModifiers {
		if err := repo.Lookup().PutArchetypeModifier(ctx, m.toModel()); err != nil {
			return result, goerr.Wrap(err, "failed to seed archetype modifier", goerr.V(ModifierKey, m.key()))
		}
		result.ArchetypeModifiers++
	}
	for _, c := range t.Characters {
		if err := repo.Character().Put(ctx, c.toModel()); err != nil {
			return result, goerr.Wrap(err, "failed to seed character", goerr.V(CharacterIDKey, c.ID))
		}
		result.Characters++
	}

	return result, nil
}
