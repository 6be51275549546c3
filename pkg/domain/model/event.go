package model

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

// Structural limits for event payloads
const (
	MaxMetadataKeys    = 64
	MaxMetadataKeySize = 128
	MaxMetadataBytes   = 16 * 1024
	MaxTags            = 32
	MinImportance      = 1
	MaxImportance      = 10
)

// DayBucketLayout is the layout of the day-bucket index key (UTC)
const DayBucketLayout = "2006-01-02"

// Metadata is a schema-less payload attached by the producing subsystem.
// Values must be JSON-serializable; its shape is not validated.
type Metadata map[string]any

// Validate checks the structural limits of the payload
func (m Metadata) Validate() error {
	if len(m) > MaxMetadataKeys {
		return goerr.Wrap(ErrInvalidMetadata, "too many metadata keys",
			goerr.V("count", len(m)), goerr.V("max", MaxMetadataKeys))
	}
	for k := range m {
		if k == "" {
			return goerr.Wrap(ErrInvalidMetadata, "metadata key cannot be empty")
		}
		if len(k) > MaxMetadataKeySize {
			return goerr.Wrap(ErrInvalidMetadata, "metadata key too long", goerr.V(FieldKey, k))
		}
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return goerr.Wrap(ErrInvalidMetadata, "metadata is not JSON-serializable", goerr.V("cause", err.Error()))
	}
	if len(raw) > MaxMetadataBytes {
		return goerr.Wrap(ErrInvalidMetadata, "metadata too large",
			goerr.V("bytes", len(raw)), goerr.V("max", MaxMetadataBytes))
	}
	return nil
}

// Float returns the numeric value stored under key, or 0
func (m Metadata) Float(key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// String returns the string value stored under key, or ""
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// EventDraft is what a producer hands to the bus. The bus assigns the id
// and timestamp.
type EventDraft struct {
	Type           types.EventType
	Source         types.EventSource
	ParticipantIDs []CharacterID
	Severity       types.Severity
	Category       types.EventCategory
	Description    string
	Metadata       Metadata
	Tags           []string
	Importance     *int
	Resolved       bool
}

// Validate checks every required field and the canonical format of every
// participant id.
func (d *EventDraft) Validate() error {
	if err := d.Type.Validate(); err != nil {
		return goerr.Wrap(ErrMissingRequired, "invalid event type", goerr.V(FieldKey, "type"), goerr.V(ValueKey, d.Type), goerr.V("cause", err.Error()))
	}
	if err := d.Source.Validate(); err != nil {
		return goerr.Wrap(ErrMissingRequired, "invalid event source", goerr.V(FieldKey, "source"), goerr.V(ValueKey, d.Source), goerr.V("cause", err.Error()))
	}
	if !d.Severity.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid severity", goerr.V(FieldKey, "severity"), goerr.V(ValueKey, d.Severity))
	}
	if !d.Category.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid category", goerr.V(FieldKey, "category"), goerr.V(ValueKey, d.Category))
	}
	if d.Description == "" {
		return goerr.Wrap(ErrMissingRequired, "description is required", goerr.V(FieldKey, "description"))
	}
	if len(d.ParticipantIDs) == 0 {
		return goerr.Wrap(ErrMissingRequired, "at least one participant is required", goerr.V(FieldKey, "participant_ids"))
	}

	seen := make(map[CharacterID]struct{}, len(d.ParticipantIDs))
	for _, id := range d.ParticipantIDs {
		if err := id.Validate(); err != nil {
			return goerr.Wrap(err, "invalid participant", goerr.V(EventTypeKey, d.Type), goerr.V("source", d.Source))
		}
		if _, dup := seen[id]; dup {
			return goerr.Wrap(ErrDuplicateParticipant, "participant listed twice", goerr.V(CharacterIDKey, id))
		}
		seen[id] = struct{}{}
	}

	if d.Importance != nil && (*d.Importance < MinImportance || *d.Importance > MaxImportance) {
		return goerr.Wrap(ErrInvalidImportance, "importance must be between 1 and 10", goerr.V(ValueKey, *d.Importance))
	}
	if len(d.Tags) > MaxTags {
		return goerr.Wrap(ErrInvalidMetadata, "too many tags", goerr.V("count", len(d.Tags)), goerr.V("max", MaxTags))
	}
	if err := d.Metadata.Validate(); err != nil {
		return err
	}
	return nil
}

// Event is an immutable record of something that happened to one or more
// characters. The first participant is the subject by convention.
type Event struct {
	ID                  EventID
	Type                types.EventType
	Timestamp           time.Time
	Source              types.EventSource
	ParticipantIDs      []CharacterID
	Severity            types.Severity
	Category            types.EventCategory
	Description         string
	Metadata            Metadata
	Tags                []string
	Importance          *int
	Resolved            bool
	ResolutionTimestamp *time.Time
	ResolutionMethod    string
}

// NewEvent stamps a validated draft
func NewEvent(id EventID, at time.Time, d *EventDraft) *Event {
	ev := &Event{
		ID:             id,
		Type:           d.Type,
		Timestamp:      at,
		Source:         d.Source,
		ParticipantIDs: slices.Clone(d.ParticipantIDs),
		Severity:       d.Severity,
		Category:       d.Category,
		Description:    d.Description,
		Metadata:       cloneMetadata(d.Metadata),
		Tags:           slices.Clone(d.Tags),
		Resolved:       d.Resolved,
	}
	if d.Importance != nil {
		v := *d.Importance
		ev.Importance = &v
	}
	if d.Resolved {
		ts := at
		ev.ResolutionTimestamp = &ts
	}
	return ev
}

// Subject returns the first participant
func (e *Event) Subject() CharacterID {
	if len(e.ParticipantIDs) == 0 {
		return ""
	}
	return e.ParticipantIDs[0]
}

// ImportanceOrDefault returns the declared importance, or 5
func (e *Event) ImportanceOrDefault() int {
	if e.Importance == nil {
		return 5
	}
	return *e.Importance
}

// DayBucket returns the day-bucket index key of the event
func (e *Event) DayBucket() string {
	return DayBucket(e.Timestamp)
}

// HasParticipant reports whether id took part in the event
func (e *Event) HasParticipant(id CharacterID) bool {
	return slices.Contains(e.ParticipantIDs, id)
}

// Copy returns a deep copy. Events are immutable, so callers always get
// copies.
func (e *Event) Copy() *Event {
	c := *e
	c.ParticipantIDs = slices.Clone(e.ParticipantIDs)
	c.Tags = slices.Clone(e.Tags)
	c.Metadata = cloneMetadata(e.Metadata)
	if e.Importance != nil {
		v := *e.Importance
		c.Importance = &v
	}
	if e.ResolutionTimestamp != nil {
		ts := *e.ResolutionTimestamp
		c.ResolutionTimestamp = &ts
	}
	return &c
}

// DayBucket formats t as a day-bucket key
func DayBucket(t time.Time) string {
	return t.UTC().Format(DayBucketLayout)
}

// cloneMetadata deep-copies m so that no nested map or slice is shared
// with the returned copy
func cloneMetadata(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case Metadata:
		return cloneMetadata(v)
	case map[string]any:
		return map[string]any(cloneMetadata(v))
	case []any:
		c := make([]any, len(v))
		for i := range v {
			c[i] = cloneValue(v[i])
		}
		return c
	case map[string]string:
		return maps.Clone(v)
	case []string:
		return slices.Clone(v)
	case []int:
		return slices.Clone(v)
	case []float64:
		return slices.Clone(v)
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer, reflect.Struct:
		// Validate guarantees the payload serializes
		raw, err := json.Marshal(v)
		if err != nil {
			return v
		}
		var c any
		if err := json.Unmarshal(raw, &c); err != nil {
			return v
		}
		return c
	default:
		return v
	}
}

// EventFilter narrows event queries. Zero values do not filter.
type EventFilter struct {
	TimeRange  types.TimeRange
	Categories []types.EventCategory
	Severities []types.Severity
	Tags       []string
	Resolved   *bool
	// Limit keeps only the most recent N matches
	Limit int
}

// Match reports whether ev passes every non-limit criterion
func (f *EventFilter) Match(ev *Event, now time.Time) bool {
	if f == nil {
		return true
	}
	if f.TimeRange != "" && ev.Timestamp.Before(f.TimeRange.Cutoff(now)) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, ev.Category) {
		return false
	}
	if len(f.Severities) > 0 && !slices.Contains(f.Severities, ev.Severity) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(tag string) bool {
		return slices.Contains(ev.Tags, tag)
	}) {
		return false
	}
	if f.Resolved != nil && ev.Resolved != *f.Resolved {
		return false
	}
	return true
}

// Validate checks the enumerated fields of the filter
func (f *EventFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.TimeRange != "" && !f.TimeRange.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid time range", goerr.V(ValueKey, f.TimeRange))
	}
	if f.Limit < 0 {
		return goerr.Wrap(ErrValidation, "limit cannot be negative", goerr.V(ValueKey, f.Limit))
	}
	return nil
}
