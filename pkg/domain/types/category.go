package types

import (
	"fmt"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// EventType names what happened, e.g. "battle_victory" or
// "equipment:autonomous_rebellion"
type EventType string

var eventTypePattern = regexp.MustCompile(`^[a-z0-9]+([_:][a-z0-9]+)*$`)

// Validate checks if the EventType is well formed
func (e EventType) Validate() error {
	if e == "" {
		return goerr.New("event type cannot be empty")
	}
	if !eventTypePattern.MatchString(string(e)) {
		return goerr.New("event type must be lowercase alphanumeric joined by '_' or ':'", goerr.V("type", e))
	}
	return nil
}

// String returns the string representation of EventType
func (e EventType) String() string {
	return string(e)
}

// EventSource names the subsystem that produced an event
type EventSource string

// Validate checks if the EventSource is well formed
func (s EventSource) Validate() error {
	if s == "" {
		return goerr.New("event source cannot be empty")
	}
	if !eventTypePattern.MatchString(string(s)) {
		return goerr.New("event source must be lowercase alphanumeric joined by '_'", goerr.V("source", s))
	}
	return nil
}

// String returns the string representation of EventSource
func (s EventSource) String() string {
	return string(s)
}

// EventCategory is the coarse area of the game an event belongs to
type EventCategory string

const (
	CategoryBattle           EventCategory = "battle"
	CategorySocial           EventCategory = "social"
	CategoryTherapy          EventCategory = "therapy"
	CategoryTraining         EventCategory = "training"
	CategoryProgression      EventCategory = "progression"
	CategoryCommunication    EventCategory = "communication"
	CategoryFinancial        EventCategory = "financial"
	CategoryPersonalProblems EventCategory = "personal_problems"
	CategoryGroupActivities  EventCategory = "group_activities"
	CategoryEquipment        EventCategory = "equipment"
	CategorySkills           EventCategory = "skills"
	CategoryConfessional     EventCategory = "confessional"
	CategoryRealEstate       EventCategory = "real_estate"
	CategoryStrategy         EventCategory = "strategy"
	CategoryDrama            EventCategory = "drama"
	CategoryCasualSocial     EventCategory = "casual_social"
)

// AllEventCategories returns all valid event categories
func AllEventCategories() []EventCategory {
	return []EventCategory{
		CategoryBattle,
		CategorySocial,
		CategoryTherapy,
		CategoryTraining,
		CategoryProgression,
		CategoryCommunication,
		CategoryFinancial,
		CategoryPersonalProblems,
		CategoryGroupActivities,
		CategoryEquipment,
		CategorySkills,
		CategoryConfessional,
		CategoryRealEstate,
		CategoryStrategy,
		CategoryDrama,
		CategoryCasualSocial,
	}
}

// IsValid checks if the event category is valid
func (c EventCategory) IsValid() bool {
	for _, v := range AllEventCategories() {
		if v == c {
			return true
		}
	}
	return false
}

// String returns the string representation of EventCategory
func (c EventCategory) String() string {
	return string(c)
}

// ParseEventCategory parses a string into an EventCategory
func ParseEventCategory(s string) (EventCategory, error) {
	c := EventCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid event category: %s", s)
	}
	return c, nil
}
