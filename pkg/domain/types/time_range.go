package types

import (
	"fmt"
	"time"
)

// TimeRange is a named look-back window used by event queries
type TimeRange string

const (
	TimeRangeHour      TimeRange = "1_hour"
	TimeRangeSixHours  TimeRange = "6_hours"
	TimeRangeDay       TimeRange = "1_day"
	TimeRangeThreeDays TimeRange = "3_days"
	TimeRangeWeek      TimeRange = "1_week"
	TimeRangeTwoWeeks  TimeRange = "2_weeks"
)

var timeRangeDurations = map[TimeRange]time.Duration{
	TimeRangeHour:      time.Hour,
	TimeRangeSixHours:  6 * time.Hour,
	TimeRangeDay:       24 * time.Hour,
	TimeRangeThreeDays: 3 * 24 * time.Hour,
	TimeRangeWeek:      7 * 24 * time.Hour,
	TimeRangeTwoWeeks:  14 * 24 * time.Hour,
}

// IsValid checks if the time range is valid
func (r TimeRange) IsValid() bool {
	_, ok := timeRangeDurations[r]
	return ok
}

// Duration returns the length of the window
func (r TimeRange) Duration() time.Duration {
	return timeRangeDurations[r]
}

// Cutoff returns the oldest instant inside the window ending at now
func (r TimeRange) Cutoff(now time.Time) time.Time {
	return now.Add(-r.Duration())
}

// String returns the string representation of the time range
func (r TimeRange) String() string {
	return string(r)
}

// ParseTimeRange parses a string into a TimeRange
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid time range: %s", s)
	}
	return r, nil
}
