package domain

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	// DateKeyLayout is the format of every date key.
	DateKeyLayout = "2006-01-02"

	easternZone = "America/New_York"
)

var eastern = mustLoadLocation(easternZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load time zone %s: %v", name, err))
	}
	return loc
}

// Eastern returns the civil time zone date keys are computed in.
func Eastern() *time.Location {
	return eastern
}

// DateKey returns the date key of the civil day containing t in US Eastern time.
func DateKey(t time.Time) string {
	return t.In(eastern).Format(DateKeyLayout)
}

// TodayKey returns the date key for the current instant.
func TodayKey() string {
	return DateKey(time.Now())
}

// ParseDateKey validates key and returns the start of that civil day in US Eastern time.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, eastern)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}
