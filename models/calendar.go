package models

import (
	"fmt"
	"time"
)

// ViewGranularity selects the day-range window rendered by the calendar.
type ViewGranularity string

const (
	ViewMonth ViewGranularity = "month"
	ViewWeek  ViewGranularity = "week"
	ViewDay   ViewGranularity = "day"
)

// ParseViewGranularity maps the wire value onto a granularity, defaulting
// to the week view when the value is empty.
func ParseViewGranularity(raw string) (ViewGranularity, error) {
	switch ViewGranularity(raw) {
	case ViewMonth, ViewWeek, ViewDay:
		return ViewGranularity(raw), nil
	case "":
		return ViewWeek, nil
	default:
		return "", fmt.Errorf("unknown calendar view %q", raw)
	}
}

// DayKey is the calendar-date identity of an instant ("2006-01-02").
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Midnight truncates an instant to its calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
