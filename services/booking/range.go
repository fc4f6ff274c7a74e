package booking

import (
	"time"

	"calx/models"
)

// VisibleDays resolves the ordered, contiguous calendar days to display
// for an anchor date and view granularity. Weeks start on Monday.
//
// The month view always renders whole weeks: it spans the Monday on or
// before the 1st through the Sunday on or after the last day of the
// anchor's month.
func VisibleDays(anchor time.Time, view models.ViewGranularity) []time.Time {
	day := models.Midnight(anchor)

	switch view {
	case models.ViewMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		return daysBetween(startOfWeek(first), endOfWeek(last))
	case models.ViewDay:
		return []time.Time{day}
	default: // models.ViewWeek
		return daysBetween(startOfWeek(day), endOfWeek(day))
	}
}

// startOfWeek returns the Monday of the week containing day.
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// endOfWeek returns the Sunday of the week containing day.
func endOfWeek(day time.Time) time.Time {
	return startOfWeek(day).AddDate(0, 0, 6)
}

func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
