package booking

import (
	"testing"
	"time"

	"calx/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleDays_MonthAlwaysWholeWeeks(t *testing.T) {
	anchors := []time.Time{
		time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}

	for _, anchor := range anchors {
		days := VisibleDays(anchor, models.ViewMonth)
		require.NotEmpty(t, days)

		assert.Zero(t, len(days)%7, "month view must render whole weeks for %s", anchor)
		assert.Equal(t, time.Monday, days[0].Weekday())
		assert.Equal(t, time.Sunday, days[len(days)-1].Weekday())

		// Every day of the anchor's month must be present.
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		last := first.AddDate(0, 1, -1)
		assert.False(t, days[0].After(first))
		assert.False(t, days[len(days)-1].Before(last))
	}
}

func TestVisibleDays_MonthIsContiguous(t *testing.T) {
	days := VisibleDays(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), models.ViewMonth)
	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].AddDate(0, 0, 1), days[i])
	}
}

func TestVisibleDays_WeekIsMondayToSunday(t *testing.T) {
	// 2025-03-10 is a Monday.
	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	for offset := 0; offset < 7; offset++ {
		days := VisibleDays(monday.AddDate(0, 0, offset), models.ViewWeek)
		require.Len(t, days, 7)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), days[0])
		assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), days[6])
	}
}

func TestVisibleDays_DayIsSingleElement(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 17, 45, 0, 0, time.UTC)
	days := VisibleDays(anchor, models.ViewDay)
	require.Len(t, days, 1)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), days[0])
}
