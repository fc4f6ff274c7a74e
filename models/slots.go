package models

import "time"

// SlotDuration is the fixed span of every bookable slot.
const SlotDuration = 30 * time.Minute

// DayStatus is the lifecycle of one visible day's availability fetch.
type DayStatus string

const (
	DayNotRequested DayStatus = "not_requested"
	DayLoading      DayStatus = "loading"
	DayLoaded       DayStatus = "loaded"
	DayFailed       DayStatus = "failed"
)

// DayAvailability reports one visible day's fetch state. A failed day
// carries its error message; other days are unaffected by it.
type DayAvailability struct {
	Date   string      `json:"date"`
	Status DayStatus   `json:"status"`
	Slots  []time.Time `json:"slots,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SlotEvent is a displayable bookable block derived from a raw slot start.
type SlotEvent struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilitySnapshot is the merged view over all visible days, in
// calendar-day order. Events carry loaded slots only; days still loading
// or failed contribute none.
type AvailabilitySnapshot struct {
	Days   []DayAvailability `json:"days"`
	Events []SlotEvent       `json:"events"`
}
