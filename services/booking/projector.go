package booking

import (
	"time"

	"calx/models"
)

// SlotEventTitle labels every projected free slot.
const SlotEventTitle = "Free slot"

// ProjectEvents maps raw slot start instants onto fixed 30-minute display
// events. Source order is preserved so partial updates never reshuffle
// already-rendered days.
func ProjectEvents(slots []time.Time) []models.SlotEvent {
	events := make([]models.SlotEvent, 0, len(slots))
	for _, start := range slots {
		events = append(events, models.SlotEvent{
			Title: SlotEventTitle,
			Start: start,
			End:   start.Add(models.SlotDuration),
		})
	}
	return events
}

// collapseDuplicates drops repeated start instants within one day's slot
// list, keeping the first occurrence and the source ordering.
func collapseDuplicates(slots []time.Time) []time.Time {
	if len(slots) < 2 {
		return slots
	}
	seen := make(map[int64]struct{}, len(slots))
	out := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		key := s.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
