package booking

import (
	"context"
	"time"

	"calx/models"
)

// BookingService is the gateway-facing surface of the booking engine.
type BookingService interface {
	// Calendar resolves the visible range for a provider, refreshes
	// availability and returns the merged snapshot. It waits (bounded by
	// ctx) for outstanding day fetches; unsettled days report loading.
	Calendar(ctx context.Context, providerID string, anchor time.Time, view models.ViewGranularity) (models.AvailabilitySnapshot, error)
	// Select opens a new booking workflow session for a slot start.
	Select(providerID string, start time.Time) (*models.WorkflowSnapshot, error)
	// Submit drives a session's submission with the guest's details.
	Submit(ctx context.Context, providerID, sessionID, guestName, guestEmail string) (*models.WorkflowSnapshot, error)
	// Session reports a session's current workflow snapshot.
	Session(providerID, sessionID string) (*models.WorkflowSnapshot, error)
	// CalendarFile renders the invite payload for a confirmed session.
	CalendarFile(providerID, sessionID string) ([]byte, error)
	// CloseSession closes and forgets a session from any state.
	CloseSession(providerID, sessionID string) error
}
