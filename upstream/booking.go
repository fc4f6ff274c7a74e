package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"calx/models"
)

// GetAvailableSlots fetches the bookable start instants for one day.
func (c *Client) GetAvailableSlots(ctx context.Context, providerID, date string) ([]time.Time, error) {
	status, body, err := c.do(ctx, http.MethodGet, slotsPath(providerID, date), providerID, nil)
	if err != nil {
		return nil, fmt.Errorf("slot fetch for %s failed: %w", date, err)
	}
	if status >= 400 {
		return nil, apiError(status, body)
	}

	var raw []string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode slot list for %s: %w", date, err)
	}

	slots := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("malformed slot instant %q for %s: %w", s, date, err)
		}
		slots = append(slots, t)
	}
	return slots, nil
}

// CreateBooking submits a booking for acceptance.
func (c *Client) CreateBooking(ctx context.Context, providerID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	status, body, err := c.do(ctx, http.MethodPost, bookPath(providerID), providerID, req)
	if err != nil {
		return nil, fmt.Errorf("booking submission failed: %w", err)
	}
	if status >= 400 {
		return nil, apiError(status, body)
	}

	var confirmation models.BookingConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return nil, fmt.Errorf("failed to decode booking confirmation: %w", err)
	}
	return &confirmation, nil
}
