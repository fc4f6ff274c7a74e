// Package upstream talks to the scheduling API that resolves availability
// rules into per-day slots and accepts bookings.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"calx/models"
)

// API is the collaborator surface the booking engine consumes.
type API interface {
	// GetAvailableSlots returns the resolved slot start instants for one
	// provider and calendar date ("2006-01-02"), in source order.
	GetAvailableSlots(ctx context.Context, providerID, date string) ([]time.Time, error)
	// CreateBooking submits a booking and returns the upstream's
	// confirmation. Rejections come back as *APIError.
	CreateBooking(ctx context.Context, providerID string, req models.BookingRequest) (*models.BookingConfirmation, error)
}

// APIError is a non-2xx response from the upstream, with whatever message
// it supplied.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream responded %d", e.StatusCode)
}

// Client implements API over HTTP.
type Client struct {
	baseURL string
	hc      *http.Client
	// tokenFor supplies the bearer token for a provider, or "" when no
	// session is held. The slot and booking endpoints are public upstream;
	// the header is attached opportunistically.
	tokenFor func(providerID string) string
}

// NewClient builds an upstream client. tokenFor may be nil.
func NewClient(baseURL string, timeout time.Duration, tokenFor func(string) string) *Client {
	if tokenFor == nil {
		tokenFor = func(string) string { return "" }
	}
	return &Client{
		baseURL:  baseURL,
		hc:       &http.Client{Timeout: timeout},
		tokenFor: tokenFor,
	}
}

func (c *Client) do(ctx context.Context, method, path, providerID string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(providerID); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

// apiError extracts the upstream's message field when present.
func apiError(status int, body []byte) *APIError {
	var r struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &r)
	msg := r.Message
	if msg == "" {
		msg = r.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}

func slotsPath(providerID, date string) string {
	return fmt.Sprintf("/api/booking/%s/slots?date=%s", url.PathEscape(providerID), url.QueryEscape(date))
}

func bookPath(providerID string) string {
	return fmt.Sprintf("/api/booking/%s/book", url.PathEscape(providerID))
}
