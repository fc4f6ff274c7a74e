package models

import "time"

// BookingDraft holds the selected slot start plus guest-entered details
// for an open booking workflow. It never outlives the workflow.
type BookingDraft struct {
	Start      time.Time `json:"start"`
	GuestName  string    `json:"guestName"`
	GuestEmail string    `json:"guestEmail"`
}

// Host identifies the provider a booking was made with.
type Host struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingRequest is the payload submitted to the upstream acceptance
// endpoint.
type BookingRequest struct {
	StartTime  string `json:"startTime"`
	GuestName  string `json:"guestName"`
	GuestEmail string `json:"guestEmail"`
}

// BookingConfirmation is the upstream's acceptance record. It exists only
// after exactly one successful submission and is discarded on close.
type BookingConfirmation struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Host      Host      `json:"host"`
}
