package booking

import (
	"context"
	"strings"
	"sync"
	"time"

	"calx/models"
	"calx/upstream"
	"calx/utils"

	"go.uber.org/zap"
)

// Workflow drives one booking attempt from slot selection through
// confirmation. Transitions are serialized; at most one submission is in
// flight per instance, and closing always wins over a pending settlement.
type Workflow struct {
	sessionID   string
	providerID  string
	api         upstream.API
	now         func() time.Time
	logger      *zap.Logger
	onConfirmed func(day time.Time)

	mu           sync.Mutex
	state        models.WorkflowState
	draft        models.BookingDraft
	confirmation *models.BookingConfirmation
	message      string
	generation   uint64
	cancelSubmit context.CancelFunc
}

// NewWorkflow builds a closed workflow for one provider. onConfirmed is
// invoked with the booked calendar day after a successful submission (the
// availability cache uses it to drop the consumed slot); it may be nil.
func NewWorkflow(sessionID, providerID string, api upstream.API, onConfirmed func(day time.Time)) *Workflow {
	return &Workflow{
		sessionID:   sessionID,
		providerID:  providerID,
		api:         api,
		now:         time.Now,
		logger:      utils.GetLogger(),
		onConfirmed: onConfirmed,
		state:       models.WorkflowClosed,
	}
}

// Select opens the workflow for a future slot and initializes an empty
// draft. Selecting a past slot is a no-op: the workflow stays closed and
// ErrPastSlot is returned.
func (w *Workflow) Select(start time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != models.WorkflowClosed {
		return ErrAlreadyOpen
	}
	if start.Before(w.now()) {
		return ErrPastSlot
	}
	w.state = models.WorkflowSelectingDetails
	w.draft = models.BookingDraft{Start: start}
	w.message = ""
	return nil
}

// Submit sends the draft for acceptance. It blocks until the upstream
// settles, but a concurrent Close cancels the request and the settlement
// is discarded. A second Submit while one is outstanding is rejected, not
// queued. On rejection the draft survives for retry and the upstream's
// message is recorded.
func (w *Workflow) Submit(ctx context.Context, guestName, guestEmail string) (*models.BookingConfirmation, error) {
	guestName = strings.TrimSpace(guestName)
	guestEmail = strings.TrimSpace(guestEmail)

	w.mu.Lock()
	switch w.state {
	case models.WorkflowSubmitting:
		w.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case models.WorkflowSelectingDetails:
	default:
		w.mu.Unlock()
		return nil, ErrNotSelecting
	}
	if guestName == "" || guestEmail == "" {
		w.mu.Unlock()
		return nil, ErrMissingDetails
	}

	w.draft.GuestName = guestName
	w.draft.GuestEmail = guestEmail
	w.state = models.WorkflowSubmitting
	w.message = ""
	generation := w.generation
	start := w.draft.Start

	subCtx, cancel := context.WithCancel(ctx)
	w.cancelSubmit = cancel
	w.mu.Unlock()

	confirmation, err := w.api.CreateBooking(subCtx, w.providerID, models.BookingRequest{
		StartTime:  start.UTC().Format(time.RFC3339),
		GuestName:  guestName,
		GuestEmail: guestEmail,
	})
	cancel()

	w.mu.Lock()
	if w.generation != generation {
		// Closed while in flight; observe the settlement and discard it.
		w.mu.Unlock()
		w.logger.Debug("discarding settlement for closed workflow",
			zap.String("sessionID", w.sessionID))
		return nil, ErrWorkflowClosed
	}
	w.cancelSubmit = nil

	if err != nil {
		w.state = models.WorkflowSelectingDetails
		w.message = err.Error()
		w.mu.Unlock()
		w.logger.Warn("booking submission rejected",
			zap.String("sessionID", w.sessionID),
			zap.String("providerID", w.providerID),
			zap.Error(err))
		return nil, NewRejection(err.Error())
	}

	w.state = models.WorkflowConfirmed
	w.confirmation = confirmation
	w.mu.Unlock()

	w.logger.Info("booking confirmed",
		zap.String("sessionID", w.sessionID),
		zap.String("bookingID", confirmation.ID))
	if w.onConfirmed != nil {
		w.onConfirmed(models.Midnight(confirmation.StartTime))
	}
	return confirmation, nil
}

// Close returns the workflow to Closed from any state, clearing the
// draft, confirmation and message. An in-flight submission is cancelled;
// its settlement will be discarded by the generation check.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancelSubmit != nil {
		w.cancelSubmit()
		w.cancelSubmit = nil
	}
	w.generation++
	w.state = models.WorkflowClosed
	w.draft = models.BookingDraft{}
	w.confirmation = nil
	w.message = ""
}

// CalendarFile renders the invite payload for a confirmed booking. It is
// a side action: repeatable, and it never changes workflow state.
func (w *Workflow) CalendarFile() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != models.WorkflowConfirmed || w.confirmation == nil {
		return nil, ErrNotConfirmed
	}
	return EncodeCalendarInvite(*w.confirmation, w.draft, w.now()), nil
}

// Snapshot reports the externally visible workflow state.
func (w *Workflow) Snapshot() models.WorkflowSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := models.WorkflowSnapshot{
		SessionID: w.sessionID,
		State:     w.state,
		Message:   w.message,
	}
	if w.state != models.WorkflowClosed {
		draft := w.draft
		snapshot.Draft = &draft
	}
	if w.confirmation != nil {
		confirmation := *w.confirmation
		snapshot.Confirmation = &confirmation
	}
	return snapshot
}

// State returns the current workflow state.
func (w *Workflow) State() models.WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}
