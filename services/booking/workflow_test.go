package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"calx/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkflow(api *fakeUpstream, now time.Time, onConfirmed func(time.Time)) *Workflow {
	w := NewWorkflow("sess-1", "prov-1", api, onConfirmed)
	w.now = func() time.Time { return now }
	return w
}

func TestWorkflow_SelectingPastSlotIsNoOp(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	w := newTestWorkflow(newFakeUpstream(), now, nil)

	err := w.Select(now.Add(-time.Hour))

	assert.ErrorIs(t, err, ErrPastSlot)
	assert.Equal(t, models.WorkflowClosed, w.State())
}

func TestWorkflow_SubmitRequiresDetails(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	w := newTestWorkflow(newFakeUpstream(), now, nil)
	require.NoError(t, w.Select(now.Add(time.Hour)))

	_, err := w.Submit(context.Background(), "  ", "jan@example.com")
	assert.ErrorIs(t, err, ErrMissingDetails)
	assert.Equal(t, models.WorkflowSelectingDetails, w.State())

	_, err = w.Submit(context.Background(), "Jan Kowalski", "")
	assert.ErrorIs(t, err, ErrMissingDetails)
}

func TestWorkflow_HappyPath(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	api := newFakeUpstream()
	api.booked = &models.BookingConfirmation{
		ID:        "abc123",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Host:      models.Host{Name: "Anna", Email: "anna@example.com"},
	}

	var invalidated []time.Time
	w := newTestWorkflow(api, now, func(day time.Time) { invalidated = append(invalidated, day) })

	require.NoError(t, w.Select(start))
	confirmation, err := w.Submit(context.Background(), "Jan Kowalski", "jan@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowConfirmed, w.State())
	assert.Equal(t, "abc123", confirmation.ID)

	// The booked day is invalidated so the consumed slot disappears.
	require.Len(t, invalidated, 1)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), invalidated[0])

	payload, err := w.CalendarFile()
	require.NoError(t, err)
	text := string(payload)
	assert.Contains(t, text, "UID:abc123")
	assert.Contains(t, text, "DTSTART:20250310T090000Z")
	assert.Contains(t, text, "DTEND:20250310T093000Z")

	// Export is a side action: state is untouched and it repeats cleanly.
	assert.Equal(t, models.WorkflowConfirmed, w.State())
	_, err = w.CalendarFile()
	assert.NoError(t, err)
}

func TestWorkflow_RejectionPreservesDraft(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	api := newFakeUpstream()
	api.bookErr = errors.New("slot no longer available")

	w := newTestWorkflow(api, now, nil)
	require.NoError(t, w.Select(now.Add(24*time.Hour)))

	_, err := w.Submit(context.Background(), "Jan Kowalski", "jan@example.com")
	require.Error(t, err)

	snapshot := w.Snapshot()
	assert.Equal(t, models.WorkflowSelectingDetails, snapshot.State)
	require.NotNil(t, snapshot.Draft)
	assert.Equal(t, "Jan Kowalski", snapshot.Draft.GuestName)
	assert.Equal(t, "jan@example.com", snapshot.Draft.GuestEmail)
	assert.Contains(t, snapshot.Message, "slot no longer available")
	assert.Nil(t, snapshot.Confirmation)

	// The guest can retry after the upstream recovers.
	api.mu.Lock()
	api.bookErr = nil
	api.mu.Unlock()
	_, err = w.Submit(context.Background(), "Jan Kowalski", "jan@example.com")
	assert.NoError(t, err)
	assert.Equal(t, models.WorkflowConfirmed, w.State())
}

func TestWorkflow_SecondSubmitWhileInFlightIsRejected(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	api := newFakeUpstream()
	api.bookBlock = make(chan struct{})

	w := newTestWorkflow(api, now, nil)
	require.NoError(t, w.Select(now.Add(24*time.Hour)))

	firstDone := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), "Jan Kowalski", "jan@example.com")
		firstDone <- err
	}()

	require.Eventually(t, func() bool { return w.State() == models.WorkflowSubmitting },
		time.Second, 10*time.Millisecond)

	_, err := w.Submit(context.Background(), "Jan Kowalski", "jan@example.com")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(api.bookBlock)
	require.NoError(t, <-firstDone)
	assert.Equal(t, models.WorkflowConfirmed, w.State())
}

func TestWorkflow_CloseClearsEverything(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	api := newFakeUpstream()
	w := newTestWorkflow(api, now, nil)

	require.NoError(t, w.Select(now.Add(24*time.Hour)))
	_, err := w.Submit(context.Background(), "Jan Kowalski", "jan@example.com")
	require.NoError(t, err)
	require.Equal(t, models.WorkflowConfirmed, w.State())

	w.Close()

	snapshot := w.Snapshot()
	assert.Equal(t, models.WorkflowClosed, snapshot.State)
	assert.Nil(t, snapshot.Draft)
	assert.Nil(t, snapshot.Confirmation)
	assert.Empty(t, snapshot.Message)

	_, err = w.CalendarFile()
	assert.ErrorIs(t, err, ErrNotConfirmed)

	// Reopening starts clean.
	require.NoError(t, w.Select(now.Add(48*time.Hour)))
	fresh := w.Snapshot()
	require.NotNil(t, fresh.Draft)
	assert.Empty(t, fresh.Draft.GuestName)
}

func TestWorkflow_CloseWhileSubmittingDiscardsSettlement(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	api := newFakeUpstream()
	api.bookBlock = make(chan struct{})

	w := newTestWorkflow(api, now, nil)
	require.NoError(t, w.Select(now.Add(24*time.Hour)))

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), "Jan Kowalski", "jan@example.com")
		done <- err
	}()

	require.Eventually(t, func() bool { return w.State() == models.WorkflowSubmitting },
		time.Second, 10*time.Millisecond)

	w.Close()

	// The in-flight request settles (cancelled) and is discarded; the
	// workflow is already closed and stays closed.
	err := <-done
	assert.ErrorIs(t, err, ErrWorkflowClosed)
	snapshot := w.Snapshot()
	assert.Equal(t, models.WorkflowClosed, snapshot.State)
	assert.Nil(t, snapshot.Confirmation)
	assert.Nil(t, snapshot.Draft)
}
