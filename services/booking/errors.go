package booking

import "fmt"

// WorkflowError is a typed, user-presentable booking engine error.
type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// ErrPastSlot rejects selection of a slot whose start already passed.
	ErrPastSlot = &WorkflowError{Code: "pastSlot", Message: "slot start is in the past"}
	// ErrAlreadyOpen rejects a second selection on an open workflow.
	ErrAlreadyOpen = &WorkflowError{Code: "alreadyOpen", Message: "a slot is already selected"}
	// ErrNotSelecting rejects a submit outside the detail-entry state.
	ErrNotSelecting = &WorkflowError{Code: "notSelecting", Message: "no slot selected"}
	// ErrSubmissionInFlight rejects a submit while one is outstanding.
	ErrSubmissionInFlight = &WorkflowError{Code: "submissionInFlight", Message: "a submission is already in progress"}
	// ErrMissingDetails rejects a submit without guest name and email.
	ErrMissingDetails = &WorkflowError{Code: "missingDetails", Message: "guest name and email are required"}
	// ErrNotConfirmed rejects a calendar-file export before confirmation.
	ErrNotConfirmed = &WorkflowError{Code: "notConfirmed", Message: "no confirmed booking to export"}
	// ErrWorkflowClosed reports that the workflow was closed while a
	// submission was in flight; the settlement was discarded.
	ErrWorkflowClosed = &WorkflowError{Code: "workflowClosed", Message: "workflow closed before the submission settled"}
	// ErrSessionNotFound reports an unknown or already-closed session.
	ErrSessionNotFound = &WorkflowError{Code: "sessionNotFound", Message: "booking session not found"}
)

// NewRejection wraps an upstream refusal (conflict or validation) as a
// user-visible workflow error.
func NewRejection(msg string) error {
	return &WorkflowError{Code: "bookingRejected", Message: msg}
}
