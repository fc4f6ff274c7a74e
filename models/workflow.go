package models

// WorkflowState names one stage of the booking workflow. Closed is both
// the initial and the terminal state.
type WorkflowState string

const (
	WorkflowClosed           WorkflowState = "closed"
	WorkflowSelectingDetails WorkflowState = "selecting_details"
	WorkflowSubmitting       WorkflowState = "submitting"
	WorkflowConfirmed        WorkflowState = "confirmed"
)

// WorkflowSnapshot is the externally visible state of one booking attempt.
type WorkflowSnapshot struct {
	SessionID    string               `json:"sessionId"`
	State        WorkflowState        `json:"state"`
	Draft        *BookingDraft        `json:"draft,omitempty"`
	Confirmation *BookingConfirmation `json:"confirmation,omitempty"`
	Message      string               `json:"message,omitempty"`
}
