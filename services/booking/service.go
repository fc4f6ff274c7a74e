package booking

import (
	"context"
	"sync"
	"time"

	"calx/models"
	"calx/upstream"
	"calx/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService. It owns one
// SlotAggregator per provider and one Workflow per open session; neither
// is shared across instances.
type DefaultBookingService struct {
	API      upstream.API
	FreshFor time.Duration

	mu          sync.Mutex
	aggregators map[string]*SlotAggregator
	workflows   map[string]*Workflow
}

// NewBookingService builds the engine over an upstream client. freshFor
// is the availability freshness window.
func NewBookingService(api upstream.API, freshFor time.Duration) *DefaultBookingService {
	return &DefaultBookingService{
		API:         api,
		FreshFor:    freshFor,
		aggregators: make(map[string]*SlotAggregator),
		workflows:   make(map[string]*Workflow),
	}
}

func (s *DefaultBookingService) aggregatorFor(providerID string) *SlotAggregator {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.aggregators[providerID]
	if !ok {
		agg = NewSlotAggregator(providerID, s.API, s.FreshFor)
		s.aggregators[providerID] = agg
	}
	return agg
}

// Calendar implements BookingService.
func (s *DefaultBookingService) Calendar(ctx context.Context, providerID string, anchor time.Time, view models.ViewGranularity) (models.AvailabilitySnapshot, error) {
	agg := s.aggregatorFor(providerID)
	agg.SetRange(anchor, view)
	agg.WaitSettled(ctx)
	return agg.Snapshot(), nil
}

// Select implements BookingService. A past slot never opens a session.
func (s *DefaultBookingService) Select(providerID string, start time.Time) (*models.WorkflowSnapshot, error) {
	sessionID := uuid.New().String()
	agg := s.aggregatorFor(providerID)
	workflow := NewWorkflow(sessionID, providerID, s.API, agg.Invalidate)

	if err := workflow.Select(start); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.workflows[sessionID] = workflow
	s.mu.Unlock()

	utils.GetLogger().Debug("booking session opened",
		zap.String("sessionID", sessionID),
		zap.String("providerID", providerID),
		zap.Time("start", start))

	snapshot := workflow.Snapshot()
	return &snapshot, nil
}

func (s *DefaultBookingService) workflowFor(sessionID string) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	workflow, ok := s.workflows[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return workflow, nil
}

// Submit implements BookingService.
func (s *DefaultBookingService) Submit(ctx context.Context, providerID, sessionID, guestName, guestEmail string) (*models.WorkflowSnapshot, error) {
	workflow, err := s.workflowFor(sessionID)
	if err != nil {
		return nil, err
	}
	_, submitErr := workflow.Submit(ctx, guestName, guestEmail)
	snapshot := workflow.Snapshot()
	if submitErr != nil {
		return &snapshot, submitErr
	}
	return &snapshot, nil
}

// Session implements BookingService.
func (s *DefaultBookingService) Session(providerID, sessionID string) (*models.WorkflowSnapshot, error) {
	workflow, err := s.workflowFor(sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := workflow.Snapshot()
	return &snapshot, nil
}

// CalendarFile implements BookingService.
func (s *DefaultBookingService) CalendarFile(providerID, sessionID string) ([]byte, error) {
	workflow, err := s.workflowFor(sessionID)
	if err != nil {
		return nil, err
	}
	return workflow.CalendarFile()
}

// CloseSession implements BookingService. Closing an unknown session is
// an error; closing an open one always succeeds, even mid-submission.
// TODO: sweep sessions abandoned without an explicit close.
func (s *DefaultBookingService) CloseSession(providerID, sessionID string) error {
	s.mu.Lock()
	workflow, ok := s.workflows[sessionID]
	if ok {
		delete(s.workflows, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	workflow.Close()
	return nil
}
