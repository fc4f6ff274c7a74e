package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calx/handlers"
	"calx/models"
	"calx/routes"
	"calx/services/booking"
)

// stubUpstream fakes the scheduling API for handler tests.
type stubUpstream struct {
	slots   map[string][]time.Time
	bookErr error
	booked  *models.BookingConfirmation
}

func (s *stubUpstream) GetAvailableSlots(ctx context.Context, providerID, date string) ([]time.Time, error) {
	return s.slots[date], nil
}

func (s *stubUpstream) CreateBooking(ctx context.Context, providerID string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return s.booked, nil
}

func newTestRouter(api *stubUpstream) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc := booking.NewBookingService(api, 5*time.Minute)
	routes.RegisterBookingRoutes(router, handlers.NewBookingHandler(svc))
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetCalendar_ReturnsProjectedEvents(t *testing.T) {
	start := time.Date(2100, 3, 10, 9, 0, 0, 0, time.UTC)
	api := &stubUpstream{slots: map[string][]time.Time{"2100-03-10": {start}}}
	router := newTestRouter(api)

	rec := doJSON(router, http.MethodGet, "/api/booking/prov-1/calendar?date=2100-03-10&view=day", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.AvailabilitySnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.Events, 1)
	assert.Equal(t, "Free slot", snapshot.Events[0].Title)
	assert.True(t, snapshot.Events[0].Start.Equal(start))
	assert.True(t, snapshot.Events[0].End.Equal(start.Add(30*time.Minute)))
}

func TestGetCalendar_RejectsUnknownView(t *testing.T) {
	router := newTestRouter(&stubUpstream{})

	rec := doJSON(router, http.MethodGet, "/api/booking/prov-1/calendar?view=fortnight", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectSlot_PastStartIsRejected(t *testing.T) {
	router := newTestRouter(&stubUpstream{})

	rec := doJSON(router, http.MethodPost, "/api/booking/prov-1/select",
		gin.H{"start": "2020-01-01T09:00:00Z"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	start := time.Date(2100, 3, 10, 9, 0, 0, 0, time.UTC)
	api := &stubUpstream{
		slots: map[string][]time.Time{"2100-03-10": {start}},
		booked: &models.BookingConfirmation{
			ID:        "abc123",
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
			Host:      models.Host{Name: "Anna", Email: "anna@example.com"},
		},
	}
	router := newTestRouter(api)

	rec := doJSON(router, http.MethodPost, "/api/booking/prov-1/select",
		gin.H{"start": start.Format(time.RFC3339)})
	require.Equal(t, http.StatusCreated, rec.Code)

	var opened models.WorkflowSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	require.NotEmpty(t, opened.SessionID)

	rec = doJSON(router, http.MethodPost, "/api/booking/prov-1/session/"+opened.SessionID+"/submit",
		gin.H{"guestName": "Jan Kowalski", "guestEmail": "jan@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var confirmed models.WorkflowSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	assert.Equal(t, models.WorkflowConfirmed, confirmed.State)
	require.NotNil(t, confirmed.Confirmation)
	assert.Equal(t, "abc123", confirmed.Confirmation.ID)

	rec = doJSON(router, http.MethodGet, "/api/booking/prov-1/session/"+opened.SessionID+"/calendar-file", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="meeting.ics"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "UID:abc123")
	assert.Contains(t, rec.Body.String(), "DTSTART:21000310T090000Z")

	rec = doJSON(router, http.MethodDelete, "/api/booking/prov-1/session/"+opened.SessionID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/booking/prov-1/session/"+opened.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmit_ConflictSurfacesMessageAndKeepsDraft(t *testing.T) {
	start := time.Date(2100, 3, 10, 9, 0, 0, 0, time.UTC)
	api := &stubUpstream{
		slots:   map[string][]time.Time{"2100-03-10": {start}},
		bookErr: errors.New("slot already booked"),
	}
	router := newTestRouter(api)

	rec := doJSON(router, http.MethodPost, "/api/booking/prov-1/select",
		gin.H{"start": start.Format(time.RFC3339)})
	require.Equal(t, http.StatusCreated, rec.Code)
	var opened models.WorkflowSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))

	rec = doJSON(router, http.MethodPost, "/api/booking/prov-1/session/"+opened.SessionID+"/submit",
		gin.H{"guestName": "Jan Kowalski", "guestEmail": "jan@example.com"})
	require.Equal(t, http.StatusConflict, rec.Code)

	var rejected models.WorkflowSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rejected))
	assert.Equal(t, models.WorkflowSelectingDetails, rejected.State)
	require.NotNil(t, rejected.Draft)
	assert.Equal(t, "Jan Kowalski", rejected.Draft.GuestName)
	assert.Contains(t, rejected.Message, "slot already booked")
}
