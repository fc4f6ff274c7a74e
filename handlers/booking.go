package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"calx/models"
	"calx/services/booking"
	"calx/utils"
)

// BookingHandler exposes the booking engine over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	// SettleWait bounds how long a calendar request waits for day fetches
	// to settle before returning a partial snapshot.
	SettleWait time.Duration
}

// NewBookingHandler builds the handler set for the booking engine.
func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc, SettleWait: 5 * time.Second}
}

func providerIDFrom(c *gin.Context) (string, bool) {
	providerID := strings.TrimSpace(c.Param("providerID"))
	if providerID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid provider", "a provider id is required")
		return "", false
	}
	return providerID, true
}

// GetCalendar resolves the visible range and returns the merged
// availability snapshot. Days still loading when the settle window runs
// out are reported as loading; the caller may re-request.
func (h *BookingHandler) GetCalendar(c *gin.Context) {
	providerID, ok := providerIDFrom(c)
	if !ok {
		return
	}

	view, err := models.ParseViewGranularity(c.Query("view"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid view", err.Error())
		return
	}

	anchor := time.Now()
	if raw := c.Query("date"); raw != "" {
		anchor, err = time.Parse("2006-01-02", raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid date", err.Error())
			return
		}
	}

	ctx, cancel := timeoutContext(c, h.SettleWait)
	defer cancel()

	snapshot, err := h.Service.Calendar(ctx, providerID, anchor, view)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load calendar", err.Error())
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SelectSlot opens a booking session for a slot start.
func (h *BookingHandler) SelectSlot(c *gin.Context) {
	providerID, ok := providerIDFrom(c)
	if !ok {
		return
	}

	var input struct {
		Start time.Time `json:"start" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	snapshot, err := h.Service.Select(providerID, input.Start)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// SubmitBooking drives a session's submission.
func (h *BookingHandler) SubmitBooking(c *gin.Context) {
	providerID, ok := providerIDFrom(c)
	if !ok {
		return
	}

	var input struct {
		GuestName  string `json:"guestName"`
		GuestEmail string `json:"guestEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	snapshot, err := h.Service.Submit(c.Request.Context(), providerID, c.Param("sessionID"), input.GuestName, input.GuestEmail)
	if err != nil {
		var wfErr *booking.WorkflowError
		if errors.As(err, &wfErr) && wfErr.Code == "bookingRejected" && snapshot != nil {
			// Rejection keeps the draft; return the snapshot so the guest
			// can retry with the message attached.
			c.JSON(http.StatusConflict, snapshot)
			return
		}
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetSession reports a session's workflow snapshot.
func (h *BookingHandler) GetSession(c *gin.Context) {
	providerID, ok := providerIDFrom(c)
	if !ok {
		return
	}

	snapshot, err := h.Service.Session(providerID, c.Param("sessionID"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// DownloadCalendarFile serves the .ics invite for a confirmed session.
func (h *BookingHandler) DownloadCalendarFile(c *gin.Context) {
	providerID, ok := providerIDFrom(c)
	if !ok {
		return
	}

	payload, err := h.Service.CalendarFile(providerID, c.Param("sessionID"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+booking.CalendarFileName+`"`)
	c.Data(http.StatusOK, booking.CalendarFileContentType, payload)
}

// CloseSession closes a session from any state.
func (h *BookingHandler) CloseSession(c *gin.Context) {
	providerID, ok := providerIDFrom(c)
	if !ok {
		return
	}

	if err := h.Service.CloseSession(providerID, c.Param("sessionID")); err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondWorkflowError(c *gin.Context, err error) {
	var wfErr *booking.WorkflowError
	if !errors.As(err, &wfErr) {
		utils.JSONError(c, http.StatusInternalServerError, "booking engine failure", err.Error())
		return
	}

	status := http.StatusConflict
	switch wfErr {
	case booking.ErrPastSlot, booking.ErrMissingDetails:
		status = http.StatusUnprocessableEntity
	case booking.ErrSessionNotFound:
		status = http.StatusNotFound
	case booking.ErrWorkflowClosed:
		status = http.StatusGone
	}
	utils.JSONError(c, status, wfErr.Message, wfErr.Code)
}

func timeoutContext(c *gin.Context, d time.Duration) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}
