package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"calx/utils"
)

// SessionHandler manages the stored provider identity the gateway acts
// for: set on load, cleared on logout. Tokens are never echoed back.
type SessionHandler struct {
	Cache *redis.Client
}

func NewSessionHandler(cache *redis.Client) *SessionHandler {
	return &SessionHandler{Cache: cache}
}

// SetProviderSession stores a provider identity and upstream token.
func (h *SessionHandler) SetProviderSession(c *gin.Context) {
	var input struct {
		ProviderID string `json:"providerId" binding:"required"`
		Name       string `json:"name"`
		Token      string `json:"token"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session := utils.ProviderSession{
		ProviderID: input.ProviderID,
		Name:       input.Name,
		Token:      input.Token,
	}
	if err := utils.SaveProviderSession(h.Cache, session); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save provider session", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProviderSession reports whether a provider session is held.
func (h *SessionHandler) GetProviderSession(c *gin.Context) {
	providerID := c.Param("providerID")
	session, err := utils.GetProviderSession(h.Cache, providerID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "no provider session", "the session is absent or its token expired")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId": session.ProviderID,
		"name":       session.Name,
		"hasToken":   session.Token != "",
	})
}

// ClearProviderSession removes a stored provider session (logout).
func (h *SessionHandler) ClearProviderSession(c *gin.Context) {
	providerID := c.Param("providerID")
	if err := utils.ClearProviderSession(h.Cache, providerID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to clear provider session", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
