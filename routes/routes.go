package routes

import (
	"net/http"
	"time"

	"calx/handlers"
	"calx/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	bookingGroup := r.Group("/api/booking/:providerID")
	{
		bookingGroup.GET("/calendar", bh.GetCalendar)
		bookingGroup.POST("/select", bh.SelectSlot)
		bookingGroup.GET("/session/:sessionID", bh.GetSession)
		bookingGroup.POST("/session/:sessionID/submit", bh.SubmitBooking)
		bookingGroup.GET("/session/:sessionID/calendar-file", bh.DownloadCalendarFile)
		bookingGroup.DELETE("/session/:sessionID", bh.CloseSession)
	}
}

// RegisterSessionRoutes sets up the provider session lifecycle endpoints.
func RegisterSessionRoutes(r *gin.Engine, sh *handlers.SessionHandler) {
	sessionGroup := r.Group("/api/provider-session")
	{
		sessionGroup.POST("", sh.SetProviderSession)
		sessionGroup.GET("/:providerID", sh.GetProviderSession)
		sessionGroup.DELETE("/:providerID", sh.ClearProviderSession)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler, sh *handlers.SessionHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, bh)
	RegisterSessionRoutes(r, sh)
}
