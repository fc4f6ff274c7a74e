// File: calx/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calx/config"
	"calx/handlers"
	"calx/middleware"
	"calx/routes"
	"calx/services/booking"
	"calx/upstream"
	"calx/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitCache()
	cache := utils.GetCacheClient()
	utils.StartHealthMonitor(cache)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Upstream scheduling API client. The bearer token comes from the
	// stored provider session when one is held.
	upstreamClient := upstream.NewClient(
		config.AppConfig.UpstreamAPIURL,
		time.Duration(config.AppConfig.UpstreamTimeoutSeconds)*time.Second,
		func(providerID string) string {
			session, err := utils.GetProviderSession(cache, providerID)
			if err != nil || session == nil {
				return ""
			}
			return session.Token
		},
	)

	// Booking engine.
	freshFor := time.Duration(config.AppConfig.SlotCacheTTLSeconds) * time.Second
	bookingService := booking.NewBookingService(upstreamClient, freshFor)

	bookingHandler := handlers.NewBookingHandler(bookingService)
	sessionHandler := handlers.NewSessionHandler(cache)

	// Register routes.
	routes.RegisterRoutes(router, bookingHandler, sessionHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
