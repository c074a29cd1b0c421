package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"citrus-link/config"
	"citrus-link/database"
	"citrus-link/handlers"
	"citrus-link/logging"
	"citrus-link/mqtt"
	"citrus-link/redis"
	"citrus-link/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize structured logger
	logger := logging.NewLogger(cfg.LogLevel)

	// Initialize database
	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize Redis
	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to initialize Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("Redis connected successfully")

	// Initialize services
	fleetService := services.NewFleetService(db, redisClient, logger)
	statsService := services.NewStatsService(db)
	mapService := services.NewMapService(db, redisClient)
	telemetryService := services.NewTelemetryService(db, redisClient, logger)

	// Initialize MQTT telemetry ingest
	mqttClient, err := mqtt.NewClient(cfg, telemetryService, logger)
	if err != nil {
		logger.Error("Failed to initialize MQTT client", slog.Any("error", err))
		os.Exit(1)
	}
	defer mqttClient.Disconnect()

	// Initialize handlers and HTTP router
	apiHandler := handlers.NewAPIHandler(fleetService, statsService, mapService)
	e := setupRouter(apiHandler, logger)

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", slog.Any("error", err))
	}

	logger.Info("Server stopped")
}

func setupRouter(apiHandler *handlers.APIHandler, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// The dashboard is served from a separate origin.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	requestLogger := logger.With("component", "http")
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			requestLogger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
			)
			return nil
		},
	}))

	apiHandler.RegisterRoutes(e)
	return e
}
