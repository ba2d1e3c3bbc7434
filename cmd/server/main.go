package main

import (
	"strconv"
	"time"

	"tourdesk/internal/handler"
	"tourdesk/internal/middleware"
	"tourdesk/internal/model"
	"tourdesk/pkg/config"
	"tourdesk/pkg/database"
	"tourdesk/pkg/jwtutil"
	"tourdesk/pkg/logger"
	"tourdesk/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting tourdesk service...", zap.String("environment", cfg.Server.Env))

	// Initialize JWT utilities
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utilities initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize database and run migrations
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.DBName))

	// Handlers read upload limits and the public base URL from config
	handler.Init(cfg)

	// Refresh entity count gauges now and nightly
	refreshEntityCounts(log)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@midnight", func() { refreshEntityCounts(log) }); err != nil {
		log.Fatal("Failed to schedule gauge refresh", zap.Error(err))
	}
	scheduler.Start()

	// Create Echo instance
	e := echo.New()
	e.Validator = handler.NewRequestValidator()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(requestLogging())

	// Routes
	// Public routes that don't require authentication
	e.GET("/", handler.Hello)
	e.GET("/health", handler.Hello)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/auth/login", handler.Login)

	// API routes that require authentication
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware)

	auth.POST("/auth/logout", handler.Logout)
	auth.GET("/auth/me", handler.Me)

	auth.GET("/tours", handler.ListTours)
	auth.GET("/tours/:id", handler.GetTour)
	auth.POST("/tours", handler.CreateTours)
	auth.PUT("/tours/:id", handler.UpdateTour)
	auth.DELETE("/tours/:id", handler.DeleteTour, middleware.RequireAdmin)

	auth.GET("/suppliers", handler.ListSuppliers)
	auth.GET("/suppliers/:id", handler.GetSupplier)
	auth.POST("/suppliers", handler.CreateSupplier)
	auth.PUT("/suppliers/:id", handler.UpdateSupplier)
	auth.DELETE("/suppliers/:id", handler.DeleteSupplier, middleware.RequireAdmin)

	auth.GET("/tours/:id/files", handler.ListTourFiles)
	auth.GET("/tours/:id/files/grouped", handler.GroupedTourFiles)
	auth.POST("/tours/:id/files", handler.UploadTourFile)
	auth.GET("/suppliers/:id/files", handler.ListSupplierFiles)
	auth.POST("/suppliers/:id/files", handler.UploadSupplierFile)
	auth.DELETE("/files/:id", handler.DeleteFile, middleware.RequireAdmin)
	auth.GET("/categories/:kind", handler.GetCategories)

	auth.GET("/suggestions", handler.GetSuggestions)
	auth.GET("/export/tours.xlsx", handler.ExportTours)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// requestLogging logs every request and feeds the HTTP metrics.
func requestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Process request
			err := next(c)

			// Calculate duration
			duration := time.Since(start).Seconds()
			status := c.Response().Status

			// Log request details
			log := logger.FromContext(c)
			log.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Float64("duration_s", duration),
				zap.String("ip", c.RealIP()),
			)

			statusLabel := strconv.Itoa(status)
			prometheus.HttpRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Request().URL.Path,
				statusLabel,
			).Inc()

			prometheus.HttpRequestDuration.WithLabelValues(
				c.Request().Method,
				c.Request().URL.Path,
				statusLabel,
			).Observe(duration)

			return err
		}
	}
}

// refreshEntityCounts updates the tour and supplier gauges.
func refreshEntityCounts(log *zap.Logger) {
	var tours, suppliers int64
	if err := database.GetDB().Model(&model.Tour{}).Count(&tours).Error; err != nil {
		log.Warn("Failed to count tours", zap.Error(err))
		return
	}
	if err := database.GetDB().Model(&model.Supplier{}).Count(&suppliers).Error; err != nil {
		log.Warn("Failed to count suppliers", zap.Error(err))
		return
	}
	prometheus.UpdateEntityCounts(tours, suppliers)
}
