package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/tbexpress/freight-booking-backend/internal/config"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/handlers"
	"github.com/tbexpress/freight-booking-backend/internal/middleware"
	"github.com/tbexpress/freight-booking-backend/internal/services"
	"github.com/tbexpress/freight-booking-backend/pkg/bookingapi"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TB Express Freight Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	orderRepo := database.NewOrderRepository(db)
	changeLogRepo := database.NewOrderChangeLogRepository(db)
	slotRepo := database.NewTimeSlotRepository(db)
	lockRepo := database.NewSeatLockRepository(db)
	bookingRepo := database.NewBookingRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	resolver := services.NewStationResolver()
	allocator := services.NewOrderIDAllocator(orderRepo, logger)
	lockService := services.NewSeatLockService(lockRepo, cfg.SeatLock.TTL, logger)
	slotService := services.NewTimeSlotService(slotRepo, logger)
	bookingService := services.NewBookingService(bookingRepo, slotRepo, logger)

	bookingClient := bookingapi.NewClient(cfg.RemoteBooking.BaseURL)
	payloadBuilder := services.NewBookingPayloadBuilder(resolver)
	companionService := services.NewCompanionBookingService(
		bookingClient,
		payloadBuilder,
		cfg.RemoteBooking,
		cfg.Booking.SeatCapacity,
		logger,
	)
	orderService := services.NewOrderService(orderRepo, changeLogRepo, allocator, resolver, companionService, logger)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	lockHandler := handlers.NewSeatLockHandler(lockService)
	slotHandler := handlers.NewTimeSlotHandler(slotService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	stationHandler := handlers.NewStationHandler()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", orderHandler.CreateOrder)
		v1.GET("/orders", orderHandler.ListOrders)
		v1.GET("/orders/:id", orderHandler.GetOrder)
		v1.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		v1.GET("/orders/:id/changelog", orderHandler.GetChangeLog)

		v1.GET("/timeslots", slotHandler.ListTimeSlots)
		v1.GET("/timeslots/:id", slotHandler.GetTimeSlot)

		v1.POST("/seat-locks", lockHandler.Acquire)
		v1.GET("/seat-locks", lockHandler.ListForTimeSlot)
		v1.DELETE("/seat-locks/by-seat", lockHandler.Release)
		v1.POST("/seat-locks/release-all", lockHandler.ReleaseAll)

		v1.POST("/bookings", bookingHandler.CreateBooking)
		v1.GET("/bookings", bookingHandler.ListBookings)
		v1.GET("/bookings/:id", bookingHandler.GetBooking)

		v1.GET("/stations", stationHandler.ListStations)
		v1.GET("/stations/:code", stationHandler.GetStation)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	}
}
