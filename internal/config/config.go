package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	CORS          CORSConfig
	SeatLock      SeatLockConfig
	Booking       BookingConfig
	RemoteBooking RemoteBookingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SeatLockConfig holds seat-lock behaviour configuration
type SeatLockConfig struct {
	TTL time.Duration // how long a lock shields a seat after (re)acquisition
}

// BookingConfig holds booking-side configuration
type BookingConfig struct {
	SeatCapacity int // seats per departure, used for free-seat selection
}

// RemoteBookingConfig holds the companion-booking integration settings.
// BaseURL points at the bookings API, which may be this same process or a
// separate deployment.
type RemoteBookingConfig struct {
	BaseURL      string
	Enabled      bool
	Timeout      time.Duration
	RetryEnabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		SeatLock: SeatLockConfig{
			TTL: time.Duration(getEnvAsInt("SEAT_LOCK_TTL_MINUTES", 10)) * time.Minute,
		},
		Booking: BookingConfig{
			SeatCapacity: getEnvAsInt("BOOKING_SEAT_CAPACITY", 28),
		},
		RemoteBooking: RemoteBookingConfig{
			BaseURL:      getEnv("REMOTE_BOOKING_BASE_URL", ""),
			Enabled:      getEnvAsBool("REMOTE_BOOKING_ENABLED", false),
			Timeout:      time.Duration(getEnvAsInt("REMOTE_BOOKING_TIMEOUT_SECONDS", 3)) * time.Second,
			RetryEnabled: getEnvAsBool("REMOTE_BOOKING_RETRY_ENABLED", false),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RemoteBooking.Enabled && c.RemoteBooking.BaseURL == "" {
		return fmt.Errorf("REMOTE_BOOKING_BASE_URL is required when REMOTE_BOOKING_ENABLED is true")
	}

	if c.SeatLock.TTL <= 0 {
		return fmt.Errorf("SEAT_LOCK_TTL_MINUTES must be positive")
	}

	if c.Booking.SeatCapacity < 1 {
		return fmt.Errorf("BOOKING_SEAT_CAPACITY must be at least 1")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
