package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// StationHandler exposes the static station directory
type StationHandler struct{}

// NewStationHandler creates a new StationHandler
func NewStationHandler() *StationHandler {
	return &StationHandler{}
}

// ListStations returns every known station with its aliases
// @Router /api/v1/stations [get]
func (h *StationHandler) ListStations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stations": models.Stations, "count": len(models.Stations)})
}

// GetStation returns one station by numeric code
// @Router /api/v1/stations/{code} [get]
func (h *StationHandler) GetStation(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code must be an integer"})
		return
	}
	station := models.StationByCode(code)
	if station == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Station not found"})
		return
	}
	c.JSON(http.StatusOK, station)
}
