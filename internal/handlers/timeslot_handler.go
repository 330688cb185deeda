package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tbexpress/freight-booking-backend/internal/models"
	"github.com/tbexpress/freight-booking-backend/internal/services"
)

// TimeSlotHandler handles departure calendar operations
type TimeSlotHandler struct {
	slotService *services.TimeSlotService
}

// NewTimeSlotHandler creates a new TimeSlotHandler
func NewTimeSlotHandler(slotService *services.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{slotService: slotService}
}

// ListTimeSlots returns the departures of one (date, route) pair, healing
// missing slots from the route template on the way
// @Summary List departures for a date and route
// @Tags TimeSlots
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Param route query string true "SG-TB or TB-SG"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/timeslots [get]
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	route := c.Query("route")
	if !models.IsValidRoute(route) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "route must be " + models.RouteSGTB + " or " + models.RouteTBSG})
		return
	}

	slots, err := h.slotService.ListSlots(date, route)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list time slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_slots": slots, "count": len(slots)})
}

// GetTimeSlot returns one departure by id
// @Router /api/v1/timeslots/{id} [get]
func (h *TimeSlotHandler) GetTimeSlot(c *gin.Context) {
	slot, err := h.slotService.GetSlot(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get time slot"})
		return
	}
	if slot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Time slot not found"})
		return
	}
	c.JSON(http.StatusOK, slot)
}
