package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tbexpress/freight-booking-backend/internal/models"
	"github.com/tbexpress/freight-booking-backend/internal/services"
)

// SeatLockHandler handles advisory seat lock operations
type SeatLockHandler struct {
	lockService *services.SeatLockService
}

// NewSeatLockHandler creates a new SeatLockHandler
func NewSeatLockHandler(lockService *services.SeatLockService) *SeatLockHandler {
	return &SeatLockHandler{lockService: lockService}
}

// Acquire takes or renews a seat lock
// @Summary Acquire a seat lock
// @Description Takes a TTL lock on one seat of one departure; renewal by the same holder is idempotent
// @Tags SeatLocks
// @Accept json
// @Produce json
// @Param request body models.AcquireSeatLockRequest true "Lock request"
// @Success 201 {object} models.SeatLock "Lock acquired"
// @Success 200 {object} models.SeatLock "Lock renewed"
// @Failure 409 {object} models.SeatLockConflictError "Seat held by another session"
// @Router /api/v1/seat-locks [post]
func (h *SeatLockHandler) Acquire(c *gin.Context) {
	var req models.AcquireSeatLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lock, outcome, err := h.lockService.Acquire(&req)
	if err != nil {
		var conflict *models.SeatLockConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":      "Seat is locked by another session",
				"holder":     conflict.Holder,
				"expires_at": conflict.ExpiresAt,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to acquire seat lock"})
		return
	}

	status := http.StatusCreated
	if outcome == services.AcquireRenewed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"lock": lock, "outcome": string(outcome)})
}

// Release removes the lock on one seat
// @Router /api/v1/seat-locks/by-seat [delete]
func (h *SeatLockHandler) Release(c *gin.Context) {
	var req models.ReleaseSeatLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.SeatLockKey.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.lockService.Release(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release seat lock"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ReleaseAllRequest is the POST /seat-locks/release-all body.
type ReleaseAllRequest struct {
	Holder string `json:"holder"`
}

// ReleaseAll removes every lock owned by one holder
// @Router /api/v1/seat-locks/release-all [post]
func (h *SeatLockHandler) ReleaseAll(c *gin.Context) {
	var req ReleaseAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Holder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "holder is required"})
		return
	}

	deleted, err := h.lockService.ReleaseAll(req.Holder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release seat locks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ListForTimeSlot returns the unexpired locks of one departure
// @Router /api/v1/seat-locks [get]
func (h *SeatLockHandler) ListForTimeSlot(c *gin.Context) {
	timeSlotID := c.Query("time_slot_id")
	if timeSlotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time_slot_id is required"})
		return
	}

	locks, err := h.lockService.ListForTimeSlot(timeSlotID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list seat locks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locks": locks, "count": len(locks)})
}
