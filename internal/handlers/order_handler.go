package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tbexpress/freight-booking-backend/internal/models"
	"github.com/tbexpress/freight-booking-backend/internal/services"
)

// OrderHandler handles goods-intake order operations
type OrderHandler struct {
	orderService *services.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder creates a new goods order
// @Summary Create a new goods order
// @Description Allocates a daily sequential order code, persists the order and attempts a companion seat booking
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order request"
// @Success 201 {object} models.CreateOrderResponse "Order created, warning set when the companion booking failed"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.orderService.CreateOrder(&req)
	if err != nil {
		if errors.Is(err, services.ErrAllocationExhausted) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not allocate an order code, please retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetOrder returns one order by its code
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders returns the orders of one intake day, today by default
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	orders, err := h.orderService.ListOrders(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// UpdateOrderStatusRequest is the PUT /orders/:id/status body.
type UpdateOrderStatusRequest struct {
	PaymentStatus  string `json:"payment_status"`
	DeliveryStatus string `json:"delivery_status"`
	UpdatedBy      string `json:"updated_by"`
}

// UpdateStatus changes the payment and delivery status of an order
// @Router /api/v1/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.PaymentStatus != models.PaymentStatusPaid && req.PaymentStatus != models.PaymentStatusUnpaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_status must be paid or unpaid"})
		return
	}
	switch req.DeliveryStatus {
	case models.DeliveryStatusReceived, models.DeliveryStatusInTransit,
		models.DeliveryStatusDelivered, models.DeliveryStatusReturned:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "delivery_status is not a known value"})
		return
	}

	found, err := h.orderService.UpdateStatus(c.Param("id"), req.PaymentStatus, req.DeliveryStatus, req.UpdatedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

// GetChangeLog returns the audit trail of an order
// @Router /api/v1/orders/{id}/changelog [get]
func (h *OrderHandler) GetChangeLog(c *gin.Context) {
	entries, err := h.orderService.ChangeLog(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order change log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
