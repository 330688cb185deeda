package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// OrderService runs the goods-intake flow: allocate a code, persist the
// order, write the audit row, then hand the committed order to the
// companion-booking saga. Saga failures become a warning on the response,
// never an error of the intake.
type OrderService struct {
	orderRepo     *database.OrderRepository
	changeLogRepo *database.OrderChangeLogRepository
	allocator     *OrderIDAllocator
	resolver      *StationResolver
	companion     *CompanionBookingService
	logger        *logrus.Logger
	now           func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo *database.OrderRepository,
	changeLogRepo *database.OrderChangeLogRepository,
	allocator *OrderIDAllocator,
	resolver *StationResolver,
	companion *CompanionBookingService,
	logger *logrus.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		changeLogRepo: changeLogRepo,
		allocator:     allocator,
		resolver:      resolver,
		companion:     companion,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateOrder validates, allocates and persists a new order, then runs the
// companion-booking saga for unresolved destinations.
func (s *OrderService) CreateOrder(req *models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	origin := models.StationByCode(req.OriginStationCode)

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPaid
	}

	order := &models.Order{
		OriginStation:  origin.Name,
		SenderName:     req.SenderName,
		SenderPhone:    req.SenderPhone,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		ItemType:       req.ItemType,
		Quantity:       req.Quantity,
		Amount:         req.Amount,
		PaymentStatus:  paymentStatus,
		DeliveryStatus: models.DeliveryStatusReceived,
		CreatedBy:      req.CreatedBy,
	}

	// Auto-route: a station hint embedded in the recipient text fixes the
	// destination; otherwise the parcel travels along the route.
	if match := s.resolver.Resolve(req.RecipientName); match != nil {
		name := match.Station.Name
		order.DestinationStation = &name
	} else {
		alongRoute := models.DestinationAlongRoute
		order.DestinationStation = &alongRoute
	}

	if err := s.allocator.Allocate(order, req.OriginStationCode, s.now()); err != nil {
		return nil, err
	}

	if err := s.changeLogRepo.Insert(&models.OrderChangeLog{
		OrderID:   order.ID,
		Action:    "create",
		Detail:    fmt.Sprintf("order created at %s", order.OriginStation),
		ChangedBy: req.CreatedBy,
	}); err != nil {
		// The order is committed; a missing audit row is logged, not fatal.
		s.logger.WithError(err).WithField("order_id", order.ID).Error("Failed to write order change log")
	}

	response := &models.CreateOrderResponse{Order: order}

	result := s.companion.TryCreateCompanionBooking(order)
	switch result.Status {
	case BookingCreated:
		response.Booking = &models.CompanionBookingRef{
			ID:         result.Booking.ID,
			TimeSlotID: result.Booking.TimeSlotID,
			SeatNumber: result.Booking.SeatNumber,
		}
	case BookingFailed:
		response.Warning = "companion booking not created: " + result.Reason
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"origin":      order.OriginStation,
		"destination": order.DestinationStation,
		"companion":   string(result.Status),
	}).Info("Order created")

	return response, nil
}

// GetOrder returns an order by its code, or nil.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// ListOrders returns the orders of one intake day.
func (s *OrderService) ListOrders(date time.Time) ([]models.Order, error) {
	return s.orderRepo.ListByDate(date)
}

// UpdateStatus changes the payment/delivery status pair and appends the
// audit row. Returns false when the order does not exist.
func (s *OrderService) UpdateStatus(id, paymentStatus, deliveryStatus, updatedBy string) (bool, error) {
	found, err := s.orderRepo.UpdateStatus(id, paymentStatus, deliveryStatus, updatedBy)
	if err != nil || !found {
		return found, err
	}

	if err := s.changeLogRepo.Insert(&models.OrderChangeLog{
		OrderID:   id,
		Action:    "update_status",
		Detail:    fmt.Sprintf("payment=%s delivery=%s", paymentStatus, deliveryStatus),
		ChangedBy: updatedBy,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("Failed to write order change log")
	}
	return true, nil
}

// ChangeLog returns the audit trail of an order.
func (s *OrderService) ChangeLog(orderID string) ([]models.OrderChangeLog, error) {
	return s.changeLogRepo.ListByOrder(orderID)
}
