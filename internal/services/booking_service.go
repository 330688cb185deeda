package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// BookingService creates and reads seat bookings for the local departure
// calendar. Bookings carry the slot's route, date and start time
// denormalized, so a request may omit them and have the slot fill them in.
type BookingService struct {
	bookingRepo *database.BookingRepository
	slotRepo    *database.TimeSlotRepository
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(bookingRepo *database.BookingRepository, slotRepo *database.TimeSlotRepository, logger *logrus.Logger) *BookingService {
	return &BookingService{bookingRepo: bookingRepo, slotRepo: slotRepo, logger: logger}
}

// CreateBooking validates and persists a reservation. There is no seat
// uniqueness constraint on the table; a duplicate seat on the same slot is
// logged as a warning and still written, the seat lock covers the
// interactive window.
func (s *BookingService) CreateBooking(req *models.CreateBookingRequest) (*models.Booking, error) {
	slot, err := s.slotRepo.GetByID(req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, fmt.Errorf("time slot %s does not exist", req.TimeSlotID)
	}

	if req.Route == "" {
		req.Route = slot.Route
	}
	if req.Date == "" {
		req.Date = slot.Date
	}
	if req.StartTime == "" {
		req.StartTime = slot.StartTime
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.bookingRepo.ListByTimeSlot(req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if b.SeatNumber == req.SeatNumber {
			s.logger.WithFields(logrus.Fields{
				"time_slot_id": req.TimeSlotID,
				"seat_number":  req.SeatNumber,
			}).Warn("Seat already booked on this departure, writing anyway")
			break
		}
	}

	booking := &models.Booking{
		TimeSlotID:     req.TimeSlotID,
		SeatNumber:     req.SeatNumber,
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		PickupPoint:    req.PickupPoint,
		DropoffPoint:   req.DropoffPoint,
		Note:           req.Note,
		Amount:         req.Amount,
		AmountPaid:     req.AmountPaid,
		Route:          req.Route,
		Date:           req.Date,
		StartTime:      req.StartTime,
	}
	if err := s.bookingRepo.Insert(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"time_slot_id": booking.TimeSlotID,
		"seat_number":  booking.SeatNumber,
		"route":        booking.Route,
	}).Info("Booking created")

	return booking, nil
}

// ListBookings returns the bookings of one departure.
func (s *BookingService) ListBookings(timeSlotID string) ([]models.Booking, error) {
	return s.bookingRepo.ListByTimeSlot(timeSlotID)
}

// GetBooking returns a booking by id, or nil.
func (s *BookingService) GetBooking(id string) (*models.Booking, error) {
	return s.bookingRepo.GetByID(id)
}
