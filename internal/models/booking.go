package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/tbexpress/freight-booking-backend/pkg/validator"
)

// Booking is a seat reservation on one departure. Date, start time and
// route are denormalized from the timeslot at creation so the row stays
// readable if the calendar is regenerated.
type Booking struct {
	ID             string    `db:"id" json:"id"`
	TimeSlotID     string    `db:"time_slot_id" json:"time_slot_id"`
	SeatNumber     int       `db:"seat_number" json:"seat_number"`
	PassengerName  string    `db:"passenger_name" json:"passenger_name"`
	PassengerPhone string    `db:"passenger_phone" json:"passenger_phone"`
	PickupPoint    string    `db:"pickup_point" json:"pickup_point"`
	DropoffPoint   string    `db:"dropoff_point" json:"dropoff_point"`
	Note           string    `db:"note" json:"note"`
	Amount         float64   `db:"amount" json:"amount"`
	AmountPaid     float64   `db:"amount_paid" json:"amount_paid"`
	Route          string    `db:"route" json:"route"`
	Date           string    `db:"slot_date" json:"date"`
	StartTime      string    `db:"start_time" json:"start_time"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CreateBookingRequest is the POST /bookings body and the payload the
// companion-booking saga submits to the remote bookings API.
type CreateBookingRequest struct {
	TimeSlotID     string  `json:"time_slot_id"`
	SeatNumber     int     `json:"seat_number"`
	PassengerName  string  `json:"passenger_name"`
	PassengerPhone string  `json:"passenger_phone"`
	PickupPoint    string  `json:"pickup_point,omitempty"`
	DropoffPoint   string  `json:"dropoff_point,omitempty"`
	Note           string  `json:"note,omitempty"`
	Amount         float64 `json:"amount"`
	AmountPaid     float64 `json:"amount_paid"`
	Route          string  `json:"route"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
}

// Validate enforces the booking payload contract: phone, name, timeslot id,
// positive amount, and time+date all present.
func (r *CreateBookingRequest) Validate() error {
	sanitized, err := validator.NewPhoneValidator().Validate(r.PassengerPhone)
	if err != nil {
		return fmt.Errorf("passenger_phone: %w", err)
	}
	r.PassengerPhone = sanitized
	if strings.TrimSpace(r.PassengerName) == "" {
		return fmt.Errorf("passenger_name is required")
	}
	if strings.TrimSpace(r.TimeSlotID) == "" {
		return fmt.Errorf("time_slot_id is required")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if strings.TrimSpace(r.StartTime) == "" || strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("date and start_time are required")
	}
	if r.SeatNumber < 1 {
		return fmt.Errorf("seat_number must be positive")
	}
	return nil
}
