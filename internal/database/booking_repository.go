package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// BookingRepository handles seat booking persistence. The table carries no
// unique constraint on (time_slot_id, seat_number); the seat lock shields
// the interactive selection window only.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Insert writes a new booking row.
func (r *BookingRepository) Insert(booking *models.Booking) error {
	booking.ID = uuid.New().String()
	booking.CreatedAt = time.Now()

	query := `
		INSERT INTO bookings (
			id, time_slot_id, seat_number, passenger_name, passenger_phone,
			pickup_point, dropoff_point, note, amount, amount_paid,
			route, slot_date, start_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(query,
		booking.ID, booking.TimeSlotID, booking.SeatNumber, booking.PassengerName, booking.PassengerPhone,
		booking.PickupPoint, booking.DropoffPoint, booking.Note, booking.Amount, booking.AmountPaid,
		booking.Route, booking.Date, booking.StartTime, booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// ListByTimeSlot returns the bookings of one departure ordered by seat.
func (r *BookingRepository) ListByTimeSlot(timeSlotID string) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT id, time_slot_id, seat_number, passenger_name, passenger_phone,
		       pickup_point, dropoff_point, note, amount, amount_paid,
		       route, slot_date, start_time, created_at
		FROM bookings
		WHERE time_slot_id = $1
		ORDER BY seat_number ASC`

	err := r.db.Select(&bookings, query, timeSlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetByID returns a booking, or nil when it does not exist.
func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	var booking models.Booking
	query := `
		SELECT id, time_slot_id, seat_number, passenger_name, passenger_phone,
		       pickup_point, dropoff_point, note, amount, amount_paid,
		       route, slot_date, start_time, created_at
		FROM bookings
		WHERE id = $1`

	err := r.db.Get(&booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}
