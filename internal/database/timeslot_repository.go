package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// TimeSlotRepository handles departure calendar persistence
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new TimeSlotRepository
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// CountForDateRoute counts slots for the exact (date, route) pair.
func (r *TimeSlotRepository) CountForDateRoute(date, route string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM time_slots WHERE slot_date = $1 AND route = $2`
	if err := r.db.Get(&count, query, date, route); err != nil {
		return 0, fmt.Errorf("failed to count time slots: %w", err)
	}
	return count, nil
}

// InsertIfAbsent inserts a slot unless the (start_time, slot_date, route)
// triple already exists. Duplicate attempts are absorbed by the unique
// constraint, not treated as errors, so concurrent generation is safe.
// Returns true when a row was written.
func (r *TimeSlotRepository) InsertIfAbsent(slot *models.TimeSlot) (bool, error) {
	slot.ID = uuid.New().String()
	slot.CreatedAt = time.Now()

	query := `
		INSERT INTO time_slots (id, route, slot_date, start_time, vehicle_plate, driver_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (route, slot_date, start_time) DO NOTHING`

	result, err := r.db.Exec(query,
		slot.ID, slot.Route, slot.Date, slot.StartTime,
		slot.VehiclePlate, slot.DriverName, slot.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert time slot: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ListForDateRoute returns slots for the (date, route) pair ordered by
// start time.
func (r *TimeSlotRepository) ListForDateRoute(date, route string) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	query := `
		SELECT id, route, slot_date, start_time, vehicle_plate, driver_name, created_at
		FROM time_slots
		WHERE slot_date = $1 AND route = $2
		ORDER BY start_time ASC`

	err := r.db.Select(&slots, query, date, route)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	return slots, nil
}

// GetByID returns a slot, or nil when it does not exist.
func (r *TimeSlotRepository) GetByID(id string) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	query := `
		SELECT id, route, slot_date, start_time, vehicle_plate, driver_name, created_at
		FROM time_slots
		WHERE id = $1`

	err := r.db.Get(&slot, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time slot: %w", err)
	}
	return &slot, nil
}
