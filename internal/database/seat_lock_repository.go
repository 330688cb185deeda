package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// ErrDuplicateSeatLock signals that the insert lost the acquisition race;
// the seat-lock service re-reads the row to report the winning holder.
var ErrDuplicateSeatLock = fmt.Errorf("seat lock already exists")

// SeatLockRepository handles seat lock persistence. The unique constraint
// on (route, slot_date, time_slot_id, seat_number) enforces mutual
// exclusion; there is no in-process locking.
type SeatLockRepository struct {
	db *sqlx.DB
}

// NewSeatLockRepository creates a new SeatLockRepository
func NewSeatLockRepository(db *sqlx.DB) *SeatLockRepository {
	return &SeatLockRepository{db: db}
}

// DeleteExpired removes every lock whose expiry has passed, table-wide.
// Called at the head of every lock operation; there is no background
// reaper, staleness is bounded by call rate.
func (r *SeatLockRepository) DeleteExpired(now time.Time) (int, error) {
	result, err := r.db.Exec(`DELETE FROM seat_locks WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired locks: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// GetByKey returns the lock at the composite key, or nil.
func (r *SeatLockRepository) GetByKey(key models.SeatLockKey) (*models.SeatLock, error) {
	var lock models.SeatLock
	query := `
		SELECT id, route, slot_date, time_slot_id, seat_number,
		       holder, holder_account_id, created_at, expires_at
		FROM seat_locks
		WHERE route = $1 AND slot_date = $2 AND time_slot_id = $3 AND seat_number = $4`

	err := r.db.Get(&lock, query, key.Route, key.Date, key.TimeSlotID, key.SeatNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seat lock: %w", err)
	}
	return &lock, nil
}

// Insert creates a lock row. A unique violation maps to
// ErrDuplicateSeatLock.
func (r *SeatLockRepository) Insert(lock *models.SeatLock) error {
	lock.ID = uuid.New().String()
	lock.CreatedAt = time.Now()

	query := `
		INSERT INTO seat_locks (
			id, route, slot_date, time_slot_id, seat_number,
			holder, holder_account_id, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		lock.ID, lock.Route, lock.Date, lock.TimeSlotID, lock.SeatNumber,
		lock.Holder, lock.HolderAccountID, lock.CreatedAt, lock.ExpiresAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateSeatLock
		}
		return fmt.Errorf("failed to insert seat lock: %w", err)
	}
	return nil
}

// ExtendExpiry pushes the expiry of the holder's lock at the key. Returns
// false when no matching lock exists.
func (r *SeatLockRepository) ExtendExpiry(key models.SeatLockKey, holder string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE seat_locks
		SET expires_at = $6
		WHERE route = $1 AND slot_date = $2 AND time_slot_id = $3 AND seat_number = $4
		  AND holder = $5`

	result, err := r.db.Exec(query, key.Route, key.Date, key.TimeSlotID, key.SeatNumber, holder, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to extend seat lock: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// DeleteByKey removes the lock at the key. When holder is non-empty only a
// lock owned by that holder is removed, so one session cannot release
// another's lock.
func (r *SeatLockRepository) DeleteByKey(key models.SeatLockKey, holder string) (int, error) {
	query := `
		DELETE FROM seat_locks
		WHERE route = $1 AND slot_date = $2 AND time_slot_id = $3 AND seat_number = $4`
	args := []interface{}{key.Route, key.Date, key.TimeSlotID, key.SeatNumber}

	if holder != "" {
		query += ` AND holder = $5`
		args = append(args, holder)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete seat lock: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// DeleteByHolder removes every lock owned by the holder across all keys.
func (r *SeatLockRepository) DeleteByHolder(holder string) (int, error) {
	result, err := r.db.Exec(`DELETE FROM seat_locks WHERE holder = $1`, holder)
	if err != nil {
		return 0, fmt.Errorf("failed to delete holder locks: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// ListByTimeSlot returns the unexpired locks for a departure, for the seat
// map UI.
func (r *SeatLockRepository) ListByTimeSlot(timeSlotID string, now time.Time) ([]models.SeatLock, error) {
	var locks []models.SeatLock
	query := `
		SELECT id, route, slot_date, time_slot_id, seat_number,
		       holder, holder_account_id, created_at, expires_at
		FROM seat_locks
		WHERE time_slot_id = $1 AND expires_at >= $2
		ORDER BY seat_number ASC`

	err := r.db.Select(&locks, query, timeSlotID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list seat locks: %w", err)
	}
	return locks, nil
}
