package models

import (
	"fmt"
	"strings"
	"time"
)

// SeatLock is a short-lived advisory reservation over one seat of one
// departure. At most one unexpired lock may exist per
// (route, slot_date, time_slot_id, seat_number); the table's unique
// constraint over that tuple is the arbiter.
type SeatLock struct {
	ID              string    `db:"id" json:"id"`
	Route           string    `db:"route" json:"route"`
	Date            string    `db:"slot_date" json:"date"` // YYYY-MM-DD
	TimeSlotID      string    `db:"time_slot_id" json:"time_slot_id"`
	SeatNumber      int       `db:"seat_number" json:"seat_number"`
	Holder          string    `db:"holder" json:"holder"`
	HolderAccountID *string   `db:"holder_account_id" json:"holder_account_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	ExpiresAt       time.Time `db:"expires_at" json:"expires_at"`
}

// SeatLockKey identifies one lockable seat.
type SeatLockKey struct {
	Route      string `json:"route"`
	Date       string `json:"date"`
	TimeSlotID string `json:"time_slot_id"`
	SeatNumber int    `json:"seat_number"`
}

// Validate checks the key fields shared by acquire and release requests.
func (k *SeatLockKey) Validate() error {
	if !IsValidRoute(k.Route) {
		return fmt.Errorf("route must be %s or %s", RouteSGTB, RouteTBSG)
	}
	if _, err := time.Parse("2006-01-02", k.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if strings.TrimSpace(k.TimeSlotID) == "" {
		return fmt.Errorf("time_slot_id is required")
	}
	if k.SeatNumber < 1 {
		return fmt.Errorf("seat_number must be positive")
	}
	return nil
}

// AcquireSeatLockRequest is the POST /seat-locks body.
type AcquireSeatLockRequest struct {
	SeatLockKey
	Holder          string  `json:"holder"`
	HolderAccountID *string `json:"holder_account_id,omitempty"`
}

// Validate checks required fields.
func (r *AcquireSeatLockRequest) Validate() error {
	if err := r.SeatLockKey.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Holder) == "" {
		return fmt.Errorf("holder is required")
	}
	return nil
}

// ReleaseSeatLockRequest is the DELETE /seat-locks/by-seat body. Holder is
// optional; when present only a matching lock is deleted.
type ReleaseSeatLockRequest struct {
	SeatLockKey
	Holder string `json:"holder,omitempty"`
}

// SeatLockConflictError reports that another session holds the seat. It is
// an expected business outcome, surfaced as 409, never logged as fatal.
type SeatLockConflictError struct {
	Holder    string    `json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e *SeatLockConflictError) Error() string {
	return fmt.Sprintf("seat locked by %s until %s", e.Holder, e.ExpiresAt.Format(time.RFC3339))
}
