package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// AcquireOutcome distinguishes a fresh lock from an idempotent renewal.
type AcquireOutcome string

const (
	AcquireCreated AcquireOutcome = "created"
	AcquireRenewed AcquireOutcome = "renewed"
)

// SeatLockService provides short-lived mutual exclusion over
// (route, date, timeslot, seat) while a customer fills the booking form.
// Exclusivity comes from the store's unique constraint on the key tuple;
// the service only reacts to it. Every operation first sweeps expired rows,
// anywhere in the table, in place of a background reaper.
type SeatLockService struct {
	lockRepo *database.SeatLockRepository
	ttl      time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

// NewSeatLockService creates a new SeatLockService
func NewSeatLockService(lockRepo *database.SeatLockRepository, ttl time.Duration, logger *logrus.Logger) *SeatLockService {
	return &SeatLockService{
		lockRepo: lockRepo,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Acquire takes or renews the lock at the key. Same holder before expiry
// extends the lock (idempotent renewal). A different unexpired holder gets
// a SeatLockConflictError naming the winner and its expiry, an expected
// outcome rather than a fault.
func (s *SeatLockService) Acquire(req *models.AcquireSeatLockRequest) (*models.SeatLock, AcquireOutcome, error) {
	now := s.now()
	s.sweep(now)

	existing, err := s.lockRepo.GetByKey(req.SeatLockKey)
	if err != nil {
		return nil, "", err
	}
	if existing != nil && existing.ExpiresAt.After(now) {
		if existing.Holder == req.Holder {
			return s.renew(req, existing, now)
		}
		return nil, "", &models.SeatLockConflictError{Holder: existing.Holder, ExpiresAt: existing.ExpiresAt}
	}

	lock := &models.SeatLock{
		Route:           req.Route,
		Date:            req.Date,
		TimeSlotID:      req.TimeSlotID,
		SeatNumber:      req.SeatNumber,
		Holder:          req.Holder,
		HolderAccountID: req.HolderAccountID,
		ExpiresAt:       now.Add(s.ttl),
	}
	err = s.lockRepo.Insert(lock)
	if err == nil {
		s.logger.WithFields(logrus.Fields{
			"route":        lock.Route,
			"date":         lock.Date,
			"time_slot_id": lock.TimeSlotID,
			"seat_number":  lock.SeatNumber,
			"holder":       lock.Holder,
		}).Debug("Seat lock acquired")
		return lock, AcquireCreated, nil
	}
	if !errors.Is(err, database.ErrDuplicateSeatLock) {
		return nil, "", err
	}

	// Lost the insert race. Re-read to report the winner, or renew if the
	// winner turns out to be this same holder.
	winner, rerr := s.lockRepo.GetByKey(req.SeatLockKey)
	if rerr != nil {
		return nil, "", rerr
	}
	if winner == nil {
		// Raced with a release; the caller can simply try again.
		return nil, "", &models.SeatLockConflictError{Holder: "unknown", ExpiresAt: now}
	}
	if winner.Holder == req.Holder {
		return s.renew(req, winner, now)
	}
	return nil, "", &models.SeatLockConflictError{Holder: winner.Holder, ExpiresAt: winner.ExpiresAt}
}

func (s *SeatLockService) renew(req *models.AcquireSeatLockRequest, lock *models.SeatLock, now time.Time) (*models.SeatLock, AcquireOutcome, error) {
	expiresAt := now.Add(s.ttl)
	ok, err := s.lockRepo.ExtendExpiry(req.SeatLockKey, req.Holder, expiresAt)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		// The row vanished between read and update; treat as a fresh
		// acquisition on the next call.
		return nil, "", &models.SeatLockConflictError{Holder: lock.Holder, ExpiresAt: lock.ExpiresAt}
	}
	renewed := *lock
	renewed.ExpiresAt = expiresAt
	return &renewed, AcquireRenewed, nil
}

// Release deletes the lock at the key. When holder is non-empty only that
// holder's lock is deleted. Returns the number of rows removed.
func (s *SeatLockService) Release(req *models.ReleaseSeatLockRequest) (int, error) {
	s.sweep(s.now())
	return s.lockRepo.DeleteByKey(req.SeatLockKey, req.Holder)
}

// ReleaseAll deletes every lock owned by the holder, for logout and
// tab-close cleanup.
func (s *SeatLockService) ReleaseAll(holder string) (int, error) {
	s.sweep(s.now())
	deleted, err := s.lockRepo.DeleteByHolder(holder)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.WithFields(logrus.Fields{
			"holder":  holder,
			"deleted": deleted,
		}).Debug("Released all seat locks for holder")
	}
	return deleted, nil
}

// ListForTimeSlot returns the unexpired locks on a departure.
func (s *SeatLockService) ListForTimeSlot(timeSlotID string) ([]models.SeatLock, error) {
	now := s.now()
	s.sweep(now)
	return s.lockRepo.ListByTimeSlot(timeSlotID, now)
}

func (s *SeatLockService) sweep(now time.Time) {
	if _, err := s.lockRepo.DeleteExpired(now); err != nil {
		// The sweep is opportunistic; a failure here must not block the
		// operation that triggered it.
		s.logger.WithError(err).Warn("Expired seat lock sweep failed")
	}
}
