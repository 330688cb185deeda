package services

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

var lockColumns = []string{
	"id", "route", "slot_date", "time_slot_id", "seat_number",
	"holder", "holder_account_id", "created_at", "expires_at",
}

func newSeatLockServiceForTest(t *testing.T, now time.Time) (*SeatLockService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := NewSeatLockService(database.NewSeatLockRepository(sqlxDB), 10*time.Minute, logger)
	svc.now = func() time.Time { return now }
	return svc, mock
}

func acquireRequest() *models.AcquireSeatLockRequest {
	return &models.AcquireSeatLockRequest{
		SeatLockKey: models.SeatLockKey{
			Route:      models.RouteSGTB,
			Date:       "2026-08-29",
			TimeSlotID: "slot-1",
			SeatNumber: 12,
		},
		Holder: "session-a",
	}
}

func expectSweep(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`DELETE FROM seat_locks WHERE expires_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestAcquire_FreshLock(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)

	expectSweep(mock)
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns))
	mock.ExpectExec(`INSERT INTO seat_locks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	lock, outcome, err := svc.Acquire(acquireRequest())
	require.NoError(t, err)
	assert.Equal(t, AcquireCreated, outcome)
	assert.Equal(t, "session-a", lock.Holder)
	assert.Equal(t, now.Add(10*time.Minute), lock.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_SameHolderRenews(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)

	expectSweep(mock)
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns).AddRow(
			"lock-1", models.RouteSGTB, "2026-08-29", "slot-1", 12,
			"session-a", nil, now.Add(-time.Minute), now.Add(5*time.Minute),
		))
	mock.ExpectExec(`UPDATE seat_locks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	lock, outcome, err := svc.Acquire(acquireRequest())
	require.NoError(t, err)
	assert.Equal(t, AcquireRenewed, outcome)
	assert.Equal(t, now.Add(10*time.Minute), lock.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_ConflictNamesTheWinner(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)
	winnerExpiry := now.Add(7 * time.Minute)

	expectSweep(mock)
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns).AddRow(
			"lock-1", models.RouteSGTB, "2026-08-29", "slot-1", 12,
			"session-b", nil, now.Add(-time.Minute), winnerExpiry,
		))

	_, _, err := svc.Acquire(acquireRequest())
	require.Error(t, err)

	var conflict *models.SeatLockConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "session-b", conflict.Holder)
	assert.Equal(t, winnerExpiry, conflict.ExpiresAt)
}

func TestAcquire_ExpiredLockIsTakenOver(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)

	expectSweep(mock)
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns).AddRow(
			"lock-1", models.RouteSGTB, "2026-08-29", "slot-1", 12,
			"session-b", nil, now.Add(-20*time.Minute), now.Add(-10*time.Minute),
		))
	mock.ExpectExec(`INSERT INTO seat_locks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	lock, outcome, err := svc.Acquire(acquireRequest())
	require.NoError(t, err)
	assert.Equal(t, AcquireCreated, outcome)
	assert.Equal(t, "session-a", lock.Holder)
}

func TestAcquire_LostInsertRaceReportsWinner(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)

	expectSweep(mock)
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns))
	mock.ExpectExec(`INSERT INTO seat_locks`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns).AddRow(
			"lock-2", models.RouteSGTB, "2026-08-29", "slot-1", 12,
			"session-b", nil, now, now.Add(10*time.Minute),
		))

	_, _, err := svc.Acquire(acquireRequest())
	require.Error(t, err)

	var conflict *models.SeatLockConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "session-b", conflict.Holder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_ScopedToHolder(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)

	expectSweep(mock)
	mock.ExpectExec(`DELETE FROM seat_locks`).
		WithArgs(models.RouteSGTB, "2026-08-29", "slot-1", 12, "session-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := svc.Release(&models.ReleaseSeatLockRequest{
		SeatLockKey: models.SeatLockKey{
			Route:      models.RouteSGTB,
			Date:       "2026-08-29",
			TimeSlotID: "slot-1",
			SeatNumber: 12,
		},
		Holder: "session-a",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseAll(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)

	expectSweep(mock)
	mock.ExpectExec(`DELETE FROM seat_locks WHERE holder`).
		WithArgs("session-a").
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := svc.ReleaseAll("session-a")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
}

func TestAcquire_SweepFailureDoesNotBlock(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, mock := newSeatLockServiceForTest(t, now)

	mock.ExpectExec(`DELETE FROM seat_locks WHERE expires_at`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns))
	mock.ExpectExec(`INSERT INTO seat_locks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, outcome, err := svc.Acquire(acquireRequest())
	require.NoError(t, err)
	assert.Equal(t, AcquireCreated, outcome)
}
