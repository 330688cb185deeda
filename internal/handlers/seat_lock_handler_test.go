package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/services"
)

func newSeatLockRouterForTest(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	lockService := services.NewSeatLockService(database.NewSeatLockRepository(sqlxDB), 10*time.Minute, logger)
	handler := NewSeatLockHandler(lockService)

	router := gin.New()
	router.POST("/api/v1/seat-locks", handler.Acquire)
	router.DELETE("/api/v1/seat-locks/by-seat", handler.Release)
	return router, mock
}

func acquireBody() []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"route":        "SG-TB",
		"date":         "2026-08-29",
		"time_slot_id": "slot-1",
		"seat_number":  12,
		"holder":       "session-a",
	})
	return body
}

var lockColumns = []string{
	"id", "route", "slot_date", "time_slot_id", "seat_number",
	"holder", "holder_account_id", "created_at", "expires_at",
}

func TestAcquireSeatLock_Created(t *testing.T) {
	router, mock := newSeatLockRouterForTest(t)

	mock.ExpectExec(`DELETE FROM seat_locks WHERE expires_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns))
	mock.ExpectExec(`INSERT INTO seat_locks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seat-locks", bytes.NewReader(acquireBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "created", resp.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireSeatLock_Conflict(t *testing.T) {
	router, mock := newSeatLockRouterForTest(t)
	now := time.Now()

	mock.ExpectExec(`DELETE FROM seat_locks WHERE expires_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns).AddRow(
			"lock-1", "SG-TB", "2026-08-29", "slot-1", 12,
			"session-b", nil, now, now.Add(8*time.Minute),
		))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seat-locks", bytes.NewReader(acquireBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Holder string `json:"holder"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "session-b", resp.Holder)
}

func TestAcquireSeatLock_LostRaceConflict(t *testing.T) {
	router, mock := newSeatLockRouterForTest(t)
	now := time.Now()

	mock.ExpectExec(`DELETE FROM seat_locks WHERE expires_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns))
	mock.ExpectExec(`INSERT INTO seat_locks`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WillReturnRows(sqlmock.NewRows(lockColumns).AddRow(
			"lock-2", "SG-TB", "2026-08-29", "slot-1", 12,
			"session-b", nil, now, now.Add(10*time.Minute),
		))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seat-locks", bytes.NewReader(acquireBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAcquireSeatLock_InvalidRequest(t *testing.T) {
	router, _ := newSeatLockRouterForTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"route":        "HN-SG",
		"date":         "2026-08-29",
		"time_slot_id": "slot-1",
		"seat_number":  12,
		"holder":       "session-a",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seat-locks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReleaseSeatLock(t *testing.T) {
	router, mock := newSeatLockRouterForTest(t)

	mock.ExpectExec(`DELETE FROM seat_locks WHERE expires_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM seat_locks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body, _ := json.Marshal(map[string]interface{}{
		"route":        "SG-TB",
		"date":         "2026-08-29",
		"time_slot_id": "slot-1",
		"seat_number":  12,
		"holder":       "session-a",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/seat-locks/by-seat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Deleted int `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Deleted)
}
