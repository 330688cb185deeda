package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbexpress/freight-booking-backend/internal/config"
	"github.com/tbexpress/freight-booking-backend/internal/models"
	"github.com/tbexpress/freight-booking-backend/pkg/bookingapi"
)

func newCompanionServiceForTest(t *testing.T, baseURL string, enabled bool) *CompanionBookingService {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := NewCompanionBookingService(
		bookingapi.NewClient(baseURL),
		NewBookingPayloadBuilder(NewStationResolver()),
		config.RemoteBookingConfig{
			BaseURL: baseURL,
			Enabled: enabled,
			Timeout: 2 * time.Second,
		},
		28,
		logger,
	)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	}
	return svc
}

func alongRouteOrder() *models.Order {
	alongRoute := models.DestinationAlongRoute
	return &models.Order{
		ID:                 "260829.013",
		OriginStation:      "Bến xe Miền Đông",
		DestinationStation: &alongRoute,
		RecipientName:      "Nguyễn Văn An",
		RecipientPhone:     "0912345678",
		ItemType:           "Thùng",
		Amount:             50000,
	}
}

func TestTryCreateCompanionBooking_Skipped(t *testing.T) {
	t.Run("Integration disabled", func(t *testing.T) {
		svc := newCompanionServiceForTest(t, "http://127.0.0.1:1", false)

		result := svc.TryCreateCompanionBooking(alongRouteOrder())
		assert.Equal(t, BookingSkipped, result.Status)
	})

	t.Run("Destination already resolved", func(t *testing.T) {
		svc := newCompanionServiceForTest(t, "http://127.0.0.1:1", true)

		destination := "Chợ Sặt"
		order := alongRouteOrder()
		order.DestinationStation = &destination

		result := svc.TryCreateCompanionBooking(order)
		assert.Equal(t, BookingSkipped, result.Status)
	})
}

func TestTryCreateCompanionBooking_Created(t *testing.T) {
	var submitted bookingapi.CreateBookingPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/timeslots":
			assert.Equal(t, models.RouteSGTB, r.URL.Query().Get("route"))
			date := r.URL.Query().Get("date")
			var slots []bookingapi.TimeSlot
			if date == "2026-08-29" {
				slots = []bookingapi.TimeSlot{
					{ID: "slot-early", Route: models.RouteSGTB, Date: date, StartTime: "07:00"},
					{ID: "slot-next", Route: models.RouteSGTB, Date: date, StartTime: "09:30"},
					{ID: "slot-late", Route: models.RouteSGTB, Date: date, StartTime: "13:30"},
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"time_slots": slots})

		case r.URL.Path == "/api/v1/bookings" && r.Method == http.MethodGet:
			assert.Equal(t, "slot-next", r.URL.Query().Get("time_slot_id"))
			json.NewEncoder(w).Encode(map[string]interface{}{"bookings": []bookingapi.Booking{
				{ID: "b1", TimeSlotID: "slot-next", SeatNumber: 1},
				{ID: "b2", TimeSlotID: "slot-next", SeatNumber: 2},
			}})

		case r.URL.Path == "/api/v1/bookings" && r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(bookingapi.Booking{
				ID:         "booking-1",
				TimeSlotID: submitted.TimeSlotID,
				SeatNumber: submitted.SeatNumber,
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := newCompanionServiceForTest(t, server.URL, true)

	result := svc.TryCreateCompanionBooking(alongRouteOrder())
	require.Equal(t, BookingCreated, result.Status)
	require.NotNil(t, result.Booking)
	assert.Equal(t, "booking-1", result.Booking.ID)

	// Nearest upcoming departure after 08:00, lowest free seat.
	assert.Equal(t, "slot-next", submitted.TimeSlotID)
	assert.Equal(t, 3, submitted.SeatNumber)
	assert.Equal(t, "Nguyễn Văn An", submitted.PassengerName)
	assert.Equal(t, DropoffAlongRoute, submitted.DropoffPoint)
	assert.Equal(t, 50000.0, submitted.AmountPaid)
}

func TestTryCreateCompanionBooking_RemoteFailureIsContained(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newCompanionServiceForTest(t, server.URL, true)

	result := svc.TryCreateCompanionBooking(alongRouteOrder())
	assert.Equal(t, BookingFailed, result.Status)
	assert.NotEmpty(t, result.Reason)
	assert.Nil(t, result.Booking)
}

func TestTryCreateCompanionBooking_EmptyCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"time_slots": []bookingapi.TimeSlot{}})
	}))
	defer server.Close()

	svc := newCompanionServiceForTest(t, server.URL, true)

	result := svc.TryCreateCompanionBooking(alongRouteOrder())
	assert.Equal(t, BookingFailed, result.Status)
	assert.Contains(t, result.Reason, "no slot")
}

func TestTryCreateCompanionBooking_UnreachableRemote(t *testing.T) {
	svc := newCompanionServiceForTest(t, "http://127.0.0.1:1", true)

	result := svc.TryCreateCompanionBooking(alongRouteOrder())
	assert.Equal(t, BookingFailed, result.Status)
	assert.NotEmpty(t, result.Reason)
}
