package services

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tbexpress/freight-booking-backend/internal/config"
	"github.com/tbexpress/freight-booking-backend/internal/models"
	"github.com/tbexpress/freight-booking-backend/pkg/bookingapi"
)

// BookingResultStatus is the outcome class of a companion-booking attempt.
type BookingResultStatus string

const (
	// BookingCreated means the remote booking was accepted.
	BookingCreated BookingResultStatus = "created"
	// BookingSkipped means the order did not qualify for a companion
	// booking (resolved destination, or integration disabled).
	BookingSkipped BookingResultStatus = "skipped"
	// BookingFailed means a step failed; the order stays committed and the
	// reason surfaces as a warning only.
	BookingFailed BookingResultStatus = "failed"
)

// BookingResult is what TryCreateCompanionBooking hands back. Failed
// results carry a non-empty Reason and MUST be treated as non-fatal by the
// caller.
type BookingResult struct {
	Status  BookingResultStatus
	Booking *bookingapi.Booking
	Reason  string
}

// directionKeywords classify the order's origin text, first matching list
// wins. Both lists are matched diacritic-insensitively.
var directionKeywords = []struct {
	route    string
	keywords []string
}{
	{models.RouteSGTB, []string{"sài gòn", "sai gon", "bx miền đông", "miền đông", "bxmd", "quang trung", "sg"}},
	{models.RouteTBSG, []string{"trảng bom", "tbom", "hố nai", "chợ sặt", "bàu xéo", "trị an", "amata"}},
}

// CompanionBookingService is the cross-system saga: when an order's
// recipient rides "along the route", it books a seat for the parcel on the
// next departure via the bookings API. Every step may fail independently;
// no failure here may propagate as a failure of order creation, and nothing
// rolls the order back.
type CompanionBookingService struct {
	client  *bookingapi.Client
	builder *BookingPayloadBuilder
	cfg     config.RemoteBookingConfig
	seatCap int
	logger  *logrus.Logger
	now     func() time.Time
}

// NewCompanionBookingService creates a new CompanionBookingService
func NewCompanionBookingService(
	client *bookingapi.Client,
	builder *BookingPayloadBuilder,
	cfg config.RemoteBookingConfig,
	seatCapacity int,
	logger *logrus.Logger,
) *CompanionBookingService {
	return &CompanionBookingService{
		client:  client,
		builder: builder,
		cfg:     cfg,
		seatCap: seatCapacity,
		logger:  logger,
		now:     time.Now,
	}
}

// TryCreateCompanionBooking runs the saga for a freshly committed order.
// A single pass, no retries across steps: the result is Created, Skipped or
// Failed(reason).
func (s *CompanionBookingService) TryCreateCompanionBooking(order *models.Order) BookingResult {
	if !s.cfg.Enabled {
		return BookingResult{Status: BookingSkipped, Reason: "remote booking integration disabled"}
	}
	if order.IsDestinationResolved() {
		return BookingResult{Status: BookingSkipped, Reason: "destination already routed to a station"}
	}

	route := classifyDirection(order.OriginStation)
	now := s.now()

	// Today's slots plus tomorrow's, so a late-evening order still finds
	// the first departure of the next day.
	var routeSlots []models.TimeSlot
	for _, date := range []string{now.Format("2006-01-02"), now.AddDate(0, 0, 1).Format("2006-01-02")} {
		slots, err := s.client.ListTimeSlots(date, route, s.cfg.Timeout)
		if err != nil {
			return s.failed(order, "failed to fetch timeslots: "+err.Error())
		}
		for _, slot := range slots {
			routeSlots = append(routeSlots, models.TimeSlot{
				ID:        slot.ID,
				Route:     slot.Route,
				Date:      slot.Date,
				StartTime: slot.StartTime,
			})
		}
	}
	if len(routeSlots) == 0 {
		return s.failed(order, "no slot for route "+route)
	}

	nearest := NearestUpcoming(routeSlots, route, now)
	if nearest == nil {
		return s.failed(order, "no upcoming departure on route "+route)
	}

	occupancy, err := s.client.ListBookings(nearest.ID, s.cfg.Timeout)
	if err != nil {
		return s.failed(order, "failed to fetch occupancy: "+err.Error())
	}
	seat := s.pickSeat(occupancy)

	chosen := &bookingapi.TimeSlot{ID: nearest.ID, Route: nearest.Route, Date: nearest.Date, StartTime: nearest.StartTime}
	payload := s.builder.Build(order, chosen, seat)

	req := models.CreateBookingRequest{
		TimeSlotID:     payload.TimeSlotID,
		SeatNumber:     payload.SeatNumber,
		PassengerName:  payload.PassengerName,
		PassengerPhone: payload.PassengerPhone,
		Amount:         payload.Amount,
		Date:           payload.Date,
		StartTime:      payload.StartTime,
		Route:          payload.Route,
	}
	if err := req.Validate(); err != nil {
		return s.failed(order, "invalid booking payload: "+err.Error())
	}

	booking, err := s.client.CreateBooking(payload, s.cfg.Timeout)
	if err != nil {
		return s.failed(order, "booking submission failed: "+err.Error())
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"booking_id":   booking.ID,
		"time_slot_id": payload.TimeSlotID,
		"seat_number":  payload.SeatNumber,
		"route":        payload.Route,
	}).Info("Companion booking created")

	return BookingResult{Status: BookingCreated, Booking: booking}
}

// pickSeat returns the lowest seat number in [1..capacity] absent from the
// occupancy list. A full bus falls back to the last seat; the overwrite
// risk there is a known limitation of the low-contention deployment.
func (s *CompanionBookingService) pickSeat(occupancy []bookingapi.Booking) int {
	taken := make(map[int]bool, len(occupancy))
	for _, b := range occupancy {
		taken[b.SeatNumber] = true
	}
	for seat := 1; seat <= s.seatCap; seat++ {
		if !taken[seat] {
			return seat
		}
	}
	return s.seatCap
}

func (s *CompanionBookingService) failed(order *models.Order, reason string) BookingResult {
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"reason":   reason,
	}).Warn("Companion booking not created")
	return BookingResult{Status: BookingFailed, Reason: reason}
}

// classifyDirection tests the origin text against the curated keyword
// lists, first matching list wins; unmatched origins default to the
// outbound direction.
func classifyDirection(originText string) string {
	normOrigin := Normalize(originText)
	for _, entry := range directionKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(normOrigin, Normalize(keyword)) {
				return entry.route
			}
		}
	}
	return models.RouteSGTB
}
