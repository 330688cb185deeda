package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// RouteTemplates are the fixed daily operating windows, one ordered
// time-of-day list per direction. The template length is the expected slot
// count for any (date, route) pair.
var RouteTemplates = map[string][]string{
	models.RouteSGTB: {"05:30", "07:00", "09:30", "11:00", "13:30", "15:00", "17:30"},
	models.RouteTBSG: {"06:00", "08:30", "10:00", "12:30", "14:00", "16:30", "18:00"},
}

// TimeSlotService maintains the self-healing departure calendar: slots are
// created lazily the first time a (date, route) pair is queried with
// insufficient coverage, and never duplicated.
type TimeSlotService struct {
	slotRepo *database.TimeSlotRepository
	logger   *logrus.Logger
}

// NewTimeSlotService creates a new TimeSlotService
func NewTimeSlotService(slotRepo *database.TimeSlotRepository, logger *logrus.Logger) *TimeSlotService {
	return &TimeSlotService{slotRepo: slotRepo, logger: logger}
}

// EnsureSlots tops the (date, route) pair up to its template. Idempotent
// and safe under concurrent callers: duplicate inserts are absorbed by the
// (time, date, route) unique constraint.
func (s *TimeSlotService) EnsureSlots(date, route string) error {
	template, ok := RouteTemplates[route]
	if !ok {
		return fmt.Errorf("unknown route %q", route)
	}

	count, err := s.slotRepo.CountForDateRoute(date, route)
	if err != nil {
		return err
	}
	if count >= len(template) {
		return nil
	}

	created := 0
	for _, startTime := range template {
		slot := &models.TimeSlot{Route: route, Date: date, StartTime: startTime}
		inserted, err := s.slotRepo.InsertIfAbsent(slot)
		if err != nil {
			return err
		}
		if inserted {
			created++
		}
	}

	if created > 0 {
		s.logger.WithFields(logrus.Fields{
			"date":    date,
			"route":   route,
			"created": created,
		}).Info("Generated missing time slots")
	}
	return nil
}

// ListSlots ensures coverage for the pair and returns its slots.
func (s *TimeSlotService) ListSlots(date, route string) ([]models.TimeSlot, error) {
	if err := s.EnsureSlots(date, route); err != nil {
		return nil, err
	}
	return s.slotRepo.ListForDateRoute(date, route)
}

// GetSlot returns a slot by id, or nil.
func (s *TimeSlotService) GetSlot(id string) (*models.TimeSlot, error) {
	return s.slotRepo.GetByID(id)
}

// NearestUpcoming picks the next departure from a slot list: among the
// route's slots dated today (relative to now), the earliest strictly after
// the current minute-of-day; failing that, the earliest of tomorrow's slots
// regardless of time; failing that, nil. Pure given its inputs.
func NearestUpcoming(slots []models.TimeSlot, route string, now time.Time) *models.TimeSlot {
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	nowMinute := now.Hour()*60 + now.Minute()

	if slot := earliestAfter(slots, route, today, nowMinute); slot != nil {
		return slot
	}
	return earliestAfter(slots, route, tomorrow, -1)
}

// earliestAfter returns the slot on (date, route) with the smallest
// minute-of-day strictly greater than afterMinute, or nil.
func earliestAfter(slots []models.TimeSlot, route, date string, afterMinute int) *models.TimeSlot {
	var best *models.TimeSlot
	bestMinute := 0
	for i := range slots {
		if slots[i].Route != route || slots[i].Date != date {
			continue
		}
		minute := slots[i].MinuteOfDay()
		if minute <= afterMinute {
			continue
		}
		if best == nil || minute < bestMinute {
			best = &slots[i]
			bestMinute = minute
		}
	}
	return best
}
