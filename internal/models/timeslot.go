package models

import "time"

// Route identifiers for the two directions of the corridor.
const (
	RouteSGTB = "SG-TB" // Sài Gòn -> Trảng Bom
	RouteTBSG = "TB-SG" // Trảng Bom -> Sài Gòn
)

// IsValidRoute reports whether route names one of the two directions.
func IsValidRoute(route string) bool {
	return route == RouteSGTB || route == RouteTBSG
}

// TimeSlot is one scheduled departure of a route on a date.
// (start_time, slot_date, route) is unique; slots are generated lazily and
// never duplicated or mutated.
type TimeSlot struct {
	ID           string    `db:"id" json:"id"`
	Route        string    `db:"route" json:"route"`
	Date         string    `db:"slot_date" json:"date"`       // YYYY-MM-DD
	StartTime    string    `db:"start_time" json:"start_time"` // HH:MM
	VehiclePlate *string   `db:"vehicle_plate" json:"vehicle_plate,omitempty"`
	DriverName   *string   `db:"driver_name" json:"driver_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// MinuteOfDay converts the slot's start time to minutes since midnight.
// Malformed times sort first (-1).
func (s *TimeSlot) MinuteOfDay() int {
	t, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}
