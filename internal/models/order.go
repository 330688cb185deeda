package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/tbexpress/freight-booking-backend/pkg/validator"
)

// Payment status values for an order.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// Delivery status values for an order.
const (
	DeliveryStatusReceived  = "received"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusReturned  = "returned"
)

// DestinationAlongRoute marks an order whose recipient is dropped somewhere
// along the route instead of at a canonical station.
const DestinationAlongRoute = "along_route"

// Order is a goods-intake record. The ID is the allocator's human-readable
// code (YYMMDD. + station code + sequence), not a surrogate key.
type Order struct {
	ID                 string     `db:"id" json:"id"`
	OriginStation      string     `db:"origin_station" json:"origin_station"`
	DestinationStation *string    `db:"destination_station" json:"destination_station,omitempty"`
	SenderName         string     `db:"sender_name" json:"sender_name"`
	SenderPhone        string     `db:"sender_phone" json:"sender_phone"`
	RecipientName      string     `db:"recipient_name" json:"recipient_name"`
	RecipientPhone     string     `db:"recipient_phone" json:"recipient_phone"`
	ItemType           string     `db:"item_type" json:"item_type"`
	Quantity           *int       `db:"quantity" json:"quantity,omitempty"`
	Amount             float64    `db:"amount" json:"amount"`
	PaymentStatus      string     `db:"payment_status" json:"payment_status"`
	DeliveryStatus     string     `db:"delivery_status" json:"delivery_status"`
	CreatedBy          string     `db:"created_by" json:"created_by"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedBy          *string    `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt          *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// IsDestinationResolved reports whether the order is routed to a canonical
// station rather than "along the route".
func (o *Order) IsDestinationResolved() bool {
	return o.DestinationStation != nil && *o.DestinationStation != "" && *o.DestinationStation != DestinationAlongRoute
}

// OrderChangeLog is one audit row for an order mutation.
type OrderChangeLog struct {
	ID        string    `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Action    string    `db:"action" json:"action"`
	Detail    string    `db:"detail" json:"detail"`
	ChangedBy string    `db:"changed_by" json:"changed_by"`
	ChangedAt time.Time `db:"changed_at" json:"changed_at"`
}

// CreateOrderRequest is the POST /orders body.
type CreateOrderRequest struct {
	OriginStationCode int     `json:"origin_station_code"`
	SenderName        string  `json:"sender_name"`
	SenderPhone       string  `json:"sender_phone"`
	RecipientName     string  `json:"recipient_name"`
	RecipientPhone    string  `json:"recipient_phone"`
	ItemType          string  `json:"item_type"`
	Quantity          *int    `json:"quantity,omitempty"`
	Amount            float64 `json:"amount"`
	PaymentStatus     string  `json:"payment_status,omitempty"`
	CreatedBy         string  `json:"created_by"`
}

// Validate checks required fields before any allocation work is done.
func (r *CreateOrderRequest) Validate() error {
	if StationByCode(r.OriginStationCode) == nil {
		return fmt.Errorf("origin_station_code %d is not a known station", r.OriginStationCode)
	}
	if strings.TrimSpace(r.SenderName) == "" {
		return fmt.Errorf("sender_name is required")
	}
	if strings.TrimSpace(r.RecipientName) == "" {
		return fmt.Errorf("recipient_name is required")
	}
	phoneValidator := validator.NewPhoneValidator()
	sanitized, err := phoneValidator.Validate(r.RecipientPhone)
	if err != nil {
		return fmt.Errorf("recipient_phone: %w", err)
	}
	r.RecipientPhone = sanitized
	// Sender phone is optional and may be a landline; sanitize only when it
	// parses as a mobile number.
	if s, err := phoneValidator.Validate(r.SenderPhone); err == nil {
		r.SenderPhone = s
	}
	if strings.TrimSpace(r.ItemType) == "" {
		return fmt.Errorf("item_type is required")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if r.Quantity != nil && *r.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than zero when present")
	}
	return nil
}

// CompanionBookingRef points at the seat the saga reserved for the order.
type CompanionBookingRef struct {
	ID         string `json:"id"`
	TimeSlotID string `json:"time_slot_id"`
	SeatNumber int    `json:"seat_number"`
}

// CreateOrderResponse is the POST /orders reply. Warning carries the
// companion-booking failure reason when the saga did not complete; the order
// itself is committed either way.
type CreateOrderResponse struct {
	Order   *Order               `json:"order"`
	Booking *CompanionBookingRef `json:"companion_booking,omitempty"`
	Warning string               `json:"warning,omitempty"`
}
