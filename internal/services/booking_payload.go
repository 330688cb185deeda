package services

import (
	"fmt"
	"strings"

	"github.com/tbexpress/freight-booking-backend/internal/models"
	"github.com/tbexpress/freight-booking-backend/pkg/bookingapi"
)

// DropoffAlongRoute is the label used when no station can be resolved from
// the order: the driver drops the parcel wherever the recipient flags the
// bus down.
const DropoffAlongRoute = "Dọc đường"

// BookingPayloadBuilder turns an order plus a chosen departure and seat
// into a booking payload for the remote API.
type BookingPayloadBuilder struct {
	resolver *StationResolver
}

// NewBookingPayloadBuilder creates a new BookingPayloadBuilder
func NewBookingPayloadBuilder(resolver *StationResolver) *BookingPayloadBuilder {
	return &BookingPayloadBuilder{resolver: resolver}
}

// Build composes the companion-booking payload. The drop-off point comes
// from resolving the recipient text, falling back to the order's
// destination field, then to the along-the-route label. The recipient text
// with the matched span stripped becomes the passenger display name.
// Freight is pre-paid at origin, so the amount is copied into both the
// amount and amount-paid fields.
func (b *BookingPayloadBuilder) Build(order *models.Order, slot *bookingapi.TimeSlot, seatNumber int) *bookingapi.CreateBookingPayload {
	dropoff := DropoffAlongRoute
	cleanName := strings.TrimSpace(order.RecipientName)

	if match := b.resolver.Resolve(order.RecipientName); match != nil {
		dropoff = match.Station.Name
		cleanName = b.resolver.StripMatch(order.RecipientName, match.MatchedSpan)
	} else if order.IsDestinationResolved() {
		dropoff = *order.DestinationStation
	}
	if cleanName == "" {
		cleanName = strings.TrimSpace(order.RecipientName)
	}

	return &bookingapi.CreateBookingPayload{
		TimeSlotID:     slot.ID,
		SeatNumber:     seatNumber,
		PassengerName:  cleanName,
		PassengerPhone: order.RecipientPhone,
		PickupPoint:    order.OriginStation,
		DropoffPoint:   dropoff,
		Note:           composeNote(cleanName, order.ItemType, order.Quantity),
		Amount:         order.Amount,
		AmountPaid:     order.Amount,
		Route:          slot.Route,
		Date:           slot.Date,
		StartTime:      slot.StartTime,
	}
}

// composeNote builds the driver-facing note: recipient, item type and
// count. Without a quantity the item-type's embedded type name (the part
// before the first dash) stands in and the count defaults to 1.
func composeNote(cleanName, itemType string, quantity *int) string {
	if quantity != nil {
		return fmt.Sprintf("%s - %s x%d", cleanName, itemType, *quantity)
	}
	return fmt.Sprintf("%s - %s x1", cleanName, itemTypeLabel(itemType))
}

// itemTypeLabel extracts the leading type name from a composite item type
// such as "Thùng - đồ điện tử".
func itemTypeLabel(itemType string) string {
	label := itemType
	if idx := strings.Index(itemType, "-"); idx >= 0 {
		label = itemType[:idx]
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return strings.TrimSpace(itemType)
	}
	return label
}
