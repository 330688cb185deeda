// Package bookingapi is the HTTP client for the bookings API consumed by
// the companion-booking flow. The API may be served by the same process or
// by a remote deployment; the client does not care.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	// ErrorKindTimeout means the per-call deadline elapsed.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindTransport means the request never produced a response.
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindStatus means the server answered with a non-success status.
	ErrorKindStatus ErrorKind = "status"
)

// APIError is the single error type for every failed call, distinguishing
// timeout from transport failure from non-success status.
type APIError struct {
	Kind   ErrorKind
	Status int // HTTP status, set for ErrorKindStatus
	Op     string
	Err    error
	Body   string
}

func (e *APIError) Error() string {
	switch e.Kind {
	case ErrorKindTimeout:
		return fmt.Sprintf("%s: deadline exceeded", e.Op)
	case ErrorKindStatus:
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// TimeSlot mirrors the bookings API wire shape for a departure.
type TimeSlot struct {
	ID        string `json:"id"`
	Route     string `json:"route"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

// Booking mirrors the bookings API wire shape for a reservation.
type Booking struct {
	ID         string `json:"id"`
	TimeSlotID string `json:"time_slot_id"`
	SeatNumber int    `json:"seat_number"`
}

// CreateBookingPayload is the body for booking creation.
type CreateBookingPayload struct {
	TimeSlotID     string  `json:"time_slot_id"`
	SeatNumber     int     `json:"seat_number"`
	PassengerName  string  `json:"passenger_name"`
	PassengerPhone string  `json:"passenger_phone"`
	PickupPoint    string  `json:"pickup_point,omitempty"`
	DropoffPoint   string  `json:"dropoff_point,omitempty"`
	Note           string  `json:"note,omitempty"`
	Amount         float64 `json:"amount"`
	AmountPaid     float64 `json:"amount_paid"`
	Route          string  `json:"route"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
}

// Client talks to the bookings API. Every call takes an explicit deadline.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// ListTimeSlots fetches the departures of one (date, route) pair.
func (c *Client) ListTimeSlots(date, route string, timeout time.Duration) ([]TimeSlot, error) {
	path := "/api/v1/timeslots?date=" + url.QueryEscape(date) + "&route=" + url.QueryEscape(route)
	var wrapper struct {
		TimeSlots []TimeSlot `json:"time_slots"`
	}
	if err := c.do("list timeslots", http.MethodGet, path, nil, timeout, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.TimeSlots, nil
}

// ListBookings fetches the bookings of one departure.
func (c *Client) ListBookings(timeSlotID string, timeout time.Duration) ([]Booking, error) {
	path := "/api/v1/bookings?time_slot_id=" + url.QueryEscape(timeSlotID)
	var wrapper struct {
		Bookings []Booking `json:"bookings"`
	}
	if err := c.do("list bookings", http.MethodGet, path, nil, timeout, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Bookings, nil
}

// CreateBooking submits a reservation.
func (c *Client) CreateBooking(payload *CreateBookingPayload, timeout time.Duration) (*Booking, error) {
	var booking Booking
	if err := c.do("create booking", http.MethodPost, "/api/v1/bookings", payload, timeout, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) do(op, method, path string, body interface{}, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: ErrorKindTransport, Op: op, Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Kind: ErrorKindTransport, Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &APIError{Kind: ErrorKindTimeout, Op: op, Err: err}
		}
		return &APIError{Kind: ErrorKindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: ErrorKindTransport, Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Kind: ErrorKindStatus, Op: op, Status: resp.StatusCode, Body: string(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Kind: ErrorKindTransport, Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
