package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// ErrDuplicateOrderID signals that the optimistic insert lost the race for
// an order code; the allocator reacts by re-reading the suffix and retrying.
var ErrDuplicateOrderID = fmt.Errorf("order id already exists")

// OrderRepository handles order persistence
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert writes a new order row. A unique violation on the primary key is
// mapped to ErrDuplicateOrderID; nothing is committed for the failed
// attempt.
func (r *OrderRepository) Insert(order *models.Order) error {
	order.CreatedAt = time.Now()

	query := `
		INSERT INTO orders (
			id, origin_station, destination_station,
			sender_name, sender_phone, recipient_name, recipient_phone,
			item_type, quantity, amount, payment_status, delivery_status,
			created_by, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err := r.db.Exec(query,
		order.ID, order.OriginStation, order.DestinationStation,
		order.SenderName, order.SenderPhone, order.RecipientName, order.RecipientPhone,
		order.ItemType, order.Quantity, order.Amount, order.PaymentStatus, order.DeliveryStatus,
		order.CreatedBy, order.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateOrderID
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// MaxSuffixForPrefix returns the highest numeric suffix among order ids
// sharing the given prefix, or 0 when none exist. The suffix is whatever
// follows the fixed-length prefix.
func (r *OrderRepository) MaxSuffixForPrefix(prefix string) (int, error) {
	var maxSuffix sql.NullInt64
	query := `
		SELECT MAX(CAST(SUBSTRING(id FROM $1) AS INTEGER))
		FROM orders
		WHERE id LIKE $2`

	err := r.db.Get(&maxSuffix, query, len(prefix)+1, prefix+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to read max order suffix: %w", err)
	}
	if !maxSuffix.Valid {
		return 0, nil
	}
	return int(maxSuffix.Int64), nil
}

// GetByID retrieves an order, or nil when it does not exist.
func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	query := `
		SELECT id, origin_station, destination_station,
		       sender_name, sender_phone, recipient_name, recipient_phone,
		       item_type, quantity, amount, payment_status, delivery_status,
		       created_by, created_at, updated_by, updated_at
		FROM orders
		WHERE id = $1`

	err := r.db.Get(&order, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListByDate returns orders created on the given calendar date, newest
// first.
func (r *OrderRepository) ListByDate(date time.Time) ([]models.Order, error) {
	var orders []models.Order
	query := `
		SELECT id, origin_station, destination_station,
		       sender_name, sender_phone, recipient_name, recipient_phone,
		       item_type, quantity, amount, payment_status, delivery_status,
		       created_by, created_at, updated_by, updated_at
		FROM orders
		WHERE DATE(created_at) = $1
		ORDER BY created_at DESC`

	err := r.db.Select(&orders, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus updates the payment/delivery status pair and audit columns.
// Returns false when the order does not exist.
func (r *OrderRepository) UpdateStatus(id, paymentStatus, deliveryStatus, updatedBy string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $2,
		    delivery_status = $3,
		    updated_by = $4,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.Exec(query, id, paymentStatus, deliveryStatus, updatedBy)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
