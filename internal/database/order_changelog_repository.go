package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// OrderChangeLogRepository handles order audit rows
type OrderChangeLogRepository struct {
	db *sqlx.DB
}

// NewOrderChangeLogRepository creates a new OrderChangeLogRepository
func NewOrderChangeLogRepository(db *sqlx.DB) *OrderChangeLogRepository {
	return &OrderChangeLogRepository{db: db}
}

// Insert appends one audit row for an order mutation.
func (r *OrderChangeLogRepository) Insert(entry *models.OrderChangeLog) error {
	entry.ID = uuid.New().String()
	entry.ChangedAt = time.Now()

	query := `
		INSERT INTO order_change_logs (id, order_id, action, detail, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		entry.ID, entry.OrderID, entry.Action, entry.Detail, entry.ChangedBy, entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert change log: %w", err)
	}
	return nil
}

// ListByOrder returns the audit trail for an order, oldest first.
func (r *OrderChangeLogRepository) ListByOrder(orderID string) ([]models.OrderChangeLog, error) {
	var entries []models.OrderChangeLog
	query := `
		SELECT id, order_id, action, detail, changed_by, changed_at
		FROM order_change_logs
		WHERE order_id = $1
		ORDER BY changed_at ASC`

	err := r.db.Select(&entries, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list change logs: %w", err)
	}
	return entries, nil
}
