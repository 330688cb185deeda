package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

func newOrderRepoForTest(t *testing.T) (*OrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewOrderRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestInsertOrder(t *testing.T) {
	repo, mock := newOrderRepoForTest(t)

	order := &models.Order{
		ID:             "260829.011",
		OriginStation:  "Bến xe Miền Đông",
		SenderName:     "Anh Tư",
		RecipientName:  "Chị Lan",
		RecipientPhone: "0987654321",
		ItemType:       "Thùng",
		Amount:         50000,
		PaymentStatus:  models.PaymentStatusPaid,
		DeliveryStatus: models.DeliveryStatusReceived,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Insert(order)
		require.NoError(t, err)
		assert.False(t, order.CreatedAt.IsZero())
	})

	t.Run("Duplicate ID maps to sentinel", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Insert(order)
		assert.ErrorIs(t, err, ErrDuplicateOrderID)
	})

	t.Run("Other database error passes through", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnError(fmt.Errorf("connection reset"))

		err := repo.Insert(order)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateOrderID)
		assert.Contains(t, err.Error(), "failed to insert order")
	})
}

func TestMaxSuffixForPrefix(t *testing.T) {
	repo, mock := newOrderRepoForTest(t)

	t.Run("Existing orders", func(t *testing.T) {
		mock.ExpectQuery(`SELECT MAX`).
			WithArgs(10, "260829.01%").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(12))

		suffix, err := repo.MaxSuffixForPrefix("260829.01")
		require.NoError(t, err)
		assert.Equal(t, 12, suffix)
	})

	t.Run("Empty day yields zero", func(t *testing.T) {
		mock.ExpectQuery(`SELECT MAX`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		suffix, err := repo.MaxSuffixForPrefix("260829.01")
		require.NoError(t, err)
		assert.Equal(t, 0, suffix)
	})
}

func TestGetOrderByID(t *testing.T) {
	repo, mock := newOrderRepoForTest(t)

	columns := []string{
		"id", "origin_station", "destination_station",
		"sender_name", "sender_phone", "recipient_name", "recipient_phone",
		"item_type", "quantity", "amount", "payment_status", "delivery_status",
		"created_by", "created_at", "updated_by", "updated_at",
	}

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM orders`).
			WithArgs("260829.011").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				"260829.011", "Bến xe Miền Đông", "along_route",
				"Anh Tư", "0912345678", "Chị Lan", "0987654321",
				"Thùng", nil, 50000.0, "paid", "received",
				"counter-1", time.Now(), nil, nil,
			))

		order, err := repo.GetByID("260829.011")
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, "260829.011", order.ID)
		assert.Equal(t, "Chị Lan", order.RecipientName)
	})

	t.Run("Not found returns nil", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM orders`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(columns))

		order, err := repo.GetByID("missing")
		require.NoError(t, err)
		assert.Nil(t, order)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	repo, mock := newOrderRepoForTest(t)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders`).
			WithArgs("260829.011", "paid", "delivered", "counter-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		found, err := repo.UpdateStatus("260829.011", "paid", "delivered", "counter-1")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("Missing order", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		found, err := repo.UpdateStatus("missing", "paid", "delivered", "counter-1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
