package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tbexpress/freight-booking-backend/internal/database"
	"github.com/tbexpress/freight-booking-backend/internal/models"
)

// ErrAllocationExhausted is returned when the allocator loses the insert
// race more times than maxAllocateAttempts allows.
var ErrAllocationExhausted = errors.New("order id allocation exhausted after retries")

const (
	maxAllocateAttempts = 5
	backoffMinMillis    = 50
	backoffMaxMillis    = 150
)

// OrderIDAllocator produces collision-resistant, human-readable order codes
// under concurrent writers. No lock is taken: the primary-key constraint is
// the arbiter and the retry loop is the client-side reaction to contention.
type OrderIDAllocator struct {
	orderRepo *database.OrderRepository
	logger    *logrus.Logger
}

// NewOrderIDAllocator creates a new OrderIDAllocator
func NewOrderIDAllocator(orderRepo *database.OrderRepository, logger *logrus.Logger) *OrderIDAllocator {
	return &OrderIDAllocator{orderRepo: orderRepo, logger: logger}
}

// OrderIDPrefix builds the shared prefix for a station and day:
// YYMMDD. followed by the 2-digit-padded station code.
func OrderIDPrefix(stationCode int, today time.Time) string {
	return fmt.Sprintf("%s.%02d", today.Format("060102"), stationCode)
}

// Allocate inserts the order under the next free code for its station/day
// prefix. On a duplicate-key rejection it waits a randomized 50-150 ms,
// re-reads the maximum suffix and retries, up to 5 attempts. The failed
// attempts leave no trace; only the winning insert commits.
func (a *OrderIDAllocator) Allocate(order *models.Order, stationCode int, today time.Time) error {
	prefix := OrderIDPrefix(stationCode, today)

	for attempt := 1; attempt <= maxAllocateAttempts; attempt++ {
		maxSuffix, err := a.orderRepo.MaxSuffixForPrefix(prefix)
		if err != nil {
			return err
		}

		order.ID = fmt.Sprintf("%s%d", prefix, maxSuffix+1)

		err = a.orderRepo.Insert(order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrDuplicateOrderID) {
			return err
		}

		a.logger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"attempt":  attempt,
		}).Info("Order id taken by concurrent writer, retrying")

		if attempt < maxAllocateAttempts {
			time.Sleep(allocateBackoff())
		}
	}

	a.logger.WithField("prefix", prefix).Error("Order id allocation exhausted")
	return ErrAllocationExhausted
}

func allocateBackoff() time.Duration {
	millis := backoffMinMillis + rand.Intn(backoffMaxMillis-backoffMinMillis+1)
	return time.Duration(millis) * time.Millisecond
}
