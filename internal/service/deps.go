package service

import (
	"context"
	"fmt"
	"time"

	"shop-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher receives domain events after their transaction commits
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
	PublishCouponApplied(ctx context.Context, event *models.CouponAppliedEvent) error
	PublishUserDeleted(ctx context.Context, event *models.UserDeletedEvent) error
}

// CatalogCache is a JSON key/value cache for catalog reads
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Locker provides expiring mutual exclusion keyed by name
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// orderLocks serializes pay and coupon application per order when a Locker
// is configured. Without one, lock is a no-op.
type orderLocks struct {
	locker Locker
	ttl    time.Duration
	logger *zap.Logger
}

func (l *orderLocks) lock(ctx context.Context, orderID int64) (func(), error) {
	if l == nil || l.locker == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("order:%d", orderID)
	token, ok, err := l.locker.AcquireLock(ctx, key, l.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderBusy
	}

	return func() {
		if err := l.locker.ReleaseLock(context.Background(), key, token); err != nil {
			l.logger.Error("Failed to release order lock",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}, nil
}
