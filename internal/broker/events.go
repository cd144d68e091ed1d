package broker

import (
	"context"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// EventPublisher publishes domain events. A publisher without a producer
// only logs the events it would have sent.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher creates a new event publisher; producer may be nil
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		logger:   util.GetLogger(),
	}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, eventType string, event interface{}) error {
	if ep.producer == nil {
		ep.logger.Debug("Event dropped, no broker configured",
			zap.String("key", key),
			zap.String("event_type", eventType))
		return nil
	}

	if err := ep.producer.PublishEvent(ctx, key, event); err != nil {
		return err
	}

	ep.logger.Debug("Published event",
		zap.String("key", key),
		zap.String("event_type", eventType))
	return nil
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishOrderPaid publishes OrderPaid event
func (ep *EventPublisher) PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishOrderCancelled publishes OrderCancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishCouponApplied publishes CouponApplied event, keyed by order
func (ep *EventPublisher) PublishCouponApplied(ctx context.Context, event *models.CouponAppliedEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishUserDeleted publishes UserDeleted event
func (ep *EventPublisher) PublishUserDeleted(ctx context.Context, event *models.UserDeletedEvent) error {
	return ep.publish(ctx, fmt.Sprintf("user-%d", event.UserID), event.EventType, event)
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}
