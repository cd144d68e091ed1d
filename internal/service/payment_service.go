package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService marks orders as paid. No payment provider is involved.
type PaymentService struct {
	store          store.Repository
	eventPublisher EventPublisher
	locks          *orderLocks
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service. locker may be nil, in
// which case concurrent payments for one order are not serialized.
func NewPaymentService(store store.Repository, eventPublisher EventPublisher, locker Locker, lockTTL time.Duration) *PaymentService {
	logger := util.GetLogger()
	return &PaymentService{
		store:          store,
		eventPublisher: eventPublisher,
		locks:          &orderLocks{locker: locker, ttl: lockTTL, logger: logger},
		logger:         logger,
	}
}

// Pay accepts amount for one of the user's orders when it does not exceed
// the order total, and sets the order status to paid. Paying an order that
// is already paid is accepted again.
func (ps *PaymentService) Pay(ctx context.Context, userID, orderID int64, amount decimal.Decimal) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.Pay")
	defer span.End()

	unlock, err := ps.locks.lock(ctx, orderID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	defer unlock()

	var order *models.Order
	var previousStatus string
	err = ps.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		order, err = tx.GetOrder(ctx, userID, orderID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		if order.TotalPrice.LessThan(amount) {
			return ErrAmountExceedsTotal
		}

		previousStatus = order.Status
		if err := tx.UpdateOrderStatus(ctx, orderID, models.OrderStatusPaid); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		order.Status = models.OrderStatusPaid
		return nil
	})
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	util.OrdersPaidTotal.Inc()
	if previousStatus == models.OrderStatusPaid {
		util.OrdersRepaidTotal.Inc()
		ps.logger.Warn("Payment accepted for an order that was already paid",
			zap.Int64("order_id", orderID),
			zap.Int64("user_id", userID))
	} else {
		ps.logger.Info("Order paid",
			zap.Int64("order_id", orderID),
			zap.Int64("user_id", userID),
			zap.String("amount", amount.String()))
	}

	event := &models.OrderPaidEvent{
		BaseEvent:      newBaseEvent(models.EventTypeOrderPaid),
		OrderID:        orderID,
		UserID:         userID,
		Amount:         amount,
		PreviousStatus: previousStatus,
	}
	if err := ps.eventPublisher.PublishOrderPaid(ctx, event); err != nil {
		ps.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return order, nil
}
