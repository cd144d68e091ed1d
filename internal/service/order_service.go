package service

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService turns carts into orders and manages their lifecycle
type OrderService struct {
	store          store.Repository
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store store.Repository, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// OrderDetail is an order together with the product it references
type OrderDetail struct {
	Order   *models.Order   `json:"order"`
	Product *models.Product `json:"product"`
}

// Dashboard is the user's cart and orders, read independently
type Dashboard struct {
	Cart   []models.CartItem `json:"cart"`
	Orders []models.Order    `json:"orders"`
}

// CreateOrder creates a pending order from the user's whole cart.
// The total covers every cart line but the order records the product and
// quantity of the first line only. The cart is left untouched.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	var order *models.Order
	var lines int
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		items, err := tx.GetCartItems(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to read cart: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		total, err := s.calculateTotal(ctx, tx, items)
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID:     userID,
			ProductID:  items[0].ProductID,
			Quantity:   items[0].Quantity,
			TotalPrice: total,
			Status:     models.OrderStatusPending,
		}
		lines = len(items)
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("total_price", order.TotalPrice.String()),
		zap.Int("cart_lines", lines))

	event := &models.OrderCreatedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeOrderCreated),
		OrderID:    order.ID,
		UserID:     userID,
		ProductID:  order.ProductID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice,
		CartLines:  lines,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// calculateTotal sums quantity * unit price over every cart line
func (s *OrderService) calculateTotal(ctx context.Context, tx store.Repository, items []models.CartItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		product, err := tx.GetProductByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("cart item %d: %w", item.ID, ErrProductNotFound)
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to get product: %w", err)
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// ListOrders returns all orders owned by the user
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.store.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetDetail returns one of the user's orders with its product
func (s *OrderService) GetDetail(ctx context.Context, userID, orderID int64) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetDetail")
	defer span.End()

	order, err := s.store.GetOrder(ctx, userID, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	product, err := s.store.GetProductByID(ctx, order.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &OrderDetail{Order: order, Product: product}, nil
}

// Cancel deletes one of the user's pending orders. Missing, foreign and
// already paid orders all report ErrOrderNotFound.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Cancel")
	defer span.End()

	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		_, err := tx.GetOrderWithStatus(ctx, userID, orderID, models.OrderStatusPending)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		return tx.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return err
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled", zap.Int64("order_id", orderID), zap.Int64("user_id", userID))

	event := &models.OrderCancelledEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderCancelled),
		OrderID:   orderID,
		UserID:    userID,
	}
	if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}
	return nil
}

// Dashboard returns the user's cart lines and orders
func (s *OrderService) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Dashboard")
	defer span.End()

	cart, err := s.store.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	orders, err := s.store.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &Dashboard{Cart: cart, Orders: orders}, nil
}

// failureReason is the metric label for a rejected order operation
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrAmountExceedsTotal):
		return "amount_exceeds_total"
	case errors.Is(err, ErrOrderBusy):
		return "order_busy"
	default:
		return "internal"
	}
}
