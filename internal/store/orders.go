package store

import (
	"context"
	"time"

	"shop-service/internal/models"
)

const orderColumns = "id, user_id, product_id, quantity, total_price, status, created_at"

// CreateOrder inserts an order and fills in its ID
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	return s.get(ctx, &order.ID, `
		INSERT INTO orders (user_id, product_id, quantity, total_price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		order.UserID, order.ProductID, order.Quantity, order.TotalPrice, order.Status, order.CreatedAt.UTC())
}

// GetOrder retrieves an order owned by userID
func (s *Store) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.get(ctx, &order,
		"SELECT "+orderColumns+" FROM orders WHERE id = ? AND user_id = ?", orderID, userID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderWithStatus retrieves an order owned by userID that is in the given status
func (s *Store) GetOrderWithStatus(ctx context.Context, userID, orderID int64, status string) (*models.Order, error) {
	var order models.Order
	err := s.get(ctx, &order,
		"SELECT "+orderColumns+" FROM orders WHERE id = ? AND user_id = ? AND status = ?", orderID, userID, status)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.selectAll(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY id", userID)
	return orders, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	return s.execOne(ctx, "UPDATE orders SET status = ? WHERE id = ?", status, orderID)
}

// UpdateOrderTotal persists order.TotalPrice
func (s *Store) UpdateOrderTotal(ctx context.Context, order *models.Order) error {
	return s.execOne(ctx, "UPDATE orders SET total_price = ? WHERE id = ?", order.TotalPrice, order.ID)
}

// DeleteOrder removes an order row
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	return s.execOne(ctx, "DELETE FROM orders WHERE id = ?", orderID)
}
