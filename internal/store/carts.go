package store

import (
	"context"

	"shop-service/internal/models"
)

// CreateCartItem appends a cart line and fills in its ID
func (s *Store) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return s.get(ctx, &item.ID,
		"INSERT INTO carts (user_id, product_id, quantity) VALUES (?, ?, ?) RETURNING id",
		item.UserID, item.ProductID, item.Quantity)
}

// GetCartItems retrieves a user's cart lines in insertion order
func (s *Store) GetCartItems(ctx context.Context, userID int64) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := s.selectAll(ctx, &items,
		"SELECT id, user_id, product_id, quantity FROM carts WHERE user_id = ? ORDER BY id", userID)
	return items, err
}

// GetCartItem retrieves a cart line owned by userID
func (s *Store) GetCartItem(ctx context.Context, userID, itemID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := s.get(ctx, &item,
		"SELECT id, user_id, product_id, quantity FROM carts WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItemQuantity overwrites the quantity of a cart line
func (s *Store) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	return s.execOne(ctx, "UPDATE carts SET quantity = ? WHERE id = ?", quantity, itemID)
}

// DeleteCartItem removes a cart line
func (s *Store) DeleteCartItem(ctx context.Context, itemID int64) error {
	return s.execOne(ctx, "DELETE FROM carts WHERE id = ?", itemID)
}
