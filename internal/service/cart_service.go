package service

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// CartService manages the cart lines of a single user
type CartService struct {
	store  store.Repository
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store store.Repository) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Add appends a new cart line. Quantity is stored as given and repeated adds
// of the same product create separate lines.
func (s *CartService) Add(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Add")
	defer span.End()

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.store.CreateCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	util.CartItemsAddedTotal.Inc()
	if quantity <= 0 {
		s.logger.Warn("Cart line added with non-positive quantity",
			zap.Int64("user_id", userID),
			zap.Int64("cart_item_id", item.ID),
			zap.Int("quantity", quantity))
	}
	return item, nil
}

// List returns the user's cart lines
func (s *CartService) List(ctx context.Context, userID int64) ([]models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.List")
	defer span.End()

	items, err := s.store.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// Remove deletes one of the user's cart lines
func (s *CartService) Remove(ctx context.Context, userID, itemID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.Remove")
	defer span.End()

	return s.store.WithTx(ctx, func(tx store.Repository) error {
		if _, err := s.ownedItem(ctx, tx, userID, itemID); err != nil {
			return err
		}
		return tx.DeleteCartItem(ctx, itemID)
	})
}

// Update overwrites the quantity of one of the user's cart lines
func (s *CartService) Update(ctx context.Context, userID, itemID int64, quantity int) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Update")
	defer span.End()

	var item *models.CartItem
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		item, err = s.ownedItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return ErrInvalidQuantity
		}
		if err := tx.UpdateCartItemQuantity(ctx, itemID, quantity); err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		item.Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) ownedItem(ctx context.Context, tx store.Repository, userID, itemID int64) (*models.CartItem, error) {
	item, err := tx.GetCartItem(ctx, userID, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return item, nil
}
