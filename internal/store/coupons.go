package store

import (
	"context"
	"time"

	"shop-service/internal/models"
)

const couponColumns = "id, code, discount_amount, expiration_date, active"

// CreateCoupon inserts a coupon and fills in its ID
func (s *Store) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	return s.get(ctx, &coupon.ID, `
		INSERT INTO coupons (code, discount_amount, expiration_date, active)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		coupon.Code, coupon.DiscountAmount, coupon.ExpirationDate.UTC(), coupon.Active)
}

// GetCouponByID retrieves a coupon by ID
func (s *Store) GetCouponByID(ctx context.Context, id int64) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.get(ctx, &coupon, "SELECT "+couponColumns+" FROM coupons WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetCouponByCode retrieves a coupon by its code
func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.get(ctx, &coupon, "SELECT "+couponColumns+" FROM coupons WHERE code = ?", code); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetValidCoupons retrieves active coupons that expire after now
func (s *Store) GetValidCoupons(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	coupons := []models.Coupon{}
	err := s.selectAll(ctx, &coupons,
		"SELECT "+couponColumns+" FROM coupons WHERE active = ? AND expiration_date > ? ORDER BY id",
		true, now.UTC())
	return coupons, err
}

// DeleteCoupon removes a coupon
func (s *Store) DeleteCoupon(ctx context.Context, id int64) error {
	return s.execOne(ctx, "DELETE FROM coupons WHERE id = ?", id)
}
