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

// CouponService issues coupons and applies them to orders
type CouponService struct {
	store          store.Repository
	eventPublisher EventPublisher
	locks          *orderLocks
	logger         *zap.Logger
	now            func() time.Time
}

// NewCouponService creates a new coupon service; locker may be nil
func NewCouponService(store store.Repository, eventPublisher EventPublisher, locker Locker, lockTTL time.Duration) *CouponService {
	logger := util.GetLogger()
	return &CouponService{
		store:          store,
		eventPublisher: eventPublisher,
		locks:          &orderLocks{locker: locker, ttl: lockTTL, logger: logger},
		logger:         logger,
		now:            time.Now,
	}
}

// ApplyResult describes a coupon application
type ApplyResult struct {
	Order    *models.Order   `json:"order"`
	Discount decimal.Decimal `json:"discount"`
}

// Create issues an active coupon with a unique code
func (s *CouponService) Create(ctx context.Context, code string, discount decimal.Decimal, expiresAt time.Time) (*models.Coupon, error) {
	ctx, span := util.StartSpan(ctx, "CouponService.Create")
	defer span.End()

	if discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}

	coupon := &models.Coupon{
		Code:           code,
		DiscountAmount: discount,
		ExpirationDate: expiresAt.UTC(),
		Active:         true,
	}
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		_, err := tx.GetCouponByCode(ctx, code)
		if err == nil {
			return ErrDuplicateCouponCode
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to look up coupon: %w", err)
		}
		return tx.CreateCoupon(ctx, coupon)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Coupon created",
		zap.Int64("coupon_id", coupon.ID),
		zap.String("code", coupon.Code),
		zap.Time("expiration_date", coupon.ExpirationDate))
	return coupon, nil
}

// ListValid returns active coupons that have not expired
func (s *CouponService) ListValid(ctx context.Context) ([]models.Coupon, error) {
	ctx, span := util.StartSpan(ctx, "CouponService.ListValid")
	defer span.End()

	coupons, err := s.store.GetValidCoupons(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// Apply reduces the total of one of the user's orders by the coupon amount,
// never below zero. The coupon stays active and may be applied again.
func (s *CouponService) Apply(ctx context.Context, userID, orderID int64, code string) (*ApplyResult, error) {
	ctx, span := util.StartSpan(ctx, "CouponService.Apply")
	defer span.End()

	unlock, err := s.locks.lock(ctx, orderID)
	if err != nil {
		util.CouponsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	defer unlock()

	var result *ApplyResult
	err = s.store.WithTx(ctx, func(tx store.Repository) error {
		order, err := tx.GetOrder(ctx, userID, orderID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		coupon, err := tx.GetCouponByCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCoupon
		}
		if err != nil {
			return fmt.Errorf("failed to look up coupon: %w", err)
		}
		if coupon.ExpirationDate.Before(s.now()) {
			return ErrCouponExpired
		}

		discount := decimal.Min(coupon.DiscountAmount, order.TotalPrice)
		order.TotalPrice = order.TotalPrice.Sub(discount)
		if err := tx.UpdateOrderTotal(ctx, order); err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}

		result = &ApplyResult{Order: order, Discount: discount}
		return nil
	})
	if err != nil {
		util.CouponsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	util.CouponsAppliedTotal.Inc()
	s.logger.Info("Coupon applied",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", userID),
		zap.String("code", code),
		zap.String("discount", result.Discount.String()),
		zap.String("total_price", result.Order.TotalPrice.String()))

	event := &models.CouponAppliedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeCouponApplied),
		OrderID:    orderID,
		UserID:     userID,
		Code:       code,
		Discount:   result.Discount,
		TotalPrice: result.Order.TotalPrice,
	}
	if err := s.eventPublisher.PublishCouponApplied(ctx, event); err != nil {
		s.logger.Error("Failed to publish CouponApplied event", zap.Error(err))
	}

	return result, nil
}

// Delete removes a coupon
func (s *CouponService) Delete(ctx context.Context, couponID int64) error {
	ctx, span := util.StartSpan(ctx, "CouponService.Delete")
	defer span.End()

	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		_, err := tx.GetCouponByID(ctx, couponID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrCouponNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get coupon: %w", err)
		}
		return tx.DeleteCoupon(ctx, couponID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Coupon deleted", zap.Int64("coupon_id", couponID))
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrInvalidCoupon):
		return "invalid_coupon"
	case errors.Is(err, ErrCouponExpired):
		return "expired"
	case errors.Is(err, ErrOrderBusy):
		return "order_busy"
	default:
		return "internal"
	}
}
