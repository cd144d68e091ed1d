package service

import (
	"errors"

	"shop-service/internal/auth"
)

// Authentication failures
var (
	ErrInvalidToken       = auth.ErrInvalidToken
	ErrExpiredToken       = auth.ErrExpiredToken
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Lookups that found nothing visible to the caller
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCouponNotFound   = errors.New("coupon not found")
)

// Conflicts with existing state
var (
	ErrDuplicateUsername   = errors.New("username already registered")
	ErrDuplicateCouponCode = errors.New("coupon code already exists")
	ErrSelfDeletion        = errors.New("cannot delete your own account")
)

// Rejected input
var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAmountExceedsTotal = errors.New("payment amount exceeds order total")
	ErrCouponExpired      = errors.New("coupon expired")
	ErrInvalidCoupon      = errors.New("invalid coupon code")
	ErrInvalidDiscount    = errors.New("discount amount must not be negative")
)

// ErrOrderBusy is returned when order locking is enabled and another request holds the lock
var ErrOrderBusy = errors.New("order is being modified by another request")

// Kind groups errors by how callers should react to them
type Kind int

const (
	KindInternal Kind = iota
	KindAuth
	KindNotFound
	KindConflict
	KindValidation
	KindBusy
)

var kinds = map[error]Kind{
	ErrInvalidToken:       KindAuth,
	ErrExpiredToken:       KindAuth,
	ErrInvalidCredentials: KindAuth,

	ErrUserNotFound:     KindNotFound,
	ErrProductNotFound:  KindNotFound,
	ErrCartItemNotFound: KindNotFound,
	ErrOrderNotFound:    KindNotFound,
	ErrCouponNotFound:   KindNotFound,

	ErrDuplicateUsername:   KindConflict,
	ErrDuplicateCouponCode: KindConflict,
	ErrSelfDeletion:        KindConflict,

	ErrInvalidQuantity:    KindValidation,
	ErrEmptyCart:          KindValidation,
	ErrAmountExceedsTotal: KindValidation,
	ErrCouponExpired:      KindValidation,
	ErrInvalidCoupon:      KindValidation,
	ErrInvalidDiscount:    KindValidation,

	ErrOrderBusy: KindBusy,
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	for target, kind := range kinds {
		if errors.Is(err, target) {
			return kind
		}
	}
	return KindInternal
}
