package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered account
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
}

// Product represents a product in the catalog
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
}

// CartItem represents one line of a user's cart
type CartItem struct {
	ID        int64 `db:"id" json:"id"`
	UserID    int64 `db:"user_id" json:"user_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// Order represents a customer order.
// ProductID and Quantity come from the first cart line only while
// TotalPrice covers the whole cart.
type Order struct {
	ID         int64           `db:"id" json:"id"`
	UserID     int64           `db:"user_id" json:"user_id"`
	ProductID  int64           `db:"product_id" json:"product_id"`
	Quantity   int             `db:"quantity" json:"quantity"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	Status     string          `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Coupon represents a fixed-amount discount code
type Coupon struct {
	ID             int64           `db:"id" json:"id"`
	Code           string          `db:"code" json:"code"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	ExpirationDate time.Time       `db:"expiration_date" json:"expiration_date"`
	Active         bool            `db:"active" json:"active"`
}

// Order statuses
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// SampleProducts is the catalog seeded into an empty store.
func SampleProducts() []Product {
	return []Product{
		{Name: "Product 1", Description: "Description for product 1", Price: decimal.RequireFromString("10.99")},
		{Name: "Product 2", Description: "Description for product 2", Price: decimal.RequireFromString("20.99")},
		{Name: "Product 3", Description: "Description for product 3", Price: decimal.RequireFromString("30.99")},
		{Name: "Product 4", Description: "Description for product 4", Price: decimal.RequireFromString("40.99")},
	}
}
