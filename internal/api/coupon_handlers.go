package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createCouponRequest struct {
	Code           string           `json:"code" binding:"required"`
	DiscountAmount *decimal.Decimal `json:"discount_amount" binding:"required"`
	ExpirationDate string           `json:"expiration_date" binding:"required"`
}

type applyCouponRequest struct {
	OrderID    *int64 `form:"order_id" json:"order_id" binding:"required"`
	CouponCode string `form:"coupon_code" json:"coupon_code" binding:"required"`
}

// Accepted expiration_date layouts; values without a zone are UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// createCoupon handles POST /admin/create_coupon
func (h *Handler) createCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	expiresAt, err := parseTimestamp(req.ExpirationDate)
	if err != nil {
		badRequest(c, "Invalid expiration_date", err)
		return
	}

	coupon, err := h.coupons.Create(c.Request.Context(), req.Code, *req.DiscountAmount, expiresAt)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

// listCoupons handles GET /coupons
func (h *Handler) listCoupons(c *gin.Context) {
	coupons, err := h.coupons.ListValid(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// applyCoupon handles POST /order/apply_coupon
func (h *Handler) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := bindParams(c, &req); err != nil {
		badRequest(c, "order_id and coupon_code are required", err)
		return
	}

	result, err := h.coupons.Apply(c.Request.Context(), currentUser(c).ID, *req.OrderID, req.CouponCode)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":         "Coupon applied",
		"order_id":    result.Order.ID,
		"discount":    result.Discount,
		"total_price": result.Order.TotalPrice,
	})
}

// deleteCoupon handles DELETE /admin/delete_coupon/:id
func (h *Handler) deleteCoupon(c *gin.Context) {
	couponID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.coupons.Delete(c.Request.Context(), couponID); err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Coupon deleted"})
}
