package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type addToCartRequest struct {
	ProductID *int64 `form:"product_id" json:"product_id" binding:"required"`
	Quantity  *int   `form:"quantity" json:"quantity" binding:"required"`
}

type updateCartRequest struct {
	Quantity *int `form:"quantity" json:"quantity" binding:"required"`
}

// json.Number binds from both query strings and JSON numbers
type payRequest struct {
	Amount json.Number `form:"amount" json:"amount" binding:"required"`
}

// listProducts handles GET /home
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles GET /product/:id
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// addToCart handles POST /cart/add
func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := bindParams(c, &req); err != nil {
		badRequest(c, "product_id and quantity are required", err)
		return
	}

	user := currentUser(c)
	item, err := h.cart.Add(c.Request.Context(), user.ID, *req.ProductID, *req.Quantity)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":       "Product added to cart",
		"cart_item": item,
	})
}

// getCart handles GET /cart
func (h *Handler) getCart(c *gin.Context) {
	items, err := h.cart.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": items})
}

// updateCartItem handles PUT /cart/:id
func (h *Handler) updateCartItem(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateCartRequest
	if err := bindParams(c, &req); err != nil {
		badRequest(c, "quantity is required", err)
		return
	}

	item, err := h.cart.Update(c.Request.Context(), currentUser(c).ID, itemID, *req.Quantity)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":       "Cart item updated",
		"cart_item": item,
	})
}

// removeCartItem handles DELETE /cart/:id
func (h *Handler) removeCartItem(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.cart.Remove(c.Request.Context(), currentUser(c).ID, itemID); err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Cart item removed"})
}

// createOrder handles POST /order
func (h *Handler) createOrder(c *gin.Context) {
	order, err := h.orders.CreateOrder(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":      "Order created",
		"order_id": order.ID,
	})
}

// listOrders handles GET /orders
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// orderDetail handles GET /order/:id/detail
func (h *Handler) orderDetail(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.orders.GetDetail(c.Request.Context(), currentUser(c).ID, orderID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// cancelOrder handles DELETE /order/:id
func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orders.Cancel(c.Request.Context(), currentUser(c).ID, orderID); err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Order cancelled"})
}

// pay handles POST /pay/:id
func (h *Handler) pay(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	var req payRequest
	if err := bindParams(c, &req); err != nil {
		badRequest(c, "amount is required", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		badRequest(c, "Invalid amount", err)
		return
	}

	order, err := h.payments.Pay(c.Request.Context(), currentUser(c).ID, orderID, amount)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":      "Payment successful",
		"order_id": order.ID,
	})
}

// dashboard handles GET /dashboard
func (h *Handler) dashboard(c *gin.Context) {
	dash, err := h.orders.Dashboard(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}
