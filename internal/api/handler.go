package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shop-service/internal/service"
	"shop-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the domain services served over HTTP
type Services struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Orders   *service.OrderService
	Payments *service.PaymentService
	Coupons  *service.CouponService
	Accounts *service.AccountService
}

// Handler contains HTTP handlers
type Handler struct {
	auth     *service.AuthService
	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	payments *service.PaymentService
	coupons  *service.CouponService
	accounts *service.AccountService
	db       Pinger
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, db Pinger) *Handler {
	return &Handler{
		auth:     services.Auth,
		catalog:  services.Catalog,
		cart:     services.Cart,
		orders:   services.Orders,
		payments: services.Payments,
		coupons:  services.Coupons,
		accounts: services.Accounts,
		db:       db,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/home")
	})

	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.GET("/home", h.listProducts)
	router.GET("/product/:id", h.getProduct)
	router.GET("/coupons", h.listCoupons)

	// admin coupon routes carry no authentication
	router.POST("/admin/create_coupon", h.createCoupon)
	router.DELETE("/admin/delete_coupon/:id", h.deleteCoupon)

	authed := router.Group("/")
	authed.Use(h.authMiddleware())
	{
		authed.POST("/token/refresh", h.refreshToken)

		authed.POST("/cart/add", h.addToCart)
		authed.GET("/cart", h.getCart)
		authed.PUT("/cart/:id", h.updateCartItem)
		authed.DELETE("/cart/:id", h.removeCartItem)

		authed.POST("/order", h.createOrder)
		authed.GET("/orders", h.listOrders)
		authed.GET("/order/:id/detail", h.orderDetail)
		authed.DELETE("/order/:id", h.cancelOrder)
		authed.POST("/order/apply_coupon", h.applyCoupon)
		authed.POST("/pay/:id", h.pay)
		authed.GET("/dashboard", h.dashboard)

		authed.DELETE("/user/:id", h.deleteUser)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// bindParams binds from the query string when it carries any parameters,
// whatever the Content-Type, and from the body otherwise.
func bindParams(c *gin.Context, dest interface{}) error {
	if len(c.Request.URL.Query()) > 0 {
		return c.ShouldBindQuery(dest)
	}
	return c.ShouldBind(dest)
}
