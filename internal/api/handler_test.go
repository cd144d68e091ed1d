package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/broker"
	"shop-service/internal/service"
	"shop-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.NewStore("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	events := broker.NewEventPublisher(nil)
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute)
	catalog := service.NewCatalogService(s, nil, time.Minute)
	_, err = catalog.SeedDefaults(context.Background())
	require.NoError(t, err)

	handler := NewHandler(Services{
		Auth:     service.NewAuthService(s, tokens, auth.PlaintextVerifier{}),
		Catalog:  catalog,
		Cart:     service.NewCartService(s),
		Orders:   service.NewOrderService(s, events),
		Payments: service.NewPaymentService(s, events, nil, 0),
		Coupons:  service.NewCouponService(s, events, nil, 0),
		Accounts: service.NewAccountService(s, events),
	}, s)

	router := gin.New()
	handler.SetupRoutes(router)
	return &testServer{t: t, router: router, store: s}
}

func (ts *testServer) do(method, target, token string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()

	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, target, nil)
	case url.Values:
		req = httptest.NewRequest(method, target, strings.NewReader(b.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// signup registers username and returns an access token for it
func (ts *testServer) signup(username string) string {
	ts.t.Helper()

	w := ts.do(http.MethodPost, "/register", "", gin.H{"username": username, "password": "pw-" + username})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, "/login", "", url.Values{"username": {username}, "password": {"pw-" + username}})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(ts.t, w, &resp)
	require.Equal(ts.t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/ready", "", nil).Code)

	w := ts.do(http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	id := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, id)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "not a uuid")
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(requestIDHeader))

	w = ts.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.signup("alice")

	w := ts.do(http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrDuplicateUsername.Error(), errorOf(t, w))

	w = ts.do(http.MethodPost, "/login", "", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// JSON credentials are accepted too
	w = ts.do(http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "pw-alice"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPost, "/register", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.ErrInvalidToken.Error(), errorOf(t, w))

	w = ts.do(http.MethodGet, "/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	token := ts.signup("alice")
	w = ts.do(http.MethodPost, "/token/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &resp)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/cart", resp.AccessToken, nil).Code)
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/home", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var home struct {
		Products []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"products"`
	}
	decode(t, w, &home)
	require.Len(t, home.Products, 4)

	w = ts.do(http.MethodGet, fmt.Sprintf("/product/%d", home.Products[1].ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Product 2")

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/product/999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/product/abc", "", nil).Code)
}

func TestCartFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup("alice")
	bob := ts.signup("bob")

	w := ts.do(http.MethodPost, "/cart/add?product_id=1&quantity=2", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var added struct {
		Msg      string `json:"msg"`
		CartItem struct {
			ID       int64 `json:"id"`
			Quantity int   `json:"quantity"`
		} `json:"cart_item"`
	}
	decode(t, w, &added)
	assert.Equal(t, "Product added to cart", added.Msg)
	assert.Equal(t, 2, added.CartItem.Quantity)

	w = ts.do(http.MethodPost, "/cart/add", alice, gin.H{"product_id": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	itemURL := fmt.Sprintf("/cart/%d", added.CartItem.ID)
	w = ts.do(http.MethodPut, itemURL+"?quantity=0", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodPut, itemURL, alice, gin.H{"quantity": 3})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPut, itemURL+"?quantity=5", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodDelete, itemURL, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/cart", alice, nil)
	var cart struct {
		Cart []struct {
			Quantity int `json:"quantity"`
		} `json:"cart"`
	}
	decode(t, w, &cart)
	require.Len(t, cart.Cart, 1)
	assert.Equal(t, 3, cart.Cart[0].Quantity)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, itemURL, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, itemURL, alice, nil).Code)
}

func TestOrderFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup("alice")
	bob := ts.signup("bob")

	w := ts.do(http.MethodPost, "/order", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrEmptyCart.Error(), errorOf(t, w))

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/cart/add?product_id=1&quantity=2", alice, nil).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/cart/add?product_id=2&quantity=1", alice, nil).Code)

	w = ts.do(http.MethodPost, "/order", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		Msg     string `json:"msg"`
		OrderID int64  `json:"order_id"`
	}
	decode(t, w, &created)
	assert.Equal(t, "Order created", created.Msg)

	detailURL := fmt.Sprintf("/order/%d/detail", created.OrderID)
	w = ts.do(http.MethodGet, detailURL, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Order struct {
			ProductID  int64  `json:"product_id"`
			Quantity   int    `json:"quantity"`
			TotalPrice string `json:"total_price"`
			Status     string `json:"status"`
		} `json:"order"`
		Product struct {
			ID int64 `json:"id"`
		} `json:"product"`
	}
	decode(t, w, &detail)
	assert.Equal(t, int64(1), detail.Order.ProductID)
	assert.Equal(t, 2, detail.Order.Quantity)
	assert.Equal(t, "42.97", detail.Order.TotalPrice)
	assert.Equal(t, "pending", detail.Order.Status)
	assert.Equal(t, int64(1), detail.Product.ID)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, detailURL, bob, nil).Code)

	payURL := fmt.Sprintf("/pay/%d", created.OrderID)
	w = ts.do(http.MethodPost, payURL+"?amount=50", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodPost, payURL, alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodPost, payURL+"?amount=ten", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodPost, payURL+"?amount=1", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, payURL+"?amount=42.97", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Payment successful")

	// paid orders are no longer cancellable
	cancelURL := fmt.Sprintf("/order/%d", created.OrderID)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, cancelURL, alice, nil).Code)

	w = ts.do(http.MethodPost, "/order", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &created)
	cancelURL = fmt.Sprintf("/order/%d", created.OrderID)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, cancelURL, bob, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, cancelURL, alice, nil).Code)

	w = ts.do(http.MethodGet, "/orders", alice, nil)
	var orders struct {
		Orders []json.RawMessage `json:"orders"`
	}
	decode(t, w, &orders)
	assert.Len(t, orders.Orders, 1)

	w = ts.do(http.MethodGet, "/dashboard", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Cart   []json.RawMessage `json:"cart"`
		Orders []json.RawMessage `json:"orders"`
	}
	decode(t, w, &dash)
	assert.Len(t, dash.Cart, 2)
	assert.Len(t, dash.Orders, 1)
}

func TestCouponFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup("alice")

	expires := time.Now().Add(24 * time.Hour).UTC().Format("2006-01-02T15:04:05")
	w := ts.do(http.MethodPost, "/admin/create_coupon", "", gin.H{
		"code":            "SAVE5",
		"discount_amount": 5,
		"expiration_date": expires,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		Coupon struct {
			ID int64 `json:"id"`
		} `json:"coupon"`
	}
	decode(t, w, &created)

	w = ts.do(http.MethodPost, "/admin/create_coupon", "", gin.H{
		"code":            "SAVE5",
		"discount_amount": 1,
		"expiration_date": expires,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/admin/create_coupon", "", gin.H{
		"code":            "OLD",
		"discount_amount": 1,
		"expiration_date": "2001-01-01",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPost, "/admin/create_coupon", "", gin.H{
		"code":            "BAD",
		"discount_amount": 1,
		"expiration_date": "someday",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/coupons", "", nil)
	var listed struct {
		Coupons []struct {
			Code string `json:"code"`
		} `json:"coupons"`
	}
	decode(t, w, &listed)
	require.Len(t, listed.Coupons, 1)
	assert.Equal(t, "SAVE5", listed.Coupons[0].Code)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/cart/add?product_id=1&quantity=1", alice, nil).Code)
	w = ts.do(http.MethodPost, "/order", alice, nil)
	var order struct {
		OrderID int64 `json:"order_id"`
	}
	decode(t, w, &order)

	w = ts.do(http.MethodPost, fmt.Sprintf("/order/apply_coupon?order_id=%d&coupon_code=SAVE5", order.OrderID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var applied struct {
		Msg        string `json:"msg"`
		Discount   string `json:"discount"`
		TotalPrice string `json:"total_price"`
	}
	decode(t, w, &applied)
	assert.Equal(t, "Coupon applied", applied.Msg)
	assert.Equal(t, "5", applied.Discount)
	assert.Equal(t, "5.99", applied.TotalPrice)

	w = ts.do(http.MethodPost, fmt.Sprintf("/order/apply_coupon?order_id=%d&coupon_code=OLD", order.OrderID), alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrCouponExpired.Error(), errorOf(t, w))

	deleteURL := fmt.Sprintf("/admin/delete_coupon/%d", created.Coupon.ID)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, deleteURL, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, deleteURL, "", nil).Code)
}

func TestDeleteUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup("alice")
	ts.signup("bob")

	aliceUser, err := ts.store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	bobUser, err := ts.store.GetUserByUsername(context.Background(), "bob")
	require.NoError(t, err)

	w := ts.do(http.MethodDelete, fmt.Sprintf("/user/%d", aliceUser.ID), alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrSelfDeletion.Error(), errorOf(t, w))

	w = ts.do(http.MethodDelete, fmt.Sprintf("/user/%d", bobUser.ID), alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodDelete, fmt.Sprintf("/user/%d", bobUser.ID), alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, statusFor(service.KindOf(service.ErrExpiredToken)))
	assert.Equal(t, http.StatusConflict, statusFor(service.KindOf(service.ErrOrderBusy)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(service.KindOf(assert.AnError)))
}

// rawRequest sends a request with an explicit Authorization and Content-Type
func (ts *testServer) rawRequest(method, target, authorization, contentType string) *httptest.ResponseRecorder {
	ts.t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestQueryParamsWithJSONContentType(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup("alice")
	bearer := "Bearer " + alice

	w := ts.rawRequest(http.MethodPost, "/cart/add?product_id=1&quantity=2", bearer, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var added struct {
		CartItem struct {
			ID int64 `json:"id"`
		} `json:"cart_item"`
	}
	decode(t, w, &added)

	w = ts.rawRequest(http.MethodPut, fmt.Sprintf("/cart/%d?quantity=4", added.CartItem.ID), bearer, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.rawRequest(http.MethodPost, "/order", bearer, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		OrderID int64 `json:"order_id"`
	}
	decode(t, w, &created)

	w = ts.do(http.MethodPost, "/admin/create_coupon", "", gin.H{
		"code":            "C1",
		"discount_amount": 1,
		"expiration_date": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.rawRequest(http.MethodPost,
		fmt.Sprintf("/order/apply_coupon?order_id=%d&coupon_code=C1", created.OrderID), bearer, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.rawRequest(http.MethodPost, fmt.Sprintf("/pay/%d?amount=1", created.OrderID), bearer, "application/json")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// JSON bodies still bind when the query string is empty
	w = ts.do(http.MethodPost, fmt.Sprintf("/pay/%d", created.OrderID), alice, gin.H{"amount": 1})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBearerSchemeIsCaseInsensitive(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup("alice")

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		w := ts.rawRequest(http.MethodGet, "/cart", scheme+" "+alice, "")
		assert.Equal(t, http.StatusOK, w.Code, scheme)
	}

	w := ts.rawRequest(http.MethodPost, "/token/refresh", "bearer "+alice, "")
	assert.Equal(t, http.StatusOK, w.Code)

	for _, header := range []string{"Basic " + alice, alice, "Bearer ", "bearer"} {
		w := ts.rawRequest(http.MethodGet, "/cart", header, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestCreateCouponRequiresDiscount(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/admin/create_coupon", "", gin.H{
		"code":            "FREE",
		"expiration_date": "2099-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/coupons", "", nil)
	assert.NotContains(t, w.Body.String(), "FREE")

	w = ts.do(http.MethodPost, "/admin/create_coupon", "", gin.H{
		"code":            "ZERO",
		"discount_amount": 0,
		"expiration_date": "2099-01-01",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
