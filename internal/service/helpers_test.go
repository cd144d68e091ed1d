package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	fail   error
}

func (p *recordingPublisher) record(eventType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.fail
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, e *models.OrderCreatedEvent) error {
	return p.record(e.EventType)
}

func (p *recordingPublisher) PublishOrderPaid(ctx context.Context, e *models.OrderPaidEvent) error {
	return p.record(e.EventType)
}

func (p *recordingPublisher) PublishOrderCancelled(ctx context.Context, e *models.OrderCancelledEvent) error {
	return p.record(e.EventType)
}

func (p *recordingPublisher) PublishCouponApplied(ctx context.Context, e *models.CouponAppliedEvent) error {
	return p.record(e.EventType)
}

func (p *recordingPublisher) PublishUserDeleted(ctx context.Context, e *models.UserDeletedEvent) error {
	return p.record(e.EventType)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// memLocker is an in-process Locker; held keys stay held until released
type memLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released int
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]string)}
}

func (l *memLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "token-" + key
	return l.held[key], true, nil
}

func (l *memLocker) ReleaseLock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return errors.New("lock not held")
	}
	delete(l.held, key)
	l.released++
	return nil
}

type fixture struct {
	store    *store.Store
	events   *recordingPublisher
	tokens   *auth.TokenManager
	auth     *AuthService
	catalog  *CatalogService
	cart     *CartService
	orders   *OrderService
	payments *PaymentService
	coupons  *CouponService
	accounts *AccountService
}

func newFixture(t *testing.T, locker Locker) *fixture {
	t.Helper()

	s, err := store.NewStore("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	events := &recordingPublisher{}
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute)
	return &fixture{
		store:    s,
		events:   events,
		tokens:   tokens,
		auth:     NewAuthService(s, tokens, auth.PlaintextVerifier{}),
		catalog:  NewCatalogService(s, nil, time.Minute),
		cart:     NewCartService(s),
		orders:   NewOrderService(s, events),
		payments: NewPaymentService(s, events, locker, 10*time.Second),
		coupons:  NewCouponService(s, events, locker, 10*time.Second),
		accounts: NewAccountService(s, events),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), name, name+"-pw")
	require.NoError(t, err)
	return u
}

func (f *fixture) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: name, Price: decimal.RequireFromString(price)}
	require.NoError(t, f.store.CreateProduct(context.Background(), p))
	return p
}

// order places an order for a single cart line of quantity qty of a fresh product
func (f *fixture) order(t *testing.T, user *models.User, price string, qty int) *models.Order {
	t.Helper()
	ctx := context.Background()
	p := f.product(t, "item", price)
	_, err := f.cart.Add(ctx, user.ID, p.ID, qty)
	require.NoError(t, err)
	o, err := f.orders.CreateOrder(ctx, user.ID)
	require.NoError(t, err)
	return o
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
