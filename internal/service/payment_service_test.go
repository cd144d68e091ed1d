package service

import (
	"context"
	"testing"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPay(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.user(t, "alice")
	order := f.order(t, alice, "10.00", 2)

	_, err := f.payments.Pay(ctx, alice.ID, order.ID, dec("20.01"))
	assert.ErrorIs(t, err, ErrAmountExceedsTotal)
	assert.Equal(t, KindValidation, KindOf(err))

	detail, err := f.orders.GetDetail(ctx, alice.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, detail.Order.Status)

	// amount below the total is accepted
	paid, err := f.payments.Pay(ctx, alice.ID, order.ID, dec("5"))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)

	detail, err = f.orders.GetDetail(ctx, alice.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, detail.Order.Status)
	assert.True(t, dec("20").Equal(detail.Order.TotalPrice))
}

func TestPayExactTotalAndRepay(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.user(t, "alice")
	order := f.order(t, alice, "10.00", 2)

	_, err := f.payments.Pay(ctx, alice.ID, order.ID, dec("20"))
	require.NoError(t, err)

	// already paid orders accept payment again
	again, err := f.payments.Pay(ctx, alice.ID, order.ID, dec("20"))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, again.Status)

	assert.Equal(t, []string{
		models.EventTypeOrderCreated,
		models.EventTypeOrderPaid,
		models.EventTypeOrderPaid,
	}, f.events.Events())
}

func TestPayForeignOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	order := f.order(t, alice, "10.00", 1)

	_, err := f.payments.Pay(ctx, bob.ID, order.ID, dec("1"))
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPayWithLocks(t *testing.T) {
	locker := newMemLocker()
	f := newFixture(t, locker)
	ctx := context.Background()
	alice := f.user(t, "alice")
	order := f.order(t, alice, "10.00", 1)

	_, err := f.payments.Pay(ctx, alice.ID, order.ID, dec("10"))
	require.NoError(t, err)
	assert.Equal(t, 1, locker.released)
	assert.Empty(t, locker.held)

	// another request holds the order
	_, ok, err := locker.AcquireLock(ctx, "order:1", 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), order.ID)

	_, err = f.payments.Pay(ctx, alice.ID, order.ID, dec("10"))
	assert.ErrorIs(t, err, ErrOrderBusy)
	assert.Equal(t, KindBusy, KindOf(err))

	// the lock is released even when the payment is rejected
	locker = newMemLocker()
	f.payments = NewPaymentService(f.store, f.events, locker, 0)
	_, err = f.payments.Pay(ctx, alice.ID, order.ID, dec("11"))
	assert.ErrorIs(t, err, ErrAmountExceedsTotal)
	assert.Empty(t, locker.held)

	locker.err = assert.AnError
	_, err = f.payments.Pay(ctx, alice.ID, order.ID, dec("1"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, KindInternal, KindOf(err))
}
