package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-checkout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_EmptyCart(t *testing.T) {
	svc := newTestService(t, testSettings(time.Second), &recordingSink{})

	_, err := svc.Start(context.Background(), nil, nil)

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestStart_InvalidItem(t *testing.T) {
	svc := newTestService(t, testSettings(time.Second), &recordingSink{})

	_, err := svc.Start(context.Background(), []domain.CartItem{item("p", "-1.00", 1)}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCartItem)

	_, err = svc.Start(context.Background(), []domain.CartItem{item("p", "1.00", 0)}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCartItem)
}

func TestStart_SettingsError(t *testing.T) {
	svc := New(staticSettings{err: errors.New("redis down")}, &recordingSink{}, nil)

	_, err := svc.Start(context.Background(), []domain.CartItem{item("p", "1.00", 1)}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load settings")
}

func TestGetAndAbandon_NotFound(t *testing.T) {
	svc := newTestService(t, testSettings(time.Second), &recordingSink{})

	_, err := svc.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Abandon("missing"), domain.ErrNotFound)
}

func TestSweep_AbandonsIdleSessions(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	svc := newTestService(t, testSettings(time.Second), &recordingSink{}, WithClock(clock), WithSessionTTL(10*time.Minute))
	stale := start(t, svc, item("p", "1.00", 1))
	advance(6 * time.Minute)
	fresh := start(t, svc, item("p", "1.00", 1))
	advance(6 * time.Minute)

	assert.Equal(t, 1, svc.Sweep())
	assert.Equal(t, StateAbandoned, stale.State())
	assert.Equal(t, StateIdle, fresh.State())
	_, err := svc.Get(stale.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := svc.Get(fresh.ID())
	require.NoError(t, err)
	assert.Same(t, fresh, got)
}

type countingRecorder struct {
	mu        sync.Mutex
	rejected  []string
	started   int
	cancelled int
	placed    []domain.OrderStatus
}

func (c *countingRecorder) SubmissionRejected(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected = append(c.rejected, reason)
}

func (c *countingRecorder) RedirectStarted(domain.PaymentMethodID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

func (c *countingRecorder) RedirectCancelled(domain.PaymentMethodID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled++
}

func (c *countingRecorder) OrderPlaced(_ domain.PaymentMethodID, status domain.OrderStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placed = append(c.placed, status)
}

func TestService_RecordsOutcomes(t *testing.T) {
	rec := &countingRecorder{}
	svc := newTestService(t, testSettings(100*time.Millisecond), &recordingSink{}, WithRecorder(rec))

	rejected := start(t, svc, item("p", "1.00", 1))
	_, err := rejected.Submit(context.Background())
	require.Error(t, err)

	cancelled := start(t, svc, item("p", "1.00", 1))
	require.NoError(t, cancelled.UpdateDraft(identity("Ov", "ov@example.com")))
	require.NoError(t, cancelled.SelectPaymentMethod(domain.PaymentPayPal))
	_, err = cancelled.Submit(context.Background())
	require.NoError(t, err)
	cancelled.Abandon()

	paid := start(t, svc, item("p", "1.00", 1))
	require.NoError(t, paid.UpdateDraft(identity("Pe", "pe@example.com")))
	require.NoError(t, paid.SelectPaymentMethod(domain.PaymentPayPal))
	_, err = paid.Submit(context.Background())
	require.NoError(t, err)
	_, err = paid.Wait(context.Background())
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"selection"}, rec.rejected)
	assert.Equal(t, 2, rec.started)
	assert.Equal(t, 1, rec.cancelled)
	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusPaid}, rec.placed)
}

func TestMultiSink_StopsAtFirstError(t *testing.T) {
	var calls []string
	first := OrderSinkFunc(func(_ context.Context, _ domain.Order) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	second := OrderSinkFunc(func(_ context.Context, _ domain.Order) error {
		calls = append(calls, "second")
		return nil
	})

	err := MultiSink{nil, first, second}.PlaceOrder(context.Background(), domain.Order{ID: "o1"})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first"}, calls)
}
