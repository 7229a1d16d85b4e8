package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-checkout/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type staticSettings struct {
	settings domain.Settings
	err      error
}

func (s staticSettings) Snapshot(_ context.Context) (domain.Settings, error) {
	return s.settings, s.err
}

type recordingSink struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (r *recordingSink) PlaceOrder(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.orders = append(r.orders, o)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type decliningProcessor struct{}

func (decliningProcessor) Authorize(_ context.Context, _ AuthorizationRequest) (Authorization, error) {
	return Authorization{Approved: false, Reason: "insufficient funds"}, nil
}

type failingProcessor struct{}

func (failingProcessor) Authorize(_ context.Context, _ AuthorizationRequest) (Authorization, error) {
	return Authorization{}, errors.New("gateway unreachable")
}

func testSettings(delay time.Duration) domain.Settings {
	s := domain.DefaultSettings("USD", "en")
	s.RedirectDelayMS = delay.Milliseconds()
	s.BankTransfer = domain.BankTransferSettings{
		AccountName:   domain.ToggleField{Enabled: true, Value: "Acme Store LLC"},
		AccountNumber: domain.ToggleField{Enabled: true, Value: "SA0380000000608010167519"},
		BankName:      domain.ToggleField{Enabled: false, Value: "Hidden Bank"},
		Contact:       domain.ToggleField{Enabled: true, Value: "+966 5000 0000"},
	}
	return s
}

func newTestService(t *testing.T, settings domain.Settings, sink OrderSink, opts ...Option) *Service {
	t.Helper()
	svc := New(staticSettings{settings: settings}, sink, nil, opts...)
	t.Cleanup(svc.Close)
	return svc
}

func item(id, price string, qty int) domain.CartItem {
	return domain.CartItem{
		ProductID: id,
		VariantID: id + "-v",
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
		NameKey:   "product." + id,
	}
}

func tagged(it domain.CartItem, t domain.CustomOrderType, phone string) domain.CartItem {
	it.Metadata = &domain.CartItemMetadata{CustomOrderType: t, PhoneNumber: phone}
	return it
}

func strPtr(v string) *string {
	return &v
}

func identity(name, email string) DraftPatch {
	return DraftPatch{BuyerName: strPtr(name), BuyerEmail: strPtr(email)}
}

func validCard() *domain.CardDetails {
	return &domain.CardDetails{Number: "4242 4242 4242 4242", Expiry: "12/29", CVC: "123"}
}

func start(t *testing.T, svc *Service, items ...domain.CartItem) *Session {
	t.Helper()
	sess, err := svc.Start(context.Background(), items, nil)
	require.NoError(t, err)
	return sess
}
