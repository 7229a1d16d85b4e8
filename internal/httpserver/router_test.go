package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/metrics"
	"storefront-checkout/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type stubSettings struct {
	settings domain.Settings
	err      error
}

func (s stubSettings) Snapshot(_ context.Context) (domain.Settings, error) {
	return s.settings, s.err
}

type stubOrders struct {
	order *domain.Order
	err   error
}

func (s *stubOrders) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

type captureSink struct {
	orders []domain.Order
}

func (s *captureSink) PlaceOrder(_ context.Context, o domain.Order) error {
	s.orders = append(s.orders, o)
	return nil
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testSettings() domain.Settings {
	s := domain.DefaultSettings("USD", "en")
	s.RedirectDelayMS = 30
	s.BankTransfer.AccountNumber = domain.ToggleField{Enabled: true, Value: "0001"}
	return s
}

func newTestRouter(t *testing.T, sink checkout.OrderSink, orders OrderReader) (*gin.Engine, *checkout.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	provider := stubSettings{settings: testSettings()}
	svc := checkout.New(provider, sink, logDiscard())
	t.Cleanup(svc.Close)
	router, err := buildRouter(logDiscard(), nil, Deps{
		Checkout: svc,
		Settings: provider,
		Orders:   orders,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router, svc
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, router http.Handler, body string) checkout.View {
	t.Helper()
	rec := do(router, http.MethodPost, "/checkout/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var view checkout.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func TestBuildRouter_RequiresCheckout(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatalf("expected error without checkout service")
	}
}

func TestHealthAndReady(t *testing.T) {
	router, _ := newTestRouter(t, &captureSink{}, nil)
	startSession(t, router, `{"items":[{"productId":"p","variantId":"v","quantity":1,"unitPrice":"1.00","nameKey":"n"}]}`)

	rec := do(router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Sessions != 1 {
		t.Fatalf("unexpected health body %s", rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without db, got %d", rec.Code)
	}
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ready); err != nil {
		t.Fatalf("decode ready: %v", err)
	}
	if ready.Checks["db"] != "not configured" || ready.Checks["settings"] != "ok" {
		t.Fatalf("unexpected checks %v", ready.Checks)
	}
}

func TestReady_SettingsUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider := stubSettings{err: errors.New("settings store down")}
	svc := checkout.New(provider, &captureSink{}, logDiscard())
	t.Cleanup(svc.Close)
	router, err := buildRouter(logDiscard(), nil, Deps{Checkout: svc, Settings: provider})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	rec := do(router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"settings":"unavailable"`) {
		t.Fatalf("expected settings check to fail, body=%s", rec.Body.String())
	}
}

func TestServerShutdown_ClosesSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider := stubSettings{settings: testSettings()}
	svc := checkout.New(provider, &captureSink{}, logDiscard())
	srv, err := New("127.0.0.1:0", logDiscard(), nil, Deps{Checkout: svc, Settings: provider})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	sess, err := svc.Start(context.Background(), []domain.CartItem{{ProductID: "p", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if svc.Len() != 0 {
		t.Fatalf("expected no open sessions, got %d", svc.Len())
	}
	if sess.State() != checkout.StateAbandoned {
		t.Fatalf("expected abandoned session, got %s", sess.State())
	}
}

func TestPaymentMethods(t *testing.T) {
	router, _ := newTestRouter(t, &captureSink{}, nil)

	rec := do(router, http.MethodGet, "/payment-methods", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		PaymentMethods []domain.PaymentMethod `json:"paymentMethods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.PaymentMethods) != len(domain.CanonicalPaymentMethods) || body.PaymentMethods[0].ID != domain.PaymentCard {
		t.Fatalf("unexpected methods %+v", body.PaymentMethods)
	}
}

func TestCheckout_CardFlow(t *testing.T) {
	sink := &captureSink{}
	router, _ := newTestRouter(t, sink, nil)
	view := startSession(t, router, `{"items":[{"productId":"sub-1","quantity":2,"unitPrice":"10.00"}],"currentUser":{"name":"Ann","email":"ann@example.com"}}`)
	if view.BuyerName != "Ann" || view.Flow != checkout.FlowStandard {
		t.Fatalf("unexpected view %+v", view)
	}
	base := "/checkout/sessions/" + view.SessionID

	if rec := do(router, http.MethodPut, base+"/payment-method", `{"paymentMethodId":"card"}`); rec.Code != http.StatusOK {
		t.Fatalf("select: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec := do(router, http.MethodPost, base+"/submit", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without card, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"card.number"`) {
		t.Fatalf("expected card.number field error, got %s", rec.Body.String())
	}

	if rec := do(router, http.MethodPatch, base+"/draft", `{"card":{"number":"4242 4242 4242 4242","expiry":"11/28","cvc":"321"}}`); rec.Code != http.StatusOK {
		t.Fatalf("draft: expected 200, got %d", rec.Code)
	}

	rec = do(router, http.MethodPost, base+"/submit", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Order domain.Order `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order.Status != domain.OrderStatusPaid || !resp.Order.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected order %+v", resp.Order)
	}
	if len(sink.orders) != 1 {
		t.Fatalf("expected one placed order, got %d", len(sink.orders))
	}

	if rec := do(router, http.MethodPost, base+"/submit", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 after completion, got %d", rec.Code)
	}
}

func TestCheckout_RedirectFlow(t *testing.T) {
	sink := &captureSink{}
	router, svc := newTestRouter(t, sink, nil)
	view := startSession(t, router, `{"items":[{"productId":"topup","quantity":1,"unitPrice":"5"}],"currentUser":{"name":"Bo","email":"bo@example.com"}}`)
	base := "/checkout/sessions/" + view.SessionID
	do(router, http.MethodPut, base+"/payment-method", `{"paymentMethodId":"paypal"}`)

	rec := do(router, http.MethodPost, base+"/submit", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := do(router, http.MethodPost, base+"/submit", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while redirecting, got %d", rec.Code)
	}

	sess, err := svc.Get(view.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := sess.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}

	rec = do(router, http.MethodGet, base, "")
	if !strings.Contains(rec.Body.String(), `"state":"completed"`) {
		t.Fatalf("expected completed session, got %s", rec.Body.String())
	}
	if len(sink.orders) != 1 || sink.orders[0].PaymentMethod != domain.PaymentPayPal {
		t.Fatalf("unexpected orders %+v", sink.orders)
	}
}

func TestCheckout_SubmitAndWait(t *testing.T) {
	router, _ := newTestRouter(t, &captureSink{}, nil)
	view := startSession(t, router, `{"items":[{"productId":"p","quantity":1,"unitPrice":"1.25"}],"currentUser":{"name":"Cy","email":"cy@example.com"}}`)
	base := "/checkout/sessions/" + view.SessionID
	do(router, http.MethodPut, base+"/payment-method", `{"paymentMethodId":"cryptoPay"}`)

	rec := do(router, http.MethodPost, base+"/submit?wait=true", "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after waiting, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"paymentMethod":"cryptoPay"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCheckout_AbandonWhileRedirecting(t *testing.T) {
	sink := &captureSink{}
	router, _ := newTestRouter(t, sink, nil)
	view := startSession(t, router, `{"items":[{"productId":"p","quantity":1,"unitPrice":"1"}],"currentUser":{"name":"Di","email":"di@example.com"}}`)
	base := "/checkout/sessions/" + view.SessionID
	do(router, http.MethodPut, base+"/payment-method", `{"paymentMethodId":"stripeLike"}`)
	do(router, http.MethodPost, base+"/submit", "")

	rec := do(router, http.MethodDelete, base, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"exit":"store"`) {
		t.Fatalf("unexpected abandon response %d %s", rec.Code, rec.Body.String())
	}
	time.Sleep(100 * time.Millisecond)

	if len(sink.orders) != 0 {
		t.Fatalf("expected no orders after abandon, got %d", len(sink.orders))
	}
	if rec := do(router, http.MethodGet, base, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after abandon, got %d", rec.Code)
	}
}

func TestCheckout_MarketplaceFlow(t *testing.T) {
	router, _ := newTestRouter(t, &captureSink{}, nil)
	view := startSession(t, router, `{"items":[{"productId":"ali","quantity":1,"unitPrice":"5.50","metadata":{"customOrderType":"aliexpress"}}]}`)
	base := "/checkout/sessions/" + view.SessionID
	if view.Flow != checkout.FlowMarketplaceRequest || len(view.Methods) != 0 {
		t.Fatalf("unexpected view %+v", view)
	}

	if rec := do(router, http.MethodPut, base+"/payment-method", `{"paymentMethodId":"card"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 selecting in marketplace flow, got %d", rec.Code)
	}
	do(router, http.MethodPatch, base+"/draft", `{"buyerName":"Ed","buyerEmail":"ed@example.com","shipping":{"phoneNumber":"55512345","address":"1 Main","city":"Riyadh","postalCode":"11564"}}`)

	rec := do(router, http.MethodPost, base+"/submit", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"paymentMethod":"aliexpress_request"`) || !strings.Contains(body, `"status":"AwaitingPayment"`) {
		t.Fatalf("unexpected order %s", body)
	}
}

func TestCheckout_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t, &captureSink{}, nil)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"empty cart", http.MethodPost, "/checkout/sessions", `{"items":[]}`, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, "/checkout/sessions", `{"items":[{"productId":"p","quantity":0,"unitPrice":"1"}]}`, http.StatusBadRequest},
		{"negative price", http.MethodPost, "/checkout/sessions", `{"items":[{"productId":"p","quantity":1,"unitPrice":"-1"}]}`, http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/checkout/sessions/missing", "", http.StatusNotFound},
		{"unknown abandon", http.MethodDelete, "/checkout/sessions/missing", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := do(router, tc.method, tc.path, tc.body); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetOrder(t *testing.T) {
	o := &domain.Order{ID: "ord-1", Status: domain.OrderStatusPaid, Total: decimal.NewFromInt(3)}
	router, _ := newTestRouter(t, &captureSink{}, &stubOrders{order: o})

	rec := do(router, http.MethodGet, "/orders/ord-1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"ord-1"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	router, _ = newTestRouter(t, &captureSink{}, &stubOrders{err: domain.ErrNotFound})
	if rec := do(router, http.MethodGet, "/orders/ord-2", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	router, _ = newTestRouter(t, &captureSink{}, &stubOrders{err: errors.New("boom")})
	if rec := do(router, http.MethodGet, "/orders/ord-3", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.NewCheckoutMetrics(reg)
	provider := stubSettings{settings: testSettings()}
	svc := checkout.New(provider, &captureSink{}, logDiscard(), checkout.WithRecorder(m))
	t.Cleanup(svc.Close)
	router, err := buildRouter(logDiscard(), nil, Deps{
		Checkout:       svc,
		Settings:       provider,
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	do(router, http.MethodGet, "/healthz", "")
	rec := do(router, http.MethodGet, "/metrics", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `storefront_http_requests_total{handler="/healthz",status="200"} 1`) {
		t.Fatalf("expected request counter, got %s", rec.Body.String())
	}
}
