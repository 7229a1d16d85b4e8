package metrics

import (
	"net/http"

	"storefront-checkout/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics counts checkout outcomes. It satisfies checkout.Recorder.
type CheckoutMetrics struct {
	Rejected  *prometheus.CounterVec
	Redirects *prometheus.CounterVec
	Cancelled *prometheus.CounterVec
	Placed    *prometheus.CounterVec
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	EventFailures prometheus.Counter
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "checkout",
			Name:      "submissions_rejected_total",
			Help:      "Submissions that did not produce an order, by reason.",
		}, []string{"reason"}),
		Redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "checkout",
			Name:      "redirects_started_total",
			Help:      "Redirect hand-offs started, by payment method.",
		}, []string{"method"}),
		Cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "checkout",
			Name:      "redirects_cancelled_total",
			Help:      "Redirect hand-offs cancelled before completion, by payment method.",
		}, []string{"method"}),
		Placed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "checkout",
			Name:      "orders_placed_total",
			Help:      "Orders placed, by payment method and status.",
		}, []string{"method", "status"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		EventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Order events that could not be published after the order was stored.",
		}),
	}
	reg.MustRegister(m.Rejected, m.Redirects, m.Cancelled, m.Placed, m.Requests, m.LatencyMS, m.EventFailures)
	return m
}

func (m *CheckoutMetrics) SubmissionRejected(reason string) {
	m.Rejected.WithLabelValues(reason).Inc()
}

func (m *CheckoutMetrics) RedirectStarted(method domain.PaymentMethodID) {
	m.Redirects.WithLabelValues(string(method)).Inc()
}

func (m *CheckoutMetrics) RedirectCancelled(method domain.PaymentMethodID) {
	m.Cancelled.WithLabelValues(string(method)).Inc()
}

func (m *CheckoutMetrics) OrderPlaced(method domain.PaymentMethodID, status domain.OrderStatus) {
	m.Placed.WithLabelValues(string(method), string(status)).Inc()
}

func (m *CheckoutMetrics) EventPublishFailed() {
	m.EventFailures.Inc()
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
