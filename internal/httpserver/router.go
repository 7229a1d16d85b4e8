package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/metrics"
	"storefront-checkout/internal/service/checkout"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutService is the session registry behind the checkout routes.
type CheckoutService interface {
	Start(ctx context.Context, items []domain.CartItem, currentUser *domain.CurrentUser) (*checkout.Session, error)
	Get(id string) (*checkout.Session, error)
	Abandon(id string) error
	Len() int
	Close()
}

// OrderReader loads placed orders.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

// Deps are the services the router exposes.
type Deps struct {
	Checkout       CheckoutService
	Settings       checkout.SettingsProvider
	Orders         OrderReader
	Metrics        *metrics.CheckoutMetrics
	MetricsHandler http.Handler
	AllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Checkout == nil {
		return nil, errors.New("checkout service is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("settings provider is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
	}

	router.GET("/healthz", healthHandler(deps.Checkout))
	router.GET("/readyz", readyHandler(db, deps.Settings))
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	h := &checkoutHandler{svc: deps.Checkout, settings: deps.Settings, logger: logger}
	router.GET("/payment-methods", h.paymentMethods)

	sessions := router.Group("/checkout/sessions")
	sessions.POST("", h.start)
	sessions.GET("/:id", h.view)
	sessions.PATCH("/:id/draft", h.updateDraft)
	sessions.PUT("/:id/payment-method", h.selectPaymentMethod)
	sessions.POST("/:id/submit", h.submit)
	sessions.DELETE("/:id", h.abandon)

	if deps.Orders != nil {
		router.GET("/orders/:id", orderHandler(deps.Orders, logger))
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func metricsMiddleware(m *metrics.CheckoutMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}
