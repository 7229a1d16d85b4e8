package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"storefront-checkout/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server serves the checkout API. Shutdown drains HTTP first and then closes
// the checkout registry, which cancels redirects that are still pending.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	checkout   CheckoutService
}

// New builds a Server with the checkout routes, traced through otelhttp.
func New(addr string, logger *log.Logger, db *pgxpool.Pool, deps Deps) (*Server, error) {
	router, err := buildRouter(logger, db, deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           otelhttp.NewHandler(router, "storefront-checkout"),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger:   logger,
		checkout: deps.Checkout,
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	open := s.checkout.Len()
	s.checkout.Close()
	s.logger.Printf("checkout: closed %d open sessions", open)
	return err
}

// healthHandler reports liveness and how many checkout sessions are open.
func healthHandler(checkouts CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": checkouts.Len()})
	}
}

// readyHandler requires the order database and a loadable settings snapshot;
// without either a checkout cannot start or place orders.
func readyHandler(db *pgxpool.Pool, settings checkout.SettingsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		checks := gin.H{"db": "ok", "settings": "ok"}
		ready := true
		switch {
		case db == nil:
			checks["db"] = "not configured"
			ready = false
		case db.Ping(ctx) != nil:
			checks["db"] = "not reachable"
			ready = false
		}
		if _, err := settings.Snapshot(ctx); err != nil {
			checks["settings"] = "unavailable"
			ready = false
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
	}
}
