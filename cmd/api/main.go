package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-checkout/internal/cache"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/db"
	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/events"
	"storefront-checkout/internal/httpserver"
	"storefront-checkout/internal/metrics"
	orderrepo "storefront-checkout/internal/repository/order"
	settingsrepo "storefront-checkout/internal/repository/settings"
	"storefront-checkout/internal/service/checkout"
	settingssvc "storefront-checkout/internal/service/settings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.Options{ApplicationName: "storefront-checkout-api", PingAttempts: 5})
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var settingsCache cache.SettingsCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		settingsCache = cache.NewRedisCache(client, cfg.SettingsTTL)
	} else {
		logger.Printf("REDIS_ADDR not set, settings cache disabled")
	}

	settingsService := settingssvc.New(cfg.SettingsKey, settingsrepo.NewPostgres(dbpool, logger), settingsCache, settingssvc.Defaults{
		Currency:      cfg.DefaultCurrency,
		Locale:        cfg.DefaultLocale,
		RedirectDelay: cfg.RedirectDelay,
	}, logger)

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	sinks := checkout.MultiSink{checkout.Durable(orderRepo.Create)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(events.NewWriter(cfg.KafkaBrokers, cfg.OrdersTopic), logger)
		defer publisher.Close()
		sinks = append(sinks, checkout.BestEffort{
			Sink: publisher,
			OnError: func(o domain.Order, err error) {
				logger.Printf("order event not published order_id=%s error=%v", o.ID, err)
				checkoutMetrics.EventPublishFailed()
			},
		})
	} else {
		logger.Printf("KAFKA_BROKERS not set, order events disabled")
	}

	checkoutService := checkout.New(settingsService, sinks, logger,
		checkout.WithRecorder(checkoutMetrics),
		checkout.WithSessionTTL(cfg.SessionTTL),
	)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go checkoutService.RunSweeper(sweepCtx, time.Minute)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Checkout:       checkoutService,
		Settings:       settingsService,
		Orders:         orderRepo,
		Metrics:        checkoutMetrics,
		MetricsHandler: metrics.Handler(prometheus.DefaultGatherer),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
