package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront-checkout/internal/cache"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/db"
	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/importer"
	settingsrepo "storefront-checkout/internal/repository/settings"
	settingssvc "storefront-checkout/internal/service/settings"

	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		filePath string
		key      string
	)
	flag.StringVar(&filePath, "file", "", "Path to payment settings CSV")
	flag.StringVar(&key, "key", "", "Merchant settings key (defaults to SETTINGS_KEY)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if key == "" {
		key = cfg.SettingsKey
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, db.Options{ApplicationName: "storefront-checkout-importer"})
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	repo := settingsrepo.NewPostgres(pool, nil)
	base, err := repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Fatalf("load settings %q: %v", key, err)
		}
		defaults := domain.DefaultSettings(cfg.DefaultCurrency, cfg.DefaultLocale)
		base = &defaults
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	var settingsCache cache.SettingsCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		settingsCache = cache.NewRedisCache(client, cfg.SettingsTTL)
	}

	imp := importer.NewCSVImporter(f, settingssvc.New(key, repo, settingsCache, settingssvc.Defaults{}, nil), *base)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Applied %d settings rows to %s in %s\n", count, key, time.Since(start).Truncate(time.Millisecond))
}
