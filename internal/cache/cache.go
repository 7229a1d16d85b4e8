package cache

import (
	"context"
	"errors"

	"storefront-checkout/internal/domain"
)

// SettingsCache keeps merchant settings snapshots close to the API.
type SettingsCache interface {
	Get(ctx context.Context, key string) (*domain.Settings, error)
	Set(ctx context.Context, key string, s domain.Settings) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")
