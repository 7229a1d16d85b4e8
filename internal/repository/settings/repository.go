package settings

import (
	"context"

	"storefront-checkout/internal/domain"
)

// Repository stores merchant settings documents by key.
type Repository interface {
	Get(ctx context.Context, key string) (*domain.Settings, error)
	Upsert(ctx context.Context, key string, s domain.Settings) error
}
