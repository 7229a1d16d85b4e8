package order

import (
	"context"

	"storefront-checkout/internal/domain"
)

// Repository persists placed orders.
type Repository interface {
	Create(ctx context.Context, o domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
