package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-checkout/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DemoSettings is the merchant configuration used for manual testing.
func DemoSettings(currency, locale string) domain.Settings {
	s := domain.DefaultSettings(currency, locale)
	s.BankTransfer = domain.BankTransferSettings{
		AccountName:   domain.ToggleField{Enabled: true, Value: "Demo Store LLC"},
		AccountNumber: domain.ToggleField{Enabled: true, Value: "SA44 2000 0001 2345 6789 1234"},
		BankName:      domain.ToggleField{Enabled: true, Value: "Demo Bank"},
		Contact:       domain.ToggleField{Enabled: true, Value: "payments@demo.example"},
	}
	s.MarketplaceRequestNote = "Marketplace requests are fulfilled manually. We will contact you with a quote."
	return s
}

// Apply inserts demo merchant settings under key. It leaves an existing document untouched.
func Apply(ctx context.Context, pool *pgxpool.Pool, key string, s domain.Settings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	const q = `
INSERT INTO merchant_settings (key, document)
VALUES ($1, $2)
ON CONFLICT (key) DO NOTHING
`
	if _, err := pool.Exec(ctx, q, key, doc); err != nil {
		return fmt.Errorf("insert settings %s: %w", key, err)
	}
	return nil
}
