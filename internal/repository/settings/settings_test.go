package settings

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE merchant_settings`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	repo := NewPostgres(pool, nil)
	if _, err := repo.Get(ctx, "shop"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s := domain.DefaultSettings("SAR", "ar")
	s.BankTransfer.AccountName = domain.ToggleField{Enabled: true, Value: "Acme"}
	if err := repo.Upsert(ctx, "shop", s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	s.Currency = "USD"
	if err := repo.Upsert(ctx, "shop", s); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	got, err := repo.Get(ctx, "shop")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Currency != "USD" || got.Locale != "ar" || got.BankTransfer.AccountName.Value != "Acme" {
		t.Fatalf("unexpected settings %+v", got)
	}
	if len(got.Providers) != len(domain.CanonicalPaymentMethods) {
		t.Fatalf("expected %d providers, got %d", len(domain.CanonicalPaymentMethods), len(got.Providers))
	}
}
