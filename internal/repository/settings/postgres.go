package settings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"storefront-checkout/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by the merchant_settings table.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, key string) (*domain.Settings, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT document FROM merchant_settings WHERE key = $1`, key).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("settings repo: get key=%s error=%v", key, err)
		return nil, err
	}
	var s domain.Settings
	if err := json.Unmarshal(doc, &s); err != nil {
		r.logger.Printf("settings repo: decode key=%s err=%v", key, err)
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, key string, s domain.Settings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO merchant_settings (key, document, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
SET document = EXCLUDED.document,
    updated_at = now()
`
	if _, err := r.pool.Exec(ctx, q, key, doc); err != nil {
		r.logger.Printf("settings repo: upsert key=%s error=%v", key, err)
		return err
	}
	return nil
}
