package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"storefront-checkout/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	var shipJSON []byte
	if o.ShippingDetails != nil {
		var err error
		if shipJSON, err = json.Marshal(o.ShippingDetails); err != nil {
			return err
		}
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO orders (id, currency, total, customer_name, customer_email, payment_method, status, shipping_details, placed_at)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9)
`, o.ID, o.Currency, o.Total.StringFixed(2), o.CustomerName, o.CustomerEmail, string(o.PaymentMethod), string(o.Status), shipJSON, o.Date); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: insert order_id=%s error=%v", o.ID, err)
		return err
	}

	batch := &pgx.Batch{}
	for i, item := range o.Items {
		var metaJSON []byte
		if item.Metadata != nil {
			if metaJSON, err = json.Marshal(item.Metadata); err != nil {
				return err
			}
		}
		batch.Queue(`
INSERT INTO order_lines (order_id, position, product_id, variant_id, quantity, unit_price, name_key, variant_name_key, logo_url, metadata)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10)
`, o.ID, i, item.ProductID, item.VariantID, item.Quantity, item.UnitPrice.String(), item.NameKey, item.VariantNameKey, item.LogoURL, metaJSON)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.logger.Printf("order repo: insert lines order_id=%s error=%v", o.ID, err)
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, currency, total::text, customer_name, customer_email, payment_method, status, shipping_details, placed_at
FROM orders
WHERE id = $1
`
	var (
		o        domain.Order
		total    string
		method   string
		status   string
		shipJSON []byte
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.Currency, &total, &o.CustomerName, &o.CustomerEmail, &method, &status, &shipJSON, &o.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get order_id=%s error=%v", id, err)
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	o.PaymentMethod = domain.PaymentMethodID(method)
	o.Status = domain.OrderStatus(status)
	if len(shipJSON) > 0 {
		o.ShippingDetails = &domain.ShippingDetails{}
		if err := json.Unmarshal(shipJSON, o.ShippingDetails); err != nil {
			r.logger.Printf("order repo: decode shipping order_id=%s err=%v", id, err)
			return nil, err
		}
	}

	items, err := r.lines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *postgresRepo) lines(ctx context.Context, orderID string) ([]domain.CartItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT product_id, variant_id, quantity, unit_price::text, name_key, variant_name_key, logo_url, metadata
FROM order_lines
WHERE order_id = $1
ORDER BY position
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			item     domain.CartItem
			price    string
			metaJSON []byte
		)
		if err := rows.Scan(&item.ProductID, &item.VariantID, &item.Quantity, &price, &item.NameKey, &item.VariantNameKey, &item.LogoURL, &metaJSON); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			item.Metadata = &domain.CartItemMetadata{}
			if err := json.Unmarshal(metaJSON, item.Metadata); err != nil {
				r.logger.Printf("order repo: decode metadata order_id=%s err=%v", orderID, err)
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
