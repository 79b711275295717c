package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/kasir-api/internal/domain"
)

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs the postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// WithinTx runs fn inside a repeatable-read transaction. Serialization
// failures and deadlocks map to domain.ErrTransactionAborted so callers can
// retry.
func (s *Postgres) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	pgTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = pgTx.Rollback(ctx)
	}()
	if err := fn(&pgTxn{tx: pgTx}); err != nil {
		return mapTxError(err)
	}
	if err := pgTx.Commit(ctx); err != nil {
		return mapTxError(err)
	}
	return nil
}

func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s", domain.ErrTransactionAborted, pgErr.Code)
		}
	}
	return err
}

type pgTxn struct {
	tx pgx.Tx
}

func (t *pgTxn) ProductByCode(ctx context.Context, code string) (domain.Product, error) {
	const q = `
SELECT id::text, code, name, stock, unit_price::text, tax_rate_percent::text, created_at
FROM products
WHERE code = $1
FOR UPDATE
`
	p, err := scanProduct(t.tx.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (t *pgTxn) UpdateProductStock(ctx context.Context, id uuid.UUID, stock int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock = $2 WHERE id = $1`, id.String(), stock)
	return err
}

func (t *pgTxn) ListDenominations(ctx context.Context) ([]domain.Denomination, error) {
	const q = `
SELECT face_value, available_count
FROM denominations
ORDER BY face_value DESC
FOR UPDATE
`
	rows, err := t.tx.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDenominations(rows)
}

func (t *pgTxn) UpdateDenominationCount(ctx context.Context, faceValue, count int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE denominations SET available_count = $2 WHERE face_value = $1`, faceValue, count)
	return err
}

func (t *pgTxn) InsertPurchase(ctx context.Context, p domain.Purchase) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO purchases (id, customer_email, paid_amount, created_at)
VALUES ($1, $2, $3, $4)`,
		p.ID.String(), p.CustomerEmail, p.PaidAmount.String(), p.CreatedAt)
	return err
}

func (t *pgTxn) InsertPurchaseItem(ctx context.Context, item domain.PurchaseItem, position int) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO purchase_items (id, purchase_id, product_id, product_code, product_name, qty, unit_price, tax_rate_percent, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID.String(), item.PurchaseID.String(), item.ProductID.String(),
		item.ProductCode, item.ProductName, item.Quantity,
		item.UnitPrice.String(), item.TaxRatePercent.String(), position)
	return err
}

func (s *Postgres) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id::text, code, name, stock, unit_price::text, tax_rate_percent::text, created_at
FROM products
ORDER BY code
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Postgres) ListDenominations(ctx context.Context) ([]domain.Denomination, error) {
	rows, err := s.pool.Query(ctx, `
SELECT face_value, available_count FROM denominations ORDER BY face_value DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDenominations(rows)
}

func (s *Postgres) PurchasesByEmail(ctx context.Context, email string) ([]domain.Purchase, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id::text, customer_email, paid_amount::text, created_at
FROM purchases
WHERE customer_email = $1
ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range purchases {
		items, err := s.itemsByPurchase(ctx, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Items = items
	}
	return purchases, nil
}

func (s *Postgres) PurchaseByID(ctx context.Context, id uuid.UUID) (domain.Purchase, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id::text, customer_email, paid_amount::text, created_at
FROM purchases
WHERE id = $1`, id.String())
	p, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Purchase{}, domain.ErrPurchaseNotFound
		}
		return domain.Purchase{}, err
	}
	items, err := s.itemsByPurchase(ctx, p.ID)
	if err != nil {
		return domain.Purchase{}, err
	}
	p.Items = items
	return p, nil
}

func (s *Postgres) itemsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]domain.PurchaseItem, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id::text, purchase_id::text, product_id::text, product_code, product_name, qty, unit_price::text, tax_rate_percent::text
FROM purchase_items
WHERE purchase_id = $1
ORDER BY position`, purchaseID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PurchaseItem
	for rows.Next() {
		var (
			item                      domain.PurchaseItem
			idText, pIDText, prIDText string
			unitPrice, taxRate        string
		)
		if err := rows.Scan(&idText, &pIDText, &prIDText, &item.ProductCode, &item.ProductName, &item.Quantity, &unitPrice, &taxRate); err != nil {
			return nil, err
		}
		if item.ID, err = uuid.Parse(idText); err != nil {
			return nil, err
		}
		if item.PurchaseID, err = uuid.Parse(pIDText); err != nil {
			return nil, err
		}
		if item.ProductID, err = uuid.Parse(prIDText); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, err
		}
		if item.TaxRatePercent, err = decimal.NewFromString(taxRate); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Postgres) InsertDomainEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	row := s.pool.QueryRow(ctx, `
INSERT INTO domain_events (topic, aggregate_id, payload)
VALUES ($1, $2, $3)
RETURNING id::text, topic, aggregate_id::text, payload, occurred_at`,
		topic, aggregateID.String(), payload)

	var (
		ev              Event
		idText, aggText string
	)
	if err := row.Scan(&idText, &ev.Topic, &aggText, &ev.Payload, &ev.OccurredAt); err != nil {
		return Event{}, err
	}
	var err error
	if ev.ID, err = uuid.Parse(idText); err != nil {
		return Event{}, err
	}
	if ev.AggregateID, err = uuid.Parse(aggText); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p                  domain.Product
		idText             string
		unitPrice, taxRate string
	)
	if err := row.Scan(&idText, &p.Code, &p.Name, &p.Stock, &unitPrice, &taxRate, &p.CreatedAt); err != nil {
		return domain.Product{}, err
	}
	var err error
	if p.ID, err = uuid.Parse(idText); err != nil {
		return domain.Product{}, err
	}
	if p.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return domain.Product{}, err
	}
	if p.TaxRatePercent, err = decimal.NewFromString(taxRate); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func scanPurchase(row pgx.Row) (domain.Purchase, error) {
	var (
		p      domain.Purchase
		idText string
		paid   string
	)
	if err := row.Scan(&idText, &p.CustomerEmail, &paid, &p.CreatedAt); err != nil {
		return domain.Purchase{}, err
	}
	var err error
	if p.ID, err = uuid.Parse(idText); err != nil {
		return domain.Purchase{}, err
	}
	if p.PaidAmount, err = decimal.NewFromString(paid); err != nil {
		return domain.Purchase{}, err
	}
	return p, nil
}

func collectDenominations(rows pgx.Rows) ([]domain.Denomination, error) {
	var result []domain.Denomination
	for rows.Next() {
		var d domain.Denomination
		if err := rows.Scan(&d.FaceValue, &d.AvailableCount); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
