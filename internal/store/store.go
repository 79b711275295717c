package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/kasir-api/internal/domain"
)

// Tx exposes the record operations available inside a billing transaction.
// Implementations must hold row locks on every product and denomination read
// through it until the transaction ends, so concurrent submissions serialize
// instead of racing on stock or drawer counts.
type Tx interface {
	// ProductByCode resolves a product by its external code, locking the row.
	// Returns domain.ErrProductNotFound when absent.
	ProductByCode(ctx context.Context, code string) (domain.Product, error)
	// UpdateProductStock overwrites the stock counter of a product.
	UpdateProductStock(ctx context.Context, id uuid.UUID, stock int64) error
	// ListDenominations returns all denominations ordered by face value
	// descending, locking the rows.
	ListDenominations(ctx context.Context) ([]domain.Denomination, error)
	// UpdateDenominationCount overwrites the available count of a denomination.
	UpdateDenominationCount(ctx context.Context, faceValue, count int64) error
	// InsertPurchase persists the purchase header.
	InsertPurchase(ctx context.Context, p domain.Purchase) error
	// InsertPurchaseItem persists one line item; position preserves cart order.
	InsertPurchaseItem(ctx context.Context, item domain.PurchaseItem, position int) error
}

// Event is a persisted domain event row.
type Event struct {
	ID          uuid.UUID
	Topic       string
	AggregateID uuid.UUID
	Payload     []byte
	OccurredAt  time.Time
}

// Store is the transactional record store backing the billing engine and the
// read-side handlers. It is injected explicitly rather than held as a
// process-wide handle so tests can swap in the in-memory implementation.
type Store interface {
	// WithinTx runs fn inside a single transaction. A nil return commits,
	// any error rolls every write back. Storage-level conflicts and timeouts
	// surface as domain.ErrTransactionAborted.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListDenominations(ctx context.Context) ([]domain.Denomination, error)
	PurchasesByEmail(ctx context.Context, email string) ([]domain.Purchase, error)
	// PurchaseByID loads a purchase with its items in cart order. Returns
	// domain.ErrPurchaseNotFound when absent.
	PurchaseByID(ctx context.Context, id uuid.UUID) (domain.Purchase, error)

	// InsertDomainEvent appends an event outside any billing transaction.
	InsertDomainEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error)
}
