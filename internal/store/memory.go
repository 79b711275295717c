package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/kasir-api/internal/domain"
)

// Memory is an in-memory Store used by tests and local tooling. Transactions
// take the store-wide mutex for their whole duration, which gives the same
// serialization guarantee the postgres implementation gets from row locks.
type Memory struct {
	mu            sync.Mutex
	products      map[string]domain.Product
	denominations map[int64]int64
	purchases     map[uuid.UUID]domain.Purchase
	events        []Event
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		products:      make(map[string]domain.Product),
		denominations: make(map[int64]int64),
		purchases:     make(map[uuid.UUID]domain.Purchase),
	}
}

// SeedProduct inserts or replaces a product.
func (m *Memory) SeedProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.products[p.Code] = p
}

// SeedDenomination inserts or replaces a denomination.
func (m *Memory) SeedDenomination(faceValue, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denominations[faceValue] = count
}

func (m *Memory) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTxn{
		products:      make(map[string]domain.Product, len(m.products)),
		denominations: make(map[int64]int64, len(m.denominations)),
	}
	for code, p := range m.products {
		tx.products[code] = p
	}
	for face, count := range m.denominations {
		tx.denominations[face] = count
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.products = tx.products
	m.denominations = tx.denominations
	for _, p := range tx.purchases {
		m.purchases[p.ID] = p
	}
	return nil
}

type memTxn struct {
	products      map[string]domain.Product
	denominations map[int64]int64
	purchases     []domain.Purchase
}

func (t *memTxn) ProductByCode(_ context.Context, code string) (domain.Product, error) {
	p, ok := t.products[code]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (t *memTxn) UpdateProductStock(_ context.Context, id uuid.UUID, stock int64) error {
	for code, p := range t.products {
		if p.ID == id {
			p.Stock = stock
			t.products[code] = p
			return nil
		}
	}
	return domain.ErrProductNotFound
}

func (t *memTxn) ListDenominations(_ context.Context) ([]domain.Denomination, error) {
	return denominationsDesc(t.denominations), nil
}

func (t *memTxn) UpdateDenominationCount(_ context.Context, faceValue, count int64) error {
	t.denominations[faceValue] = count
	return nil
}

func (t *memTxn) InsertPurchase(_ context.Context, p domain.Purchase) error {
	p.Items = nil
	t.purchases = append(t.purchases, p)
	return nil
}

func (t *memTxn) InsertPurchaseItem(_ context.Context, item domain.PurchaseItem, _ int) error {
	for i := range t.purchases {
		if t.purchases[i].ID == item.PurchaseID {
			t.purchases[i].Items = append(t.purchases[i].Items, item)
			return nil
		}
	}
	return domain.ErrPurchaseNotFound
}

func (m *Memory) ListProducts(_ context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *Memory) ListDenominations(_ context.Context) ([]domain.Denomination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return denominationsDesc(m.denominations), nil
}

func (m *Memory) PurchasesByEmail(_ context.Context, email string) ([]domain.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Purchase
	for _, p := range m.purchases {
		if p.CustomerEmail == email {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) PurchaseByID(_ context.Context, id uuid.UUID) (domain.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.purchases[id]
	if !ok {
		return domain.Purchase{}, domain.ErrPurchaseNotFound
	}
	return p, nil
}

func (m *Memory) InsertDomainEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     append([]byte(nil), payload...),
		OccurredAt:  time.Now(),
	}
	m.events = append(m.events, ev)
	return ev, nil
}

// Events returns a copy of the recorded domain events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func denominationsDesc(counts map[int64]int64) []domain.Denomination {
	result := make([]domain.Denomination, 0, len(counts))
	for face, count := range counts {
		result = append(result, domain.Denomination{FaceValue: face, AvailableCount: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FaceValue > result[j].FaceValue })
	return result
}
