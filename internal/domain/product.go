package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Stock is the number of units left in
// the shop; it never goes below zero and is only decremented by committed
// purchases.
type Product struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Stock          int64           `json:"stock"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TaxRatePercent decimal.Decimal `json:"taxRatePercent"`
	CreatedAt      time.Time       `json:"createdAt"`
}
