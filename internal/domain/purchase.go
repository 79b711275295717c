package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a committed sale. It owns its items; deleting a purchase
// cascades to them.
type Purchase struct {
	ID            uuid.UUID       `json:"id"`
	CustomerEmail string          `json:"customerEmail"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	CreatedAt     time.Time       `json:"createdAt"`
	Items         []PurchaseItem  `json:"items"`
}

// PurchaseItem is one cart line of a purchase. Unit price and tax rate are
// snapshotted at purchase time so later catalog edits cannot rewrite
// historical totals.
type PurchaseItem struct {
	ID             uuid.UUID       `json:"id"`
	PurchaseID     uuid.UUID       `json:"-"`
	ProductID      uuid.UUID       `json:"productId"`
	ProductCode    string          `json:"productCode"`
	ProductName    string          `json:"productName"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TaxRatePercent decimal.Decimal `json:"taxRatePercent"`
}

var oneHundred = decimal.NewFromInt(100)

// LineTotal returns the tax-inclusive price of the line:
// unitPrice * quantity * (1 + taxRatePercent/100), computed in exact decimal
// arithmetic.
func (i PurchaseItem) LineTotal() decimal.Decimal {
	base := i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
	return base.Add(base.Mul(i.TaxRatePercent).Div(oneHundred))
}

// Total sums the tax-inclusive line totals. It is always recomputed from the
// items and never stored.
func (p Purchase) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}
