package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/domain"
	"github.com/noah-isme/kasir-api/internal/events"
	"github.com/noah-isme/kasir-api/internal/obs"
	"github.com/noah-isme/kasir-api/internal/store"
)

// Line is one product+quantity entry of the submitted cart.
type Line struct {
	ProductCode string `json:"productCode" validate:"required"`
	Quantity    int64  `json:"quantity"`
}

// SubmitInput is a purchase submission: the cart, the cash handed over, and
// the caller's snapshot of the drawer. DrawerCounts may omit face values,
// which leaves those denominations unchanged.
type SubmitInput struct {
	CustomerEmail string          `json:"customerEmail" validate:"required,email"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	Lines         []Line          `json:"lines" validate:"required,min=1,dive"`
	DrawerCounts  map[int64]int64 `json:"drawerCounts"`
}

// Result is the outcome of a committed purchase submission.
type Result struct {
	Purchase             domain.Purchase
	Total                decimal.Decimal
	Balance              decimal.Decimal
	Change               Change
	RemainingUndispensed decimal.Decimal
}

// Service is the billing engine. It validates a cart against the catalog,
// computes tax-inclusive totals, deducts stock, reconciles the till, and
// computes change, all inside one store transaction. Receipt notification
// happens after commit and is strictly best-effort.
type Service struct {
	Store    store.Store
	Events   *events.Bus
	Validate *validator.Validate
	Logger   zerolog.Logger
}

// Submit runs the purchase transaction. Cart validation failures abort the
// whole transaction with no partial effects. A change shortfall is not a
// failure; it is reported through Result.RemainingUndispensed.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Result, error) {
	if s == nil || s.Store == nil {
		return Result{}, errors.New("billing service not configured")
	}
	if err := s.validateInput(in); err != nil {
		return Result{}, err
	}

	var res Result
	err := s.Store.WithinTx(ctx, func(tx store.Tx) error {
		denominations, err := tx.ListDenominations(ctx)
		if err != nil {
			return fmt.Errorf("list denominations: %w", err)
		}
		// Drawer snapshot is full-replace and applied before change is
		// computed, so dispensing subtracts from the submitted counts.
		for i, d := range denominations {
			count, ok := in.DrawerCounts[d.FaceValue]
			if !ok {
				continue
			}
			denominations[i].AvailableCount = count
			if err := tx.UpdateDenominationCount(ctx, d.FaceValue, count); err != nil {
				return fmt.Errorf("update denomination %d: %w", d.FaceValue, err)
			}
		}

		purchase := domain.Purchase{
			ID:            uuid.New(),
			CustomerEmail: in.CustomerEmail,
			PaidAmount:    in.PaidAmount,
			CreatedAt:     time.Now().UTC(),
		}
		if err := tx.InsertPurchase(ctx, purchase); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		total := decimal.Zero
		for position, line := range in.Lines {
			product, err := tx.ProductByCode(ctx, line.ProductCode)
			if err != nil {
				return fmt.Errorf("line %d (%s): %w", position, line.ProductCode, err)
			}
			if line.Quantity <= 0 {
				return fmt.Errorf("line %d (%s): %w", position, line.ProductCode, domain.ErrInvalidQuantity)
			}
			if line.Quantity > product.Stock {
				return fmt.Errorf("line %d (%s): %w", position, line.ProductCode, domain.ErrInsufficientStock)
			}
			item := domain.PurchaseItem{
				ID:             uuid.New(),
				PurchaseID:     purchase.ID,
				ProductID:      product.ID,
				ProductCode:    product.Code,
				ProductName:    product.Name,
				Quantity:       line.Quantity,
				UnitPrice:      product.UnitPrice,
				TaxRatePercent: product.TaxRatePercent,
			}
			if err := tx.InsertPurchaseItem(ctx, item, position); err != nil {
				return fmt.Errorf("insert item %d: %w", position, err)
			}
			if err := tx.UpdateProductStock(ctx, product.ID, product.Stock-line.Quantity); err != nil {
				return fmt.Errorf("update stock %s: %w", product.Code, err)
			}
			purchase.Items = append(purchase.Items, item)
			total = total.Add(item.LineTotal())
		}

		balance := in.PaidAmount.Sub(total)
		if balance.IsNegative() {
			return fmt.Errorf("paid %s below total %s: %w", in.PaidAmount, total, domain.ErrInsufficientPayment)
		}

		change, undispensed := MakeChange(balance, denominations)
		for _, d := range denominations {
			used, ok := change[d.FaceValue]
			if !ok {
				continue
			}
			if err := tx.UpdateDenominationCount(ctx, d.FaceValue, d.AvailableCount-used); err != nil {
				return fmt.Errorf("dispense denomination %d: %w", d.FaceValue, err)
			}
		}

		res = Result{
			Purchase:             purchase,
			Total:                total,
			Balance:              balance,
			Change:               change,
			RemainingUndispensed: undispensed,
		}
		return nil
	})
	if err != nil {
		obs.ObservePurchase("rejected")
		return Result{}, err
	}

	obs.ObservePurchase("committed")
	if res.RemainingUndispensed.Sign() > 0 {
		obs.ObserveChangeShortfall()
		s.Logger.Warn().
			Str("purchase_id", res.Purchase.ID.String()).
			Str("undispensed", res.RemainingUndispensed.String()).
			Msg("change shortfall")
	}

	s.notify(ctx, res)
	return res, nil
}

// notify hands the receipt to the event bus. Failures are logged and dropped;
// the purchase is already durably committed.
func (s *Service) notify(ctx context.Context, res Result) {
	if s.Events == nil {
		return
	}
	payload := map[string]any{
		"purchaseId":    res.Purchase.ID.String(),
		"customerEmail": res.Purchase.CustomerEmail,
		"total":         res.Total.String(),
	}
	if _, err := s.Events.Emit(ctx, events.TopicPurchaseCompleted, res.Purchase.ID, payload); err != nil {
		s.Logger.Error().Err(err).
			Str("purchase_id", res.Purchase.ID.String()).
			Msg("emit purchase event")
	}
}

func (s *Service) validateInput(in SubmitInput) error {
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return common.NewAppError("BAD_REQUEST", "invalid submission", http.StatusBadRequest, err)
		}
	}
	if in.PaidAmount.IsNegative() {
		return common.NewAppError("BAD_REQUEST", "paidAmount must be non-negative", http.StatusBadRequest, nil)
	}
	for face, count := range in.DrawerCounts {
		if face <= 0 || count < 0 {
			return common.NewAppError("BAD_REQUEST", "drawer counts must be non-negative", http.StatusBadRequest, nil)
		}
	}
	return nil
}
