package history

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/domain"
)

// PurchaseReader is the read-side store contract for past purchases.
type PurchaseReader interface {
	PurchasesByEmail(ctx context.Context, email string) ([]domain.Purchase, error)
	PurchaseByID(ctx context.Context, id uuid.UUID) (domain.Purchase, error)
}

// Handler serves read-only purchase history lookups.
type Handler struct {
	Store PurchaseReader
}

type listEntry struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"createdAt"`
	PaidAmount string `json:"paidAmount"`
	Total      string `json:"total"`
	ItemCount  int    `json:"itemCount"`
}

type detailItem struct {
	ProductCode    string `json:"productCode"`
	ProductName    string `json:"productName"`
	Quantity       int64  `json:"quantity"`
	UnitPrice      string `json:"unitPrice"`
	TaxRatePercent string `json:"taxRatePercent"`
	LineTotal      string `json:"lineTotal"`
}

// List handles GET /api/v1/purchases?email=. An absent email yields an empty
// list rather than an error, matching the history form behavior.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "history store not configured", nil)
		return
	}
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		common.JSON(w, http.StatusOK, map[string]any{"data": []listEntry{}})
		return
	}
	purchases, err := h.Store.PurchasesByEmail(r.Context(), email)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list purchases", nil)
		return
	}
	entries := make([]listEntry, 0, len(purchases))
	for _, p := range purchases {
		entries = append(entries, listEntry{
			ID:         p.ID.String(),
			CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			PaidAmount: p.PaidAmount.String(),
			Total:      p.Total().String(),
			ItemCount:  len(p.Items),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// Get handles GET /api/v1/purchases/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "history store not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid purchase id", nil)
		return
	}
	p, err := h.Store.PurchaseByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPurchaseNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "purchase not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load purchase", nil)
		return
	}
	items := make([]detailItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, detailItem{
			ProductCode:    item.ProductCode,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice.String(),
			TaxRatePercent: item.TaxRatePercent.String(),
			LineTotal:      item.LineTotal().String(),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"id":            p.ID.String(),
		"customerEmail": p.CustomerEmail,
		"createdAt":     p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"paidAmount":    p.PaidAmount.String(),
		"total":         p.Total().String(),
		"items":         items,
	}})
}
