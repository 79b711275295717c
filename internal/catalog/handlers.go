package catalog

import (
	"context"
	"net/http"

	"github.com/noah-isme/kasir-api/internal/cache"
	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/domain"
)

// Reader is the read-side store contract for catalog and till listings.
type Reader interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListDenominations(ctx context.Context) ([]domain.Denomination, error)
}

// Handler serves read-only catalog and till endpoints. Cache is optional;
// when set, product listings are served from it on a short TTL.
type Handler struct {
	Store Reader
	Cache *cache.Cache
}

type productEntry struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Stock          int64  `json:"stock"`
	UnitPrice      string `json:"unitPrice"`
	TaxRatePercent string `json:"taxRatePercent"`
}

// Products handles GET /api/v1/products.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return
	}
	var cached []productEntry
	if hit, err := h.Cache.GetJSON(r.Context(), cache.KeyProductList, &cached); err == nil && hit {
		common.JSON(w, http.StatusOK, map[string]any{"data": cached})
		return
	}

	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list products", nil)
		return
	}
	entries := make([]productEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, productEntry{
			ID:             p.ID.String(),
			Code:           p.Code,
			Name:           p.Name,
			Stock:          p.Stock,
			UnitPrice:      p.UnitPrice.String(),
			TaxRatePercent: p.TaxRatePercent.String(),
		})
	}
	_ = h.Cache.SetJSON(r.Context(), cache.KeyProductList, entries)
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// Till handles GET /api/v1/till, listing denominations by face value desc.
func (h *Handler) Till(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "till store not configured", nil)
		return
	}
	denominations, err := h.Store.ListDenominations(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list denominations", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": denominations})
}
