package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/catalog"
	"github.com/noah-isme/kasir-api/internal/domain"
	"github.com/noah-isme/kasir-api/internal/store"
)

func TestProductsListing(t *testing.T) {
	st := store.NewMemory()
	st.SeedProduct(domain.Product{Code: "PEN001", Name: "Pen", Stock: 100, UnitPrice: decimal.RequireFromString("10.00"), TaxRatePercent: decimal.NewFromInt(5)})
	st.SeedProduct(domain.Product{Code: "NOTE001", Name: "Notebook", Stock: 50, UnitPrice: decimal.RequireFromString("40.00"), TaxRatePercent: decimal.NewFromInt(12)})
	h := &catalog.Handler{Store: st}

	rec := httptest.NewRecorder()
	h.Products(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			Code           string `json:"code"`
			Name           string `json:"name"`
			Stock          int64  `json:"stock"`
			UnitPrice      string `json:"unitPrice"`
			TaxRatePercent string `json:"taxRatePercent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	// sorted by code
	require.Equal(t, "NOTE001", body.Data[0].Code)
	require.Equal(t, "PEN001", body.Data[1].Code)
	require.Equal(t, "10", body.Data[1].UnitPrice)
	require.Equal(t, "5", body.Data[1].TaxRatePercent)
}

func TestTillListingDescending(t *testing.T) {
	st := store.NewMemory()
	st.SeedDenomination(100, 3)
	st.SeedDenomination(2000, 10)
	st.SeedDenomination(1, 7)
	h := &catalog.Handler{Store: st}

	rec := httptest.NewRecorder()
	h.Till(rec, httptest.NewRequest(http.MethodGet, "/api/v1/till", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []domain.Denomination `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []domain.Denomination{
		{FaceValue: 2000, AvailableCount: 10},
		{FaceValue: 100, AvailableCount: 3},
		{FaceValue: 1, AvailableCount: 7},
	}, body.Data)
}

func TestCatalogUnconfiguredStore(t *testing.T) {
	h := &catalog.Handler{}

	rec := httptest.NewRecorder()
	h.Products(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
