package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/kasir-api/internal/billing"
	"github.com/noah-isme/kasir-api/internal/domain"
	"github.com/noah-isme/kasir-api/internal/store"
)

func postPurchase(t *testing.T, h *billing.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestSubmitHandlerCreated(t *testing.T) {
	st := seedCatalog(t)
	h := &billing.Handler{Svc: newService(st)}

	rec := postPurchase(t, h, `{
		"customerEmail": "alice@example.com",
		"paidAmount": 25.00,
		"lines": [{"productCode": "PEN001", "quantity": 2}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data struct {
			PurchaseID           string           `json:"purchaseId"`
			Total                string           `json:"total"`
			Balance              string           `json:"balance"`
			Change               map[string]int64 `json:"change"`
			RemainingUndispensed string           `json:"remainingUndispensed"`
			Items                []struct {
				ProductCode string `json:"productCode"`
				Quantity    int64  `json:"quantity"`
				LineTotal   string `json:"lineTotal"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.PurchaseID)
	require.Equal(t, "21", body.Data.Total)
	require.Equal(t, "4", body.Data.Balance)
	require.Equal(t, map[string]int64{"2": 2}, body.Data.Change)
	require.Equal(t, "0", body.Data.RemainingUndispensed)
	require.Len(t, body.Data.Items, 1)
	require.Equal(t, "PEN001", body.Data.Items[0].ProductCode)
	require.Equal(t, "21", body.Data.Items[0].LineTotal)
}

func TestSubmitHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"customerEmail":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "validation failure",
			body:       `{"customerEmail": "not-an-email", "paidAmount": 10, "lines": [{"productCode": "PEN001", "quantity": 1}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "unknown product",
			body:       `{"customerEmail": "a@example.com", "paidAmount": 10, "lines": [{"productCode": "NOPE999", "quantity": 1}]}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "PRODUCT_NOT_FOUND",
		},
		{
			name:       "zero quantity",
			body:       `{"customerEmail": "a@example.com", "paidAmount": 10, "lines": [{"productCode": "PEN001", "quantity": 0}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "over stock",
			body:       `{"customerEmail": "a@example.com", "paidAmount": 99999, "lines": [{"productCode": "PEN001", "quantity": 101}]}`,
			wantStatus: http.StatusConflict,
			wantCode:   "INSUFFICIENT_STOCK",
		},
		{
			name:       "underpaid",
			body:       `{"customerEmail": "a@example.com", "paidAmount": 1, "lines": [{"productCode": "PEN001", "quantity": 1}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INSUFFICIENT_PAYMENT",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &billing.Handler{Svc: newService(seedCatalog(t))}
			rec := postPurchase(t, h, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, tc.wantCode, errorCode(t, rec))
		})
	}
}

// conflictingStore fails the first WithinTx calls as aborted before delegating,
// mimicking serialization conflicts under concurrent submissions.
type conflictingStore struct {
	store.Store
	failures int
	calls    int
}

func (c *conflictingStore) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	c.calls++
	if c.calls <= c.failures {
		return domain.ErrTransactionAborted
	}
	return c.Store.WithinTx(ctx, fn)
}

func TestSubmitHandlerRetriesAbortedTx(t *testing.T) {
	st := seedCatalog(t)
	flaky := &conflictingStore{Store: st, failures: 2}
	svc := &billing.Service{Store: flaky, Validate: validator.New(), Logger: zerolog.Nop()}
	h := &billing.Handler{Svc: svc}

	rec := postPurchase(t, h, `{
		"customerEmail": "alice@example.com",
		"paidAmount": 25.00,
		"lines": [{"productCode": "PEN001", "quantity": 2}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 3, flaky.calls)
}

func TestSubmitHandlerAbortedTxExhausted(t *testing.T) {
	st := seedCatalog(t)
	flaky := &conflictingStore{Store: st, failures: 10}
	svc := &billing.Service{Store: flaky, Validate: validator.New(), Logger: zerolog.Nop()}
	h := &billing.Handler{Svc: svc}

	rec := postPurchase(t, h, `{
		"customerEmail": "alice@example.com",
		"paidAmount": 25.00,
		"lines": [{"productCode": "PEN001", "quantity": 1}]
	}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "TRANSACTION_ABORTED", errorCode(t, rec))
	require.Equal(t, 3, flaky.calls)
}
