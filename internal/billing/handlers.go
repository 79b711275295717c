package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/domain"
)

// submitRetries bounds how often a conflicted transaction is retried before
// the submission is surfaced as unavailable.
const submitRetries = 3

// Handler exposes the purchase submission endpoint.
type Handler struct {
	Svc *Service
}

type submitResponse struct {
	PurchaseID           string            `json:"purchaseId"`
	CreatedAt            string            `json:"createdAt"`
	Total                string            `json:"total"`
	Balance              string            `json:"balance"`
	Change               map[int64]int64   `json:"change"`
	RemainingUndispensed string            `json:"remainingUndispensed"`
	Items                []submitItem      `json:"items"`
}

type submitItem struct {
	ProductCode string `json:"productCode"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

// Submit handles POST /api/v1/purchases.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "billing service not configured", nil)
		return
	}
	var payload SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	var (
		out Result
		err error
	)
	for attempt := 0; attempt < submitRetries; attempt++ {
		out, err = h.Svc.Submit(r.Context(), payload)
		if !errors.Is(err, domain.ErrTransactionAborted) {
			break
		}
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]submitItem, 0, len(out.Purchase.Items))
	for _, item := range out.Purchase.Items {
		items = append(items, submitItem{
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal().String(),
		})
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": submitResponse{
		PurchaseID:           out.Purchase.ID.String(),
		CreatedAt:            out.Purchase.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Total:                out.Total.String(),
		Balance:              out.Balance.String(),
		Change:               out.Change,
		RemainingUndispensed: out.RemainingUndispensed.String(),
		Items:                items,
	}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, domain.ErrInsufficientStock):
		common.JSONError(w, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), nil)
	case errors.Is(err, domain.ErrInsufficientPayment):
		common.JSONError(w, http.StatusBadRequest, "INSUFFICIENT_PAYMENT", err.Error(), nil)
	case errors.Is(err, domain.ErrTransactionAborted):
		common.JSONError(w, http.StatusServiceUnavailable, "TRANSACTION_ABORTED", "submission conflicted, retry later", nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			status := appErr.HTTPStatus
			if status == 0 {
				status = http.StatusBadRequest
			}
			code := appErr.Code
			if code == "" {
				code = "BAD_REQUEST"
			}
			common.JSONError(w, status, code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "purchase submission failed", nil)
	}
}
