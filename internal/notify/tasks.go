package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TaskReceiptEmail is the asynq task type for receipt email delivery.
const TaskReceiptEmail = "email:receipt"

// ReceiptEmailPayload is the task payload carried from the API to the worker.
type ReceiptEmailPayload struct {
	PurchaseID string `json:"purchaseId"`
	Recipient  string `json:"recipient"`
	Total      string `json:"total"`
}

// NewReceiptEmailTask encodes the payload into an asynq task. The purchase id
// doubles as the task id so a retried emit cannot queue the same receipt
// twice.
func NewReceiptEmailTask(p ReceiptEmailPayload) (*asynq.Task, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode receipt payload: %w", err)
	}
	return asynq.NewTask(TaskReceiptEmail, raw,
		asynq.TaskID(p.PurchaseID),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}
