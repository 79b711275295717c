package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/kasir-api/internal/events"
	"github.com/noah-isme/kasir-api/internal/store"
)

// TaskEnqueuer is the subset of the asynq client used by the notifier.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReceiptNotifier queues a receipt email for completed purchases. It
// implements events.Notifier; delivery itself happens in the worker process,
// so a slow or down mail server never blocks the submission path.
type ReceiptNotifier struct {
	Tasks   TaskEnqueuer
	Enabled bool
}

// Notify implements the events.Notifier interface.
func (n ReceiptNotifier) Notify(ctx context.Context, event store.Event) error {
	if !n.Enabled || n.Tasks == nil {
		return nil
	}
	if event.Topic != events.TopicPurchaseCompleted {
		return nil
	}
	payload := map[string]any{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("receipt notify: decode payload: %w", err)
		}
	}
	recipient := extractRecipient(payload)
	if recipient == "" {
		return nil
	}
	total, _ := payload["total"].(string)
	task, err := NewReceiptEmailTask(ReceiptEmailPayload{
		PurchaseID: event.AggregateID.String(),
		Recipient:  recipient,
		Total:      total,
	})
	if err != nil {
		return err
	}
	if _, err := n.Tasks.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("receipt notify: enqueue: %w", err)
	}
	return nil
}

func extractRecipient(payload map[string]any) string {
	keys := []string{"customerEmail", "email", "recipient"}
	for _, key := range keys {
		if val, ok := payload[key]; ok {
			if s, ok := val.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					return s
				}
			}
		}
	}
	return ""
}
