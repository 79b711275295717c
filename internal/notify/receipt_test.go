package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/events"
	"github.com/noah-isme/kasir-api/internal/notify"
	"github.com/noah-isme/kasir-api/internal/store"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func purchaseEvent(t *testing.T, payload map[string]any) store.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return store.Event{
		ID:          uuid.New(),
		Topic:       events.TopicPurchaseCompleted,
		AggregateID: uuid.New(),
		Payload:     raw,
	}
}

func TestReceiptNotifierEnqueuesTask(t *testing.T) {
	q := &stubEnqueuer{}
	n := notify.ReceiptNotifier{Tasks: q, Enabled: true}

	ev := purchaseEvent(t, map[string]any{"customerEmail": "alice@example.com", "total": "21"})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Len(t, q.tasks, 1)
	require.Equal(t, notify.TaskReceiptEmail, q.tasks[0].Type())

	var p notify.ReceiptEmailPayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &p))
	require.Equal(t, ev.AggregateID.String(), p.PurchaseID)
	require.Equal(t, "alice@example.com", p.Recipient)
	require.Equal(t, "21", p.Total)
}

func TestReceiptNotifierDisabled(t *testing.T) {
	q := &stubEnqueuer{}
	n := notify.ReceiptNotifier{Tasks: q, Enabled: false}

	ev := purchaseEvent(t, map[string]any{"customerEmail": "alice@example.com"})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Empty(t, q.tasks)
}

func TestReceiptNotifierIgnoresOtherTopics(t *testing.T) {
	q := &stubEnqueuer{}
	n := notify.ReceiptNotifier{Tasks: q, Enabled: true}

	ev := purchaseEvent(t, map[string]any{"customerEmail": "alice@example.com"})
	ev.Topic = "till.reconciled"
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Empty(t, q.tasks)
}

func TestReceiptNotifierSkipsMissingRecipient(t *testing.T) {
	q := &stubEnqueuer{}
	n := notify.ReceiptNotifier{Tasks: q, Enabled: true}

	ev := purchaseEvent(t, map[string]any{"total": "21"})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Empty(t, q.tasks)
}

func TestReceiptNotifierFallbackRecipientKeys(t *testing.T) {
	for _, key := range []string{"customerEmail", "email", "recipient"} {
		q := &stubEnqueuer{}
		n := notify.ReceiptNotifier{Tasks: q, Enabled: true}

		ev := purchaseEvent(t, map[string]any{key: "bob@example.com"})
		require.NoError(t, n.Notify(context.Background(), ev))
		require.Len(t, q.tasks, 1, "key %s", key)
	}
}
