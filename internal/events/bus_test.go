package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/events"
	"github.com/noah-isme/kasir-api/internal/store"
)

type stubEventStore struct {
	inserted []store.Event
	err      error
}

func (s *stubEventStore) InsertDomainEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (store.Event, error) {
	if s.err != nil {
		return store.Event{}, s.err
	}
	ev := store.Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	}
	s.inserted = append(s.inserted, ev)
	return ev, nil
}

type captureNotifier struct {
	received []store.Event
	err      error
}

func (n *captureNotifier) Notify(_ context.Context, ev store.Event) error {
	n.received = append(n.received, ev)
	return n.err
}

func TestEmitPersistsAndFansOut(t *testing.T) {
	st := &stubEventStore{}
	first := &captureNotifier{}
	second := &captureNotifier{}
	bus := &events.Bus{Store: st, Notifiers: []events.Notifier{first, second}}

	aggregate := uuid.New()
	ev, err := bus.Emit(context.Background(), events.TopicPurchaseCompleted, aggregate, map[string]string{"total": "21"})
	require.NoError(t, err)
	require.Equal(t, events.TopicPurchaseCompleted, ev.Topic)
	require.Equal(t, aggregate, ev.AggregateID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	require.Equal(t, "21", payload["total"])

	require.Len(t, st.inserted, 1)
	require.Len(t, first.received, 1)
	require.Len(t, second.received, 1)
}

func TestEmitValidatesInput(t *testing.T) {
	bus := &events.Bus{Store: &stubEventStore{}}

	_, err := bus.Emit(context.Background(), "  ", uuid.New(), nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), "purchase.completed", uuid.Nil, nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), "purchase.completed", uuid.New(), []byte("not-json"))
	require.Error(t, err)
}

func TestEmitStoreFailureSkipsNotifiers(t *testing.T) {
	notifier := &captureNotifier{}
	bus := &events.Bus{
		Store:     &stubEventStore{err: errors.New("db down")},
		Notifiers: []events.Notifier{notifier},
	}

	_, err := bus.Emit(context.Background(), "purchase.completed", uuid.New(), nil)
	require.Error(t, err)
	require.Empty(t, notifier.received)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	st := &stubEventStore{}
	failing := &captureNotifier{err: errors.New("queue full")}
	healthy := &captureNotifier{}
	bus := &events.Bus{Store: st, Notifiers: []events.Notifier{failing, healthy}}

	_, err := bus.Emit(context.Background(), "purchase.completed", uuid.New(), nil)
	require.Error(t, err)

	// the event is persisted and every notifier still runs
	require.Len(t, st.inserted, 1)
	require.Len(t, failing.received, 1)
	require.Len(t, healthy.received, 1)
}

func TestEmitDefaultsEmptyPayload(t *testing.T) {
	st := &stubEventStore{}
	bus := &events.Bus{Store: st}

	ev, err := bus.Emit(context.Background(), "purchase.completed", uuid.New(), nil)
	require.NoError(t, err)
	require.JSONEq(t, "{}", string(ev.Payload))

	ev, err = bus.Emit(context.Background(), "purchase.completed", uuid.New(), json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(ev.Payload))
}
