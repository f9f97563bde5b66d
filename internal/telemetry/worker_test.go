package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/outbox"
)

func testWorker(t *testing.T, handler Handler) *Worker {
	t.Helper()
	return &Worker{
		handler: handler,
		logg: logger.New(logger.Options{
			ServiceName: "telemetry-worker-test",
			Level:       logger.ParseLevel("debug"),
			Output:      io.Discard,
		}),
	}
}

func buildMessage(t *testing.T, envelope outbox.PayloadEnvelope, attrs map[string]string) *gcppubsub.Message {
	t.Helper()
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &gcppubsub.Message{
		ID:         "msg-1",
		Data:       data,
		Attributes: attrs,
	}
}

func TestWorkerProcessHandlesEvent(t *testing.T) {
	var handled *Event
	worker := testWorker(t, HandlerFunc(func(_ context.Context, event Event) error {
		handled = &event
		return nil
	}))

	buyerID := uuid.New()
	eventID := uuid.NewString()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Date(2025, 8, 13, 10, 0, 0, 0, time.UTC),
		Actor:      &outbox.ActorRef{BuyerID: buyerID},
		Data:       json.RawMessage(`{"channel":"gmail"}`),
	}
	msg := buildMessage(t, envelope, map[string]string{
		"event_type":     "open_email_method",
		"aggregate_type": "supplier_order",
		"aggregate_id":   uuid.NewString(),
	})

	result := worker.process(context.Background(), msg)
	if result.nack {
		t.Fatal("expected ack for handled event")
	}
	if handled == nil {
		t.Fatal("expected handler invocation")
	}
	if handled.EventID != eventID {
		t.Fatalf("unexpected event id %q", handled.EventID)
	}
	if handled.EventType != enums.TelemetryEventOpenEmailMethod {
		t.Fatalf("unexpected event type %q", handled.EventType)
	}
	if handled.Actor == nil || handled.Actor.BuyerID != buyerID {
		t.Fatal("expected actor carried through")
	}
}

func TestWorkerAcksMalformedMessage(t *testing.T) {
	worker := testWorker(t, HandlerFunc(func(context.Context, Event) error {
		t.Fatal("handler must not run for malformed messages")
		return nil
	}))

	msg := &gcppubsub.Message{ID: "msg-2", Data: []byte("{not json")}
	if worker.process(context.Background(), msg).nack {
		t.Fatal("malformed messages are dropped, not redelivered")
	}
}

func TestWorkerAcksUnknownEventType(t *testing.T) {
	worker := testWorker(t, HandlerFunc(func(context.Context, Event) error {
		t.Fatal("handler must not run for unknown event types")
		return nil
	}))

	msg := buildMessage(t, outbox.PayloadEnvelope{EventID: uuid.NewString()}, map[string]string{
		"event_type":     "page_scrolled",
		"aggregate_type": "checkout",
		"aggregate_id":   uuid.NewString(),
	})
	if worker.process(context.Background(), msg).nack {
		t.Fatal("unknown event types are dropped, not redelivered")
	}
}

func TestWorkerNacksOnHandlerError(t *testing.T) {
	worker := testWorker(t, HandlerFunc(func(context.Context, Event) error {
		return errors.New("bigquery down")
	}))

	msg := buildMessage(t, outbox.PayloadEnvelope{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
	}, map[string]string{
		"event_type":     "mark_sent",
		"aggregate_type": "supplier_order",
		"aggregate_id":   uuid.NewString(),
	})
	if !worker.process(context.Background(), msg).nack {
		t.Fatal("handler errors must trigger redelivery")
	}
}

func TestWorkerFallsBackToAttributeEventID(t *testing.T) {
	var handled *Event
	worker := testWorker(t, HandlerFunc(func(_ context.Context, event Event) error {
		handled = &event
		return nil
	}))

	attrID := uuid.NewString()
	msg := buildMessage(t, outbox.PayloadEnvelope{}, map[string]string{
		"event_id":       attrID,
		"event_type":     "open_modal",
		"aggregate_type": "checkout",
		"aggregate_id":   uuid.NewString(),
		"created_at":     time.Now().Format(time.RFC3339Nano),
	})
	if worker.process(context.Background(), msg).nack {
		t.Fatal("expected ack")
	}
	if handled == nil || handled.EventID != attrID {
		t.Fatal("expected event id from attributes")
	}
	if handled.OccurredAt.IsZero() {
		t.Fatal("expected occurred_at from created_at attribute")
	}
}
