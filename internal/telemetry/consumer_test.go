package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/outbox"
)

func TestConsumerProcessesDispatchEvent(t *testing.T) {
	writer := &fakeWriter{}
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return false, nil
		},
		deleteFn: func(_ context.Context, _ string, _ uuid.UUID) error {
			return nil
		},
	}
	consumer := mustConsumer(t, writer, manager)

	buyerID := uuid.New()
	supplierID := uuid.New()
	event := buildTestEvent(t, enums.TelemetryEventOpenEmailMethod, map[string]any{
		"channel":   "mailto",
		"order_ref": "OH-20250813-ABC123",
	})
	event.Actor = &outbox.ActorRef{BuyerID: buyerID, SupplierID: &supplierID}

	if err := consumer.Process(context.Background(), event); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(writer.rows) != 1 {
		t.Fatalf("expected 1 row inserted, got %d", len(writer.rows))
	}
	row := writer.rows[0]
	if row.EventType != enums.TelemetryEventOpenEmailMethod.String() {
		t.Fatalf("unexpected event type: %s", row.EventType)
	}
	if row.BuyerID == nil || *row.BuyerID != buyerID.String() {
		t.Fatalf("buyer id mismatch")
	}
	if row.SupplierID == nil || *row.SupplierID != supplierID.String() {
		t.Fatalf("supplier id mismatch")
	}
	if row.Channel == nil || *row.Channel != "mailto" {
		t.Fatalf("channel mismatch")
	}
	if row.OrderRef == nil || *row.OrderRef != "OH-20250813-ABC123" {
		t.Fatalf("order ref mismatch")
	}
	if !row.Payload.Valid {
		t.Fatalf("payload should be valid json")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(row.Payload.JSONVal), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if _, ok := payload["channel"]; !ok {
		t.Fatalf("payload missing channel")
	}
}

func TestConsumerIsIdempotent(t *testing.T) {
	writer := &fakeWriter{}
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return true, nil
		},
		deleteFn: func(_ context.Context, _ string, _ uuid.UUID) error {
			return nil
		},
	}
	consumer := mustConsumer(t, writer, manager)

	event := buildTestEvent(t, enums.TelemetryEventOpenModal, map[string]any{})
	if err := consumer.Process(context.Background(), event); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if len(writer.rows) != 0 {
		t.Fatalf("expected no rows inserted when idempotent")
	}
}

func TestConsumerSkipsUnknownEventType(t *testing.T) {
	writer := &fakeWriter{}
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			t.Fatal("idempotency must not run for skipped events")
			return false, nil
		},
		deleteFn: func(_ context.Context, _ string, _ uuid.UUID) error {
			return nil
		},
	}
	consumer := mustConsumer(t, writer, manager)

	event := buildTestEvent(t, enums.TelemetryEventType("page_scrolled"), map[string]any{})
	if err := consumer.Process(context.Background(), event); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if len(writer.rows) != 0 {
		t.Fatalf("expected no rows inserted for unknown event type")
	}
}

func TestConsumerDeletesOnInsertFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("bigquery down")}
	deleted := false
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return false, nil
		},
		deleteFn: func(_ context.Context, _ string, _ uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	consumer := mustConsumer(t, writer, manager)

	event := buildTestEvent(t, enums.TelemetryEventMarkSent, map[string]any{})
	if err := consumer.Process(context.Background(), event); err == nil {
		t.Fatalf("expected error when insert fails")
	}
	if !deleted {
		t.Fatalf("expected idempotency key deletion on failure")
	}
}

func TestConsumerDeletesOnPayloadDecodeFailure(t *testing.T) {
	writer := &fakeWriter{}
	deleted := false
	manager := fakeIdempotency{
		check: func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
			return false, nil
		},
		deleteFn: func(_ context.Context, _ string, _ uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	consumer := mustConsumer(t, writer, manager)

	event := Event{
		EventID:       uuid.NewString(),
		EventType:     enums.TelemetryEventOpenModal,
		AggregateType: enums.AggregateCheckout,
		AggregateID:   uuid.NewString(),
		OccurredAt:    time.Now(),
		Payload:       []byte("{invalid json"),
	}
	if err := consumer.Process(context.Background(), event); err == nil {
		t.Fatalf("expected error for bad payload")
	}
	if !deleted {
		t.Fatalf("expected idempotency key deletion on payload error")
	}
	if len(writer.rows) != 0 {
		t.Fatalf("expected no rows inserted on payload failure")
	}
}

type fakeWriter struct {
	rows []DispatchEventRow
	err  error
}

func (f *fakeWriter) Insert(ctx context.Context, row DispatchEventRow) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

type fakeIdempotency struct {
	check    func(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	deleteFn func(ctx context.Context, consumer string, eventID uuid.UUID) error
}

func (f fakeIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	return f.check(ctx, consumer, eventID)
}

func (f fakeIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	return f.deleteFn(ctx, consumer, eventID)
}

func mustConsumer(t *testing.T, writer *fakeWriter, manager fakeIdempotency) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(writer, manager, logger.New(logger.Options{
		ServiceName: "telemetry-test",
		Level:       logger.ParseLevel("debug"),
		Output:      io.Discard,
	}))
	if err != nil {
		t.Fatalf("failed to build consumer: %v", err)
	}
	return consumer
}

func buildTestEvent(t *testing.T, eventType enums.TelemetryEventType, payload any) Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateType: enums.AggregateSupplierOrder,
		AggregateID:   uuid.NewString(),
		OccurredAt:    time.Now(),
		Payload:       raw,
	}
}
