package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/outbox"
)

// Handler defines how to process telemetry events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts functions to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (fn HandlerFunc) Handle(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Worker consumes telemetry events from Pub/Sub and hands them to a Handler.
// Malformed messages are acked and dropped; handler errors cause a nack so
// Pub/Sub redelivers.
type Worker struct {
	subscription *gcppubsub.Subscriber
	handler      Handler
	logg         *logger.Logger
}

// NewWorker creates a telemetry worker.
func NewWorker(subscription *gcppubsub.Subscriber, handler Handler, logg *logger.Logger) (*Worker, error) {
	if subscription == nil {
		return nil, errors.New("telemetry subscription is required")
	}
	if handler == nil {
		return nil, errors.New("telemetry handler is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{
		subscription: subscription,
		handler:      handler,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming telemetry messages until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (w *Worker) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{
		"message_id": msg.ID,
	}
	logCtx := w.logg.WithFields(ctx, fields)

	event, err := w.buildEvent(msg)
	if err != nil {
		fields["error"] = err.Error()
		w.logg.Warn(w.logg.WithFields(ctx, fields), "invalid telemetry envelope")
		return processResult{}
	}
	fields["event_id"] = event.EventID
	fields["event_type"] = event.EventType
	fields["aggregate_type"] = event.AggregateType
	fields["aggregate_id"] = event.AggregateID
	fields["occurred_at"] = event.OccurredAt.Format(time.RFC3339Nano)
	logCtx = w.logg.WithFields(ctx, fields)

	if err := w.handler.Handle(logCtx, *event); err != nil {
		w.logg.Error(logCtx, "telemetry handler error", err)
		return processResult{nack: true}
	}

	w.logg.Info(logCtx, "telemetry event handled")
	return processResult{}
}

func (w *Worker) buildEvent(msg *gcppubsub.Message) (*Event, error) {
	var stored outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &stored); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}

	eventType, err := enums.ParseTelemetryEventType(strings.TrimSpace(msg.Attributes["event_type"]))
	if err != nil {
		return nil, fmt.Errorf("event_type: %w", err)
	}

	aggregateType, err := enums.ParseOutboxAggregateType(strings.TrimSpace(msg.Attributes["aggregate_type"]))
	if err != nil {
		return nil, fmt.Errorf("aggregate_type: %w", err)
	}

	aggregateID := strings.TrimSpace(msg.Attributes["aggregate_id"])
	if aggregateID == "" {
		return nil, errors.New("aggregate_id missing")
	}

	occurredAt := stored.OccurredAt
	if occurredAt.IsZero() {
		if created := strings.TrimSpace(msg.Attributes["created_at"]); created != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
				occurredAt = parsed
			}
		}
	}

	eventID := strings.TrimSpace(stored.EventID)
	if eventID == "" {
		eventID = strings.TrimSpace(msg.Attributes["event_id"])
	}
	if eventID == "" {
		return nil, errors.New("event_id missing")
	}

	return &Event{
		EventID:       eventID,
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    occurredAt.UTC(),
		Actor:         stored.Actor,
		Payload:       stored.Data,
	}, nil
}
