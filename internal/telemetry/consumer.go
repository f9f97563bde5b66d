package telemetry

import (
	"context"
	"fmt"
	"strings"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/orderhub/orderhub-backend/pkg/logger"
)

const telemetryConsumerName = "telemetry"

type rowWriter interface {
	Insert(ctx context.Context, row DispatchEventRow) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer writes checkout funnel events to BigQuery while honoring Redis
// idempotency.
type Consumer struct {
	writer  rowWriter
	manager idempotencyChecker
	logg    *logger.Logger
}

// NewConsumer builds a telemetry consumer.
func NewConsumer(writer rowWriter, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if writer == nil {
		return nil, fmt.Errorf("dispatch event writer required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		writer:  writer,
		manager: manager,
		logg:    logg,
	}, nil
}

// Process ingests the telemetry envelope into BigQuery.
func (c *Consumer) Process(ctx context.Context, event Event) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   event.EventID,
		"event_type": event.EventType,
	})

	if !event.EventType.IsValid() {
		c.logg.Info(logCtx, "event not handled by telemetry consumer")
		return nil
	}

	if event.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, telemetryConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	row, err := buildRow(event)
	if err != nil {
		c.logg.Error(logCtx, "failed to build dispatch event row", err)
		_ = c.manager.Delete(ctx, telemetryConsumerName, eventID)
		return err
	}

	if err := c.writer.Insert(ctx, *row); err != nil {
		c.logg.Error(logCtx, "failed to insert dispatch event row", err)
		_ = c.manager.Delete(ctx, telemetryConsumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "telemetry event ingested")
	return nil
}

func buildRow(event Event) (*DispatchEventRow, error) {
	payload, err := event.PayloadMap()
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	payloadJSON := cbigquery.NullJSON{}
	if len(event.Payload) > 0 {
		payloadJSON.Valid = true
		payloadJSON.JSONVal = string(event.Payload)
	}

	row := &DispatchEventRow{
		EventID:       event.EventID,
		EventType:     event.EventType.String(),
		AggregateType: event.AggregateType.String(),
		AggregateID:   event.AggregateID,
		Channel:       stringValue(payload, "channel"),
		OrderRef:      stringValue(payload, "order_ref"),
		OccurredAt:    event.OccurredAt,
		Payload:       payloadJSON,
	}
	if event.Actor != nil {
		buyer := event.Actor.BuyerID.String()
		row.BuyerID = &buyer
		if event.Actor.SupplierID != nil {
			supplier := event.Actor.SupplierID.String()
			row.SupplierID = &supplier
		}
	}
	return row, nil
}

func stringValue(payload map[string]any, key string) *string {
	if payload == nil {
		return nil
	}
	if raw, ok := payload[key]; ok {
		if str, ok := raw.(string); ok {
			trimmed := strings.TrimSpace(str)
			if trimmed != "" {
				return &trimmed
			}
		}
	}
	return nil
}
