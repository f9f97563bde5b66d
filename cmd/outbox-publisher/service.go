package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/outbox"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10

	maxBackoff   = 10 * time.Second
	jitterWindow = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type gcpPublisher struct {
	topic *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.topic.Publish(ctx, msg)
}

type eventRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the publisher loop's collaborators.
type ServiceParams struct {
	Repo           eventRepository
	Tx             txRunner
	Publisher      publisher
	Logger         *logger.Logger
	BatchSize      int
	PollInterval   time.Duration
	PublishTimeout time.Duration
	MaxAttempts    int
}

// Service drains outbox_events to the telemetry topic. Rows are claimed with
// SKIP LOCKED so replicas can run side by side.
type Service struct {
	repo           eventRepository
	tx             txRunner
	publisher      publisher
	logg           *logger.Logger
	batchSize      int
	pollInterval   time.Duration
	publishTimeout time.Duration
	maxAttempts    int
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repository required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.BatchSize <= 0 {
		params.BatchSize = defaultBatchSize
	}
	if params.PollInterval <= 0 {
		params.PollInterval = defaultPollInterval
	}
	if params.PublishTimeout <= 0 {
		params.PublishTimeout = defaultPublishTimeout
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = defaultMaxAttempts
	}
	return &Service{
		repo:           params.Repo,
		tx:             params.Tx,
		publisher:      params.Publisher,
		logg:           params.Logger,
		batchSize:      params.BatchSize,
		pollInterval:   params.PollInterval,
		publishTimeout: params.PublishTimeout,
		maxAttempts:    params.MaxAttempts,
	}, nil
}

// Run polls until the context is cancelled. Consecutive empty or failing
// rounds stretch the wait up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	s.logg.Info(ctx, "outbox publisher started")

	idleRounds := 0
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher stopping")
			return ctx.Err()
		default:
		}

		published, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			idleRounds++
		case published == 0:
			idleRounds++
		default:
			idleRounds = 0
		}

		wait := s.pollInterval
		if idleRounds > 0 {
			wait = withJitter(nextBackoff(s.pollInterval, idleRounds))
		}

		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher stopping")
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// processBatch claims a batch inside one transaction, publishes each row and
// records the per-row outcome before committing. Publish failures are marked
// on the row, not escalated, so one bad event cannot wedge the batch.
func (s *Service) processBatch(ctx context.Context) (int, error) {
	published := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetching outbox batch: %w", err)
		}

		for i := range rows {
			row := rows[i]
			if publishErr := s.publishEvent(ctx, row); publishErr != nil {
				if markErr := s.repo.MarkFailedTx(tx, row.ID, publishErr); markErr != nil {
					return fmt.Errorf("marking event %s failed: %w", row.ID, markErr)
				}
				evCtx := s.logg.WithFields(ctx, map[string]any{
					"event_id":   row.ID.String(),
					"event_type": row.EventType.String(),
					"attempts":   row.AttemptCount + 1,
				})
				s.logg.Error(evCtx, "outbox publish failed", publishErr)
				continue
			}
			if markErr := s.repo.MarkPublishedTx(tx, row.ID); markErr != nil {
				return fmt.Errorf("marking event %s published: %w", row.ID, markErr)
			}
			published++
		}
		return nil
	})
	return published, err
}

func (s *Service) publishEvent(ctx context.Context, row models.OutboxEvent) error {
	publishCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	result := s.publisher.Publish(publishCtx, &gcppubsub.Message{
		Data:       row.Payload,
		Attributes: messageAttributes(row),
	})
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

// messageAttributes exposes routing metadata so consumers can filter without
// decoding the payload. The envelope event id wins when it is present.
func messageAttributes(row models.OutboxEvent) map[string]string {
	eventID := row.ID.String()
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err == nil && envelope.EventID != "" {
		eventID = envelope.EventID
	}

	return map[string]string{
		"event_id":       eventID,
		"event_type":     row.EventType.String(),
		"aggregate_type": row.AggregateType.String(),
		"aggregate_id":   row.AggregateID.String(),
		"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func nextBackoff(base time.Duration, rounds int) time.Duration {
	wait := base
	for i := 1; i < rounds; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}

func withJitter(wait time.Duration) time.Duration {
	if wait <= 0 {
		return wait
	}
	return wait + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
