package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/outbox"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(_ *gorm.DB, limit, _ int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return "server-id", f.err
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return fakePublishResult{}
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

func publisherTestLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.ParseLevel("debug")})
}

func envelopePayload(t *testing.T, eventID string) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Date(2025, 8, 13, 10, 0, 0, 0, time.UTC),
		Data:       json.RawMessage(`{"channel":"mailto"}`),
	})
	if err != nil {
		t.Fatalf("marshaling envelope: %v", err)
	}
	return payload
}

func testEvent(t *testing.T, eventID string) models.OutboxEvent {
	t.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.TelemetryEventOpenEmailMethod,
		AggregateType: enums.AggregateSupplierOrder,
		AggregateID:   uuid.New(),
		Payload:       envelopePayload(t, eventID),
		CreatedAt:     time.Date(2025, 8, 13, 10, 0, 0, 0, time.UTC),
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Tx:        fakeTx{},
		Publisher: pub,
		Logger:    publisherTestLogger(),
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{testEvent(t, "evt-1"), testEvent(t, "evt-2")}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	published, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if published != 2 {
		t.Fatalf("expected 2 published, got %d", published)
	}
	if len(repo.published) != 2 || len(repo.failed) != 0 {
		t.Fatalf("expected both rows marked published, got published=%d failed=%d", len(repo.published), len(repo.failed))
	}
}

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	first := testEvent(t, "evt-1")
	second := testEvent(t, "evt-2")
	repo := &fakeRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{results: []publishResult{
		fakePublishResult{err: errors.New("transient")},
		fakePublishResult{},
	}}
	svc := newTestService(t, repo, pub)

	published, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected 1 published, got %d", published)
	}
	if len(repo.failed) != 1 || repo.failed[0] != first.ID {
		t.Fatalf("expected first row marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != second.ID {
		t.Fatalf("expected second row marked published, got %v", repo.published)
	}
}

func TestProcessBatchPropagatesFetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db down")}
	svc := newTestService(t, repo, &fakePublisher{})

	if _, err := svc.processBatch(context.Background()); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

func TestMessageAttributesPreferEnvelopeEventID(t *testing.T) {
	event := testEvent(t, "envelope-id")
	attrs := messageAttributes(event)

	if attrs["event_id"] != "envelope-id" {
		t.Fatalf("expected envelope event id, got %q", attrs["event_id"])
	}
	if attrs["event_type"] != enums.TelemetryEventOpenEmailMethod.String() {
		t.Fatalf("unexpected event_type %q", attrs["event_type"])
	}
	if attrs["aggregate_type"] != enums.AggregateSupplierOrder.String() {
		t.Fatalf("unexpected aggregate_type %q", attrs["aggregate_type"])
	}
	if attrs["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id %q", attrs["aggregate_id"])
	}
	if attrs["created_at"] != "2025-08-13T10:00:00Z" {
		t.Fatalf("unexpected created_at %q", attrs["created_at"])
	}
}

func TestMessageAttributesFallBackToRowID(t *testing.T) {
	event := testEvent(t, "evt-1")
	event.Payload = json.RawMessage(`{"not":"an envelope"}`)
	attrs := messageAttributes(event)

	if attrs["event_id"] != event.ID.String() {
		t.Fatalf("expected row id fallback, got %q", attrs["event_id"])
	}
}

func TestNextBackoffCapsAtMaximum(t *testing.T) {
	base := 500 * time.Millisecond
	cases := []struct {
		rounds int
		want   time.Duration
	}{
		{rounds: 1, want: 500 * time.Millisecond},
		{rounds: 2, want: time.Second},
		{rounds: 3, want: 2 * time.Second},
		{rounds: 10, want: maxBackoff},
	}
	for _, tc := range cases {
		if got := nextBackoff(base, tc.rounds); got != tc.want {
			t.Fatalf("rounds=%d: expected %s, got %s", tc.rounds, tc.want, got)
		}
	}
}

func TestWithJitterStaysInWindow(t *testing.T) {
	base := time.Second
	for i := 0; i < 50; i++ {
		got := withJitter(base)
		if got < base || got > base+jitterWindow {
			t.Fatalf("jittered wait %s outside [%s, %s]", got, base, base+jitterWindow)
		}
	}
}

func TestNewServiceValidation(t *testing.T) {
	logg := publisherTestLogger()
	cases := []struct {
		name   string
		params ServiceParams
	}{
		{name: "missing repo", params: ServiceParams{Tx: fakeTx{}, Publisher: &fakePublisher{}, Logger: logg}},
		{name: "missing tx", params: ServiceParams{Repo: &fakeRepo{}, Publisher: &fakePublisher{}, Logger: logg}},
		{name: "missing publisher", params: ServiceParams{Repo: &fakeRepo{}, Tx: fakeTx{}, Logger: logg}},
		{name: "missing logger", params: ServiceParams{Repo: &fakeRepo{}, Tx: fakeTx{}, Publisher: &fakePublisher{}}},
	}
	for _, tc := range cases {
		if _, err := NewService(tc.params); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
