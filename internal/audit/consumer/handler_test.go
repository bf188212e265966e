package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"roomtime/pkg/kafka"
	"roomtime/pkg/logger"
	"roomtime/pkg/model"
)

type mockAuditRepository struct {
	InsertFunc         func(ctx context.Context, event *model.AuditEvent) error
	FindByEntityIDFunc func(ctx context.Context, entityID string, limit int) ([]*model.AuditEvent, error)

	inserted []*model.AuditEvent
}

func (m *mockAuditRepository) Insert(ctx context.Context, event *model.AuditEvent) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, event)
	}
	m.inserted = append(m.inserted, event)
	return nil
}

func (m *mockAuditRepository) FindByEntityID(ctx context.Context, entityID string, limit int) ([]*model.AuditEvent, error) {
	if m.FindByEntityIDFunc != nil {
		return m.FindByEntityIDFunc(ctx, entityID, limit)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.TEXT,
		Service: "auditor-test",
	})
}

func auditMessage(t *testing.T, event model.AuditEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return kafka.Message{
		Topic: "audit-events",
		Key:   event.EntityID,
		Value: payload,
		Headers: map[string]string{
			kafka.HeaderEventID: "evt-123",
		},
	}
}

func TestHandle_PersistsEvent(t *testing.T) {
	repo := &mockAuditRepository{}
	handler := NewHandler(repo, testLogger())

	event := model.AuditEvent{
		Actor:    "owner-1",
		Action:   model.AuditActionAdmitted,
		Entity:   "reservation",
		EntityID: "665f1c2b8a9d4e00aabbccdd",
		At:       time.Now().UTC(),
	}

	if err := handler.Handle(context.Background(), auditMessage(t, event)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("got %d inserts, want 1", len(repo.inserted))
	}
	stored := repo.inserted[0]
	if stored.Action != model.AuditActionAdmitted {
		t.Errorf("action = %q, want %q", stored.Action, model.AuditActionAdmitted)
	}
	if stored.ID != "evt-123" {
		t.Errorf("event ID = %q, want broker event ID", stored.ID)
	}
}

func TestHandle_DropsMalformedPayload(t *testing.T) {
	repo := &mockAuditRepository{}
	handler := NewHandler(repo, testLogger())

	msg := kafka.Message{
		Topic: "audit-events",
		Value: []byte("not json"),
	}

	// Undecodable payloads are dropped, not retried.
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() error = %v, want nil for malformed payload", err)
	}
	if len(repo.inserted) != 0 {
		t.Errorf("got %d inserts, want 0", len(repo.inserted))
	}
}

func TestHandle_DropsIncompleteEvent(t *testing.T) {
	repo := &mockAuditRepository{}
	handler := NewHandler(repo, testLogger())

	event := model.AuditEvent{Actor: "owner-1"}

	if err := handler.Handle(context.Background(), auditMessage(t, event)); err != nil {
		t.Fatalf("Handle() error = %v, want nil for incomplete event", err)
	}
	if len(repo.inserted) != 0 {
		t.Errorf("got %d inserts, want 0", len(repo.inserted))
	}
}

func TestHandle_RepositoryFailureRetried(t *testing.T) {
	repo := &mockAuditRepository{
		InsertFunc: func(ctx context.Context, event *model.AuditEvent) error {
			return fmt.Errorf("connection reset")
		},
	}
	handler := NewHandler(repo, testLogger())

	event := model.AuditEvent{
		Actor:    "owner-1",
		Action:   model.AuditActionExpired,
		Entity:   "reservation",
		EntityID: "665f1c2b8a9d4e00aabbccdd",
		At:       time.Now().UTC(),
	}

	// Storage errors propagate so the consumer retries or dead-letters.
	if err := handler.Handle(context.Background(), auditMessage(t, event)); err == nil {
		t.Fatal("Handle() = nil, want error for repository failure")
	}
}
