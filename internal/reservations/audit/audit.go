package audit

import (
	"context"
	"time"

	"roomtime/pkg/kafka"
	"roomtime/pkg/logger"
	"roomtime/pkg/model"

	"github.com/google/uuid"
)

const (
	// Topic carries one event per admission, confirmation, cancel and expiry.
	Topic = "audit-events"

	EntityReservation = "reservation"

	// ReclaimerActor marks expiries applied by the background sweep rather
	// than a principal.
	ReclaimerActor = "system:reclaimer"
)

// Sink records state-changing decisions. Recording is fire-and-forget:
// a sink failure must never block or fail the decision that produced the
// event.
type Sink interface {
	Record(ctx context.Context, actor, action, entityID string, meta map[string]any)
}

// KafkaSink publishes audit events to the audit topic. Publish errors are
// logged and dropped.
type KafkaSink struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaSink(producer *kafka.Producer, source string, log *logger.Logger) *KafkaSink {
	return &KafkaSink{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (s *KafkaSink) Record(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	event := model.AuditEvent{
		ID:       uuid.New().String(),
		Actor:    actor,
		Action:   action,
		Entity:   EntityReservation,
		EntityID: entityID,
		Meta:     meta,
		At:       time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(entityID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(action).
		WithSource(s.source).
		Build()

	// Detach from the request context so a cancelled request doesn't lose
	// the event; bound the publish instead.
	go func() {
		publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.producer.Publish(publishCtx, msg); err != nil {
			s.log.Warn("Failed to publish audit event",
				"action", action,
				"entity_id", entityID,
				"error", err,
			)
		}
	}()
}

// NopSink discards events. Used in tests and when no broker is deployed.
type NopSink struct{}

func (NopSink) Record(ctx context.Context, actor, action, entityID string, meta map[string]any) {}
