package consumer

import (
	"context"
	"fmt"

	"roomtime/internal/audit/repository"
	"roomtime/pkg/kafka"
	"roomtime/pkg/logger"
	"roomtime/pkg/model"
)

// Handler consumes audit events from the audit topic and appends them to
// the audit log. Returning an error hands the message to the consumer's
// retry/DLQ path.
type Handler struct {
	repo repository.AuditRepository
	log  *logger.Logger
}

func NewHandler(repo repository.AuditRepository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.AuditEvent
	if err := msg.DecodeValue(&event); err != nil {
		// A malformed payload will never decode on retry. Log and drop.
		h.log.Error("Dropping undecodable audit message",
			"event_id", msg.GetEventID(),
			"error", err,
		)
		return nil
	}

	if event.Action == "" || event.EntityID == "" {
		h.log.Warn("Dropping incomplete audit event",
			"event_id", msg.GetEventID(),
			"action", event.Action,
			"entity_id", event.EntityID,
		)
		return nil
	}

	// The broker-assigned event ID keeps inserts idempotent across
	// redeliveries.
	if event.ID == "" {
		event.ID = msg.GetEventID()
	}

	if err := h.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("failed to persist audit event %s: %w", event.ID, err)
	}

	h.log.Debug("Audit event persisted",
		"action", event.Action,
		"entity_id", event.EntityID,
		"actor", event.Actor,
	)

	return nil
}
