package model

import "time"

// Audit actions emitted by the reservation core.
const (
	AuditActionAdmitted  = "reservation.admitted"
	AuditActionConfirmed = "reservation.confirmed"
	AuditActionCancelled = "reservation.cancelled"
	AuditActionExpired   = "reservation.expired"
)

// AuditEvent records one state-changing decision. Events are published to the
// audit topic fire-and-forget; the auditor service persists them.
type AuditEvent struct {
	ID       string         `json:"id" bson:"_id,omitempty"`
	Actor    string         `json:"actor" bson:"actor"`
	Action   string         `json:"action" bson:"action"`
	Entity   string         `json:"entity" bson:"entity"`
	EntityID string         `json:"entity_id" bson:"entity_id"`
	Meta     map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	At       time.Time      `json:"at" bson:"at"`
}
