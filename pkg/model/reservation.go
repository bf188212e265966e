package model

import (
	"time"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// BlockingStatuses are the states that occupy a resource's time: only these
// participate in overlap checks and availability views.
var BlockingStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// Blocking reports whether a reservation in state s occupies its interval.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo encodes the reservation state machine:
//
//	pending   -> confirmed | cancelled | expired
//	confirmed -> cancelled
//
// Everything else is illegal; in particular no state re-enters pending and
// a confirmed reservation never expires.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled || next == StatusExpired
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// Reservation is a time-bound exclusive claim on a resource.
// The interval is half-open: [StartsAt, EndsAt).
type Reservation struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	ResourceID string    `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	OwnerID    string    `json:"owner_id" bson:"owner_id" validate:"required"`
	StartsAt   time.Time `json:"starts_at" bson:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" bson:"ends_at" validate:"required"`
	Status     Status    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled expired"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func (r *Reservation) Interval() Interval {
	return Interval{StartsAt: r.StartsAt, EndsAt: r.EndsAt}
}

// BookingRequest is the admission input: who wants which resource for which
// half-open interval.
type BookingRequest struct {
	ResourceID string    `json:"resource_id" validate:"required,mongodb"`
	OwnerID    string    `json:"owner_id" validate:"required,min=1,max=100"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required"`
}

func (b *BookingRequest) Interval() Interval {
	return Interval{StartsAt: b.StartsAt, EndsAt: b.EndsAt}
}

// BusySlot is one occupied interval in an availability view.
type BusySlot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   Status    `json:"status"`
}

// Availability is the busy-interval projection for one resource and day.
// Available means no pending or confirmed reservation touches the day.
type Availability struct {
	ResourceID string     `json:"resource_id"`
	Date       string     `json:"date"`
	Available  bool       `json:"available"`
	BusySlots  []BusySlot `json:"busy_slots"`
}
