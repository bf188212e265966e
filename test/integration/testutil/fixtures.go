package testutil

import (
	"time"

	"roomtime/pkg/model"
)

type BookingRequestBuilder struct {
	req model.BookingRequest
}

func NewBookingRequestBuilder() *BookingRequestBuilder {
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	return &BookingRequestBuilder{
		req: model.BookingRequest{
			ResourceID: "665f1c2b8a9d4e0012345678",
			OwnerID:    "owner-1",
			StartsAt:   start,
			EndsAt:     start.Add(time.Hour),
		},
	}
}

func (b *BookingRequestBuilder) WithResourceID(id string) *BookingRequestBuilder {
	b.req.ResourceID = id
	return b
}

func (b *BookingRequestBuilder) WithOwnerID(owner string) *BookingRequestBuilder {
	b.req.OwnerID = owner
	return b
}

func (b *BookingRequestBuilder) WithInterval(start, end time.Time) *BookingRequestBuilder {
	b.req.StartsAt = start
	b.req.EndsAt = end
	return b
}

func (b *BookingRequestBuilder) Build() model.BookingRequest {
	return b.req
}

func ValidBookingRequest() model.BookingRequest {
	return NewBookingRequestBuilder().Build()
}

// ZeroLengthBookingRequest starts and ends at the same instant.
func ZeroLengthBookingRequest() model.BookingRequest {
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	return NewBookingRequestBuilder().WithInterval(start, start).Build()
}

// AdjacentBookingRequest ends exactly where base starts.
func AdjacentBookingRequest(base model.BookingRequest) model.BookingRequest {
	return NewBookingRequestBuilder().
		WithResourceID(base.ResourceID).
		WithOwnerID("owner-2").
		WithInterval(base.StartsAt.Add(-time.Hour), base.StartsAt).
		Build()
}

// OverlappingBookingRequest overlaps the second half of base.
func OverlappingBookingRequest(base model.BookingRequest) model.BookingRequest {
	return NewBookingRequestBuilder().
		WithResourceID(base.ResourceID).
		WithOwnerID("owner-2").
		WithInterval(base.StartsAt.Add(30*time.Minute), base.EndsAt.Add(30*time.Minute)).
		Build()
}
