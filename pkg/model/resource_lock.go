package model

import "time"

// ResourceLock is an advisory lock document serializing admissions on a
// single resource. The lock is held by whoever managed to insert the
// document; a duplicate-key error on insert means someone else holds it.
// ExpiresAt bounds the damage of a crashed holder (TTL index on the
// collection reaps stale locks).
type ResourceLock struct {
	ID         string    `bson:"_id" json:"id"`
	ResourceID string    `bson:"resource_id" json:"resource_id"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
