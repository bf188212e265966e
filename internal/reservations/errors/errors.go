package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrDuplicate means an _id collision on insert. Should not happen under
	// correct id generation.
	ErrDuplicate = errors.New("reservation already exists")

	// ErrStateMismatch means a conditional state update found the reservation
	// in a different state than expected. Benign for the reclaimer, a
	// conflict for explicit transitions.
	ErrStateMismatch = errors.New("reservation state changed concurrently")

	// ErrLockHeld means another admission currently holds the resource's
	// serialization point.
	ErrLockHeld = errors.New("resource lock held by another admission")
)
