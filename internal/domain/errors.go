package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInsufficientInventory means the requested units exceed the deal's
	// drawable supply. Nothing is persisted when it is returned.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrReservationExpired is the lazy-recheck failure on finalize: the hold's
	// TTL elapsed even if the background sweep has not released it yet.
	ErrReservationExpired = errors.New("reservation expired")
	// ErrReservationNotPending guards release and finalize against holds that
	// already left the pending state through the competing transition.
	ErrReservationNotPending = errors.New("reservation not pending")
	// ErrAlreadyFinalized signals a repeated finalize on the same reservation.
	ErrAlreadyFinalized    = errors.New("reservation already finalized")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrIdempotencyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
)
