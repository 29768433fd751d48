// Package reservation implements the lifecycle rules of a reservation:
// the status state machine and the time-based refund policy.  Both are
// pure domain logic with no store or transport dependencies; callers
// (handlers) are responsible for persisting the outcome atomically.
package reservation

import (
	"errors"
	"fmt"

	"github.com/venuora/venue-reservation/internal/model"
)

// Sentinel errors returned by ApplyTransition.  Handlers translate
// these into HTTP responses: AlreadyCancelled is a no-op confirmation
// for idempotent retries, the other two are conflicts.
var (
	// ErrInvalidTransition is returned for any transition the table
	// does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyCancelled is returned when a cancellation is requested
	// for a reservation that is already CANCELLED.  Callers should
	// treat this as confirmation of the earlier cancellation rather
	// than a hard failure: the stored refund fields must not change.
	ErrAlreadyCancelled = errors.New("reservation already cancelled")

	// ErrCannotCancelCompleted is returned when a cancellation is
	// requested for a reservation that has already checked out.
	ErrCannotCancelCompleted = errors.New("cannot cancel a completed reservation")
)

// transitions is the full table of legal status changes.  Terminal
// states have no entry and therefore allow nothing.
var transitions = map[model.ReservationStatus][]model.ReservationStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCheckedIn, model.StatusCancelled},
	model.StatusCheckedIn: {model.StatusCheckedOut, model.StatusNoShow},
}

// CanTransition reports whether moving from one status to another is
// legal according to the transition table.
func CanTransition(from, to model.ReservationStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ApplyTransition validates the requested status change and, when
// legal, records the new status on the reservation.  It mutates only
// the Status field: stamping cancelled_at, cancel_reason and refund
// fields is the caller's job, keeping policy separate from mechanism.
//
// Cancellation requests against an already-cancelled reservation fail
// with ErrAlreadyCancelled and leave the reservation untouched, so a
// retried cancel never re-runs refund computation or notification
// dispatch.  Cancelling a checked-out reservation fails with
// ErrCannotCancelCompleted.  Everything else outside the table fails
// with a wrapped ErrInvalidTransition.
func ApplyTransition(r *model.Reservation, target model.ReservationStatus) error {
	if target == model.StatusCancelled {
		switch r.Status {
		case model.StatusCancelled:
			return ErrAlreadyCancelled
		case model.StatusCheckedOut:
			return ErrCannotCancelCompleted
		}
	}
	if !CanTransition(r.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, target)
	}
	r.Status = target
	return nil
}
