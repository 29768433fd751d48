package model

import "time"

// ReservationStatus enumerates the lifecycle states of a reservation.
// CHECKED_OUT, CANCELLED and NO_SHOW are terminal: no further
// transition is permitted once one of them is reached.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "PENDING"
	StatusConfirmed  ReservationStatus = "CONFIRMED"
	StatusCheckedIn  ReservationStatus = "CHECKED_IN"
	StatusCheckedOut ReservationStatus = "CHECKED_OUT"
	StatusCancelled  ReservationStatus = "CANCELLED"
	StatusNoShow     ReservationStatus = "NO_SHOW"
)

// Terminal reports whether the status permits no further transitions.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// RefundStatus tracks the progress of a refund after cancellation.
// PENDING means a non-zero refund awaits execution by the external
// payment collaborator; COMPLETED covers both executed refunds and
// zero-amount refunds that need no execution at all.
type RefundStatus string

const (
	RefundPending    RefundStatus = "PENDING"
	RefundProcessing RefundStatus = "PROCESSING"
	RefundCompleted  RefundStatus = "COMPLETED"
	RefundFailed     RefundStatus = "FAILED"
)

// Reservation is a guest's booking of a service at a venue.
//
// Fields:
//
//	ID               – primary key identifier.
//	ConfirmationCode – short human-readable identifier, distinct from ID.
//	UserID           – owning guest.
//	ServiceID        – booked service (read-only context).
//	VenueID          – venue hosting the service (read-only context).
//	CheckIn/CheckOut – scheduled stay window.
//	Status           – lifecycle state, see ReservationStatus.
//	TotalCents       – total price in minor currency units.
//	Currency         – ISO currency code scoping the amounts.
//	RefundCents      – refund amount, nil until cancellation.
//	RefundStatus     – refund progress, nil until cancellation.
//	CancelReason     – optional free text supplied by the canceller.
//	CancelledAt      – set exactly once, on first successful cancellation.
//
// Invariants: CancelledAt is set iff Status == CANCELLED; RefundCents
// is set iff CancelledAt is set; RefundCents never exceeds TotalCents.
type Reservation struct {
	ID               uint64            // reservations.id
	ConfirmationCode string            // reservations.confirmation_code
	UserID           uint64            // reservations.user_id
	ServiceID        uint64            // reservations.service_id
	VenueID          uint64            // reservations.venue_id
	CheckIn          time.Time         // reservations.check_in
	CheckOut         time.Time         // reservations.check_out
	Status           ReservationStatus // reservations.status
	TotalCents       int64             // reservations.total_cents
	Currency         string            // reservations.currency
	RefundCents      *int64            // reservations.refund_cents (nullable)
	RefundStatus     *RefundStatus     // reservations.refund_status (nullable)
	CancelReason     *string           // reservations.cancel_reason (nullable)
	CancelledAt      *time.Time        // reservations.cancelled_at (nullable)
	CreatedAt        time.Time         // reservations.created_at
	UpdatedAt        time.Time         // reservations.updated_at
}

// Payment records a completed payment against a reservation.  A
// reservation has zero or more payments; they are read-only context
// for notification content and never mutated by the lifecycle core.
type Payment struct {
	ID             uint64    // payments.id
	ReservationID  uint64    // payments.reservation_id
	AmountCents    int64     // payments.amount_cents
	Currency       string    // payments.currency
	Method         string    // payments.method (e.g. "card", "bank_transfer")
	TransactionRef string    // payments.transaction_ref
	PaidAt         time.Time // payments.paid_at
}
