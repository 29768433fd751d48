// Package queue defines the lifecycle events exchanged over the
// message broker and the background consumer that audits them.
package queue

// Event kind values carried in LifecycleEvent.Kind.
const (
	KindReservationConfirmed = "reservation.confirmed"
	KindReservationCancelled = "reservation.cancelled"
	KindPaymentConfirmed     = "payment.confirmed"
)

// LifecycleEvent is published after a reservation lifecycle event has
// been committed and its notifications dispatched.  It carries enough
// context for downstream consumers to audit or trigger analytics
// without querying the primary database.
type LifecycleEvent struct {
	Kind             string `json:"kind"`
	ReservationID    uint64 `json:"reservation_id"`
	ConfirmationCode string `json:"confirmation_code"`
	UserID           uint64 `json:"user_id"`
	VenueName        string `json:"venue_name"`
	ServiceName      string `json:"service_name"`
	Status           string `json:"status"`
	TotalCents       int64  `json:"total_cents"`
	RefundCents      int64  `json:"refund_cents,omitempty"`
	RefundStatus     string `json:"refund_status,omitempty"`
	Currency         string `json:"currency"`
	GuestNotified    bool   `json:"guest_notified"`
	OccurredAt       string `json:"occurred_at"`
}
