// Package notify implements the dual-channel notification dispatcher:
// one logical lifecycle notification is delivered through an external
// message sender and, independently, persisted as an in-app record.
// Either channel may fail without affecting the other.
package notify

import (
	"fmt"
	"time"

	"github.com/venuora/venue-reservation/internal/model"
)

// Recipient identifies the target of a dispatch on both channels: the
// user id owns the persisted record, the email address receives the
// external message.
type Recipient struct {
	UserID uint64
	Email  string
	Name   string
}

// ReservationInfo carries the reservation fields that confirmation,
// cancellation and reminder templates fill in.  Refund fields are
// meaningful only for cancellations; amount fields may be zero when
// not yet known.
type ReservationInfo struct {
	ConfirmationCode string
	VenueName        string
	ServiceName      string
	CheckIn          time.Time
	CheckOut         time.Time
	TotalCents       int64
	Currency         string
	RefundCents      int64
	RefundStatus     string
	CancelReason     string
}

// PaymentInfo carries the fields of a payment-confirmed event.
type PaymentInfo struct {
	ConfirmationCode string
	AmountCents      int64
	Currency         string
	Method           string
	TransactionRef   string
	PaidAt           time.Time
}

// AdminAlert is a free-form notification addressed to an
// administrative recipient instead of a guest.
type AdminAlert struct {
	Subject  string
	Message  string
	Metadata map[string]any
}

// Event is one notification-worthy lifecycle event.  Exactly one of
// the payload pointers matching Type must be set; Dispatch rejects
// anything else on both channels.
type Event struct {
	Type          model.NotificationType
	ReservationID uint64
	Reservation   *ReservationInfo // confirmed / cancelled / reminder
	Payment       *PaymentInfo     // payment confirmed
	Alert         *AdminAlert      // admin alerts (Type SYSTEM)
}

// formatAmount renders minor units as a human amount, e.g. "USD 1000.00".
func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}

// render selects the fixed title/message template for the event type
// and fills it, returning the title, message and structured metadata
// that both channels share.  The external-channel document (HTML or
// plaintext body) is the Renderer collaborator's job, not render's.
func render(ev Event) (title, message string, metadata map[string]any, err error) {
	switch ev.Type {
	case model.NotifReservationConfirmed:
		r := ev.Reservation
		if r == nil {
			return "", "", nil, fmt.Errorf("event %s missing reservation payload", ev.Type)
		}
		title = "Reservation Confirmed"
		message = fmt.Sprintf(
			"Your reservation %s for %s at %s is confirmed. Check-in %s, check-out %s. Total %s.",
			r.ConfirmationCode, r.ServiceName, r.VenueName,
			r.CheckIn.Format("Mon, 02 Jan 2006 15:04"),
			r.CheckOut.Format("Mon, 02 Jan 2006 15:04"),
			formatAmount(r.TotalCents, r.Currency),
		)
		metadata = reservationMetadata(ev.ReservationID, r)

	case model.NotifReservationCancelled:
		r := ev.Reservation
		if r == nil {
			return "", "", nil, fmt.Errorf("event %s missing reservation payload", ev.Type)
		}
		title = "Reservation Cancelled"
		message = fmt.Sprintf(
			"Your reservation %s for %s at %s has been cancelled. Refund: %s (%s).",
			r.ConfirmationCode, r.ServiceName, r.VenueName,
			formatAmount(r.RefundCents, r.Currency), r.RefundStatus,
		)
		metadata = reservationMetadata(ev.ReservationID, r)
		metadata["refund_cents"] = r.RefundCents
		metadata["refund_status"] = r.RefundStatus
		if r.CancelReason != "" {
			metadata["cancel_reason"] = r.CancelReason
		}

	case model.NotifPaymentConfirmed:
		p := ev.Payment
		if p == nil {
			return "", "", nil, fmt.Errorf("event %s missing payment payload", ev.Type)
		}
		title = "Payment Confirmed"
		message = fmt.Sprintf(
			"We received your payment of %s via %s for reservation %s on %s. Transaction %s.",
			formatAmount(p.AmountCents, p.Currency), p.Method, p.ConfirmationCode,
			p.PaidAt.Format("Mon, 02 Jan 2006"), p.TransactionRef,
		)
		metadata = map[string]any{
			"reservation_id":    ev.ReservationID,
			"confirmation_code": p.ConfirmationCode,
			"amount_cents":      p.AmountCents,
			"currency":          p.Currency,
			"method":            p.Method,
			"transaction_ref":   p.TransactionRef,
			"paid_at":           p.PaidAt.UTC().Format(time.RFC3339),
		}

	case model.NotifCheckInReminder:
		r := ev.Reservation
		if r == nil {
			return "", "", nil, fmt.Errorf("event %s missing reservation payload", ev.Type)
		}
		title = "Check-in Reminder"
		message = fmt.Sprintf(
			"Reminder: your reservation %s for %s at %s checks in on %s.",
			r.ConfirmationCode, r.ServiceName, r.VenueName,
			r.CheckIn.Format("Mon, 02 Jan 2006 15:04"),
		)
		metadata = reservationMetadata(ev.ReservationID, r)

	case model.NotifSystem:
		a := ev.Alert
		if a == nil {
			return "", "", nil, fmt.Errorf("event %s missing alert payload", ev.Type)
		}
		title = a.Subject
		message = a.Message
		metadata = map[string]any{"reservation_id": ev.ReservationID}
		for k, v := range a.Metadata {
			metadata[k] = v
		}

	default:
		return "", "", nil, fmt.Errorf("unknown notification type %q", ev.Type)
	}
	return title, message, metadata, nil
}

func reservationMetadata(id uint64, r *ReservationInfo) map[string]any {
	return map[string]any{
		"reservation_id":    id,
		"confirmation_code": r.ConfirmationCode,
		"venue_name":        r.VenueName,
		"service_name":      r.ServiceName,
		"check_in":          r.CheckIn.UTC().Format(time.RFC3339),
		"check_out":         r.CheckOut.UTC().Format(time.RFC3339),
		"total_cents":       r.TotalCents,
		"currency":          r.Currency,
	}
}
