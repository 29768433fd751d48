package reservation

import (
	"time"

	"github.com/venuora/venue-reservation/internal/model"
)

// RefundQuote is the outcome of the refund policy: the amount to
// return and the proposed refund status.  The status is COMPLETED
// when nothing is owed (no external execution needed) and PENDING
// otherwise; the caller may later advance PENDING to PROCESSING,
// COMPLETED or FAILED once the external refund execution resolves.
type RefundQuote struct {
	RefundCents int64
	Status      model.RefundStatus
}

// ComputeRefund applies the time-based refund tiers to a cancellation.
// Tiers are computed on the hours remaining until check-in:
//
//	more than 48h          -> 100% of the total
//	more than 24h, up to 48 -> 50% of the total
//	24h or less (incl. past check-in) -> no refund
//
// Both boundaries are strict greater-than: a cancellation at exactly
// 48.0 hours falls into the 50% tier and at exactly 24.0 hours into
// the 0% tier.  Check-in times in the past are not guarded against;
// they simply land in the no-refund tier.  The function is pure: the
// caller supplies the clock, so identical inputs always yield the
// identical quote.  The 50% tier halves with integer division, so an
// odd cent stays with the venue.
func ComputeRefund(totalCents int64, checkIn, now time.Time) RefundQuote {
	hours := checkIn.Sub(now).Hours()

	var refund int64
	switch {
	case hours > 48:
		refund = totalCents
	case hours > 24:
		refund = totalCents / 2
	default:
		refund = 0
	}

	status := model.RefundPending
	if refund == 0 {
		status = model.RefundCompleted
	}
	return RefundQuote{RefundCents: refund, Status: status}
}
