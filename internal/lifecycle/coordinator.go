// Package lifecycle translates completed domain events (reservation
// created, cancelled, payment confirmed) into notification dispatches.
// The coordinator never mutates reservation state: the state
// transition is the caller's job and must be durably committed before
// any handler here runs, so recipients never hear about a state that
// did not take effect.
package lifecycle

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/venuora/venue-reservation/internal/model"
	"github.com/venuora/venue-reservation/internal/notify"
)

// dispatcher is the slice of notify.Dispatcher the coordinator needs.
type dispatcher interface {
	Dispatch(ctx context.Context, to notify.Recipient, ev notify.Event) notify.Result
}

// ReservationEvent is the payload for reservation-scoped lifecycle
// events.  Admin is optional: when nil, no admin alert is attempted.
type ReservationEvent struct {
	ReservationID uint64
	Guest         notify.Recipient
	Admin         *notify.Recipient
	Info          notify.ReservationInfo
}

// PaymentEvent is the payload for a confirmed payment.
type PaymentEvent struct {
	ReservationID uint64
	Guest         notify.Recipient
	Admin         *notify.Recipient
	Info          notify.PaymentInfo
}

// Result aggregates the dispatch outcomes of one lifecycle event.
// Success reflects the guest dispatch alone; an admin-channel failure
// or an absent admin never flips it.  Dispatch failures are absorbed
// here: callers who already committed the state transition must not
// treat "notification degraded" as "operation failed".
type Result struct {
	GuestNotified bool           `json:"guest_notified"`
	AdminNotified bool           `json:"admin_notified"`
	Guest         notify.Result  `json:"guest"`
	Admin         *notify.Result `json:"admin,omitempty"`
	Success       bool           `json:"success"`
}

// Coordinator orchestrates notification dispatch for lifecycle
// events.  It is stateless between invocations; all collaborators are
// injected at construction.
type Coordinator struct {
	dispatcher dispatcher
	log        zerolog.Logger
}

// NewCoordinator constructs a Coordinator around a dispatcher.
func NewCoordinator(d dispatcher, log zerolog.Logger) *Coordinator {
	if d == nil {
		panic("nil dispatcher passed to NewCoordinator")
	}
	return &Coordinator{
		dispatcher: d,
		log:        log.With().Str("component", "lifecycle").Logger(),
	}
}

// OnReservationCreated notifies the guest that the reservation is
// confirmed and, when an admin recipient is supplied, alerts the
// admin about the new reservation.
func (c *Coordinator) OnReservationCreated(ctx context.Context, ev ReservationEvent) Result {
	return c.run(ctx, ev, model.NotifReservationConfirmed, "New reservation")
}

// OnReservationCancelled notifies the guest of the cancellation and
// the computed refund, plus an optional admin alert.
func (c *Coordinator) OnReservationCancelled(ctx context.Context, ev ReservationEvent) Result {
	return c.run(ctx, ev, model.NotifReservationCancelled, "Reservation cancelled")
}

// OnPaymentConfirmed notifies the guest that a payment was received,
// plus an optional admin alert.
func (c *Coordinator) OnPaymentConfirmed(ctx context.Context, ev PaymentEvent) Result {
	guestEv := notify.Event{
		Type:          model.NotifPaymentConfirmed,
		ReservationID: ev.ReservationID,
		Payment:       &ev.Info,
	}
	res := Result{Guest: c.dispatcher.Dispatch(ctx, ev.Guest, guestEv)}
	res.GuestNotified = res.Guest.OverallSuccess
	res.Success = res.Guest.OverallSuccess
	if ev.Admin != nil {
		admin := c.adminAlert(ctx, *ev.Admin, ev.ReservationID, "Payment received", map[string]any{
			"confirmation_code": ev.Info.ConfirmationCode,
			"amount_cents":      ev.Info.AmountCents,
			"currency":          ev.Info.Currency,
			"transaction_ref":   ev.Info.TransactionRef,
		})
		res.Admin = &admin
		res.AdminNotified = admin.OverallSuccess
	}
	c.logResult("payment_confirmed", ev.ReservationID, res)
	return res
}

// SendCheckInReminder dispatches a reminder to the guest only.  It is
// typically invoked by an external scheduler ahead of check-in.
func (c *Coordinator) SendCheckInReminder(ctx context.Context, ev ReservationEvent) Result {
	guestEv := notify.Event{
		Type:          model.NotifCheckInReminder,
		ReservationID: ev.ReservationID,
		Reservation:   &ev.Info,
	}
	res := Result{Guest: c.dispatcher.Dispatch(ctx, ev.Guest, guestEv)}
	res.GuestNotified = res.Guest.OverallSuccess
	res.Success = res.Guest.OverallSuccess
	c.logResult("check_in_reminder", ev.ReservationID, res)
	return res
}

// run covers the two reservation-scoped handlers that share a shape:
// a guest dispatch of the given type and an optional admin alert.
func (c *Coordinator) run(ctx context.Context, ev ReservationEvent, typ model.NotificationType, adminSubject string) Result {
	guestEv := notify.Event{
		Type:          typ,
		ReservationID: ev.ReservationID,
		Reservation:   &ev.Info,
	}
	res := Result{Guest: c.dispatcher.Dispatch(ctx, ev.Guest, guestEv)}
	res.GuestNotified = res.Guest.OverallSuccess
	res.Success = res.Guest.OverallSuccess

	if ev.Admin != nil {
		admin := c.adminAlert(ctx, *ev.Admin, ev.ReservationID, adminSubject, map[string]any{
			"confirmation_code": ev.Info.ConfirmationCode,
			"venue_name":        ev.Info.VenueName,
			"service_name":      ev.Info.ServiceName,
			"guest_email":       ev.Guest.Email,
		})
		res.Admin = &admin
		res.AdminNotified = admin.OverallSuccess
	}
	c.logResult(string(typ), ev.ReservationID, res)
	return res
}

func (c *Coordinator) adminAlert(ctx context.Context, to notify.Recipient, reservationID uint64, subject string, meta map[string]any) notify.Result {
	msg := subject
	if code, _ := meta["confirmation_code"].(string); code != "" {
		msg = subject + " for reservation " + code
	}
	return c.dispatcher.Dispatch(ctx, to, notify.Event{
		Type:          model.NotifSystem,
		ReservationID: reservationID,
		Alert: &notify.AdminAlert{
			Subject:  subject,
			Message:  msg,
			Metadata: meta,
		},
	})
}

func (c *Coordinator) logResult(event string, reservationID uint64, res Result) {
	c.log.Info().
		Str("event", event).
		Uint64("reservation_id", reservationID).
		Bool("guest_notified", res.GuestNotified).
		Bool("admin_notified", res.AdminNotified).
		Bool("success", res.Success).
		Msg("lifecycle event handled")
}
