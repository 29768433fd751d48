package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuora/venue-reservation/internal/model"
	"github.com/venuora/venue-reservation/internal/notify"
)

// stubDispatcher records every dispatch and answers with a canned
// per-recipient result.
type stubDispatcher struct {
	results map[uint64]notify.Result // keyed by recipient user id
	calls   []struct {
		To notify.Recipient
		Ev notify.Event
	}
}

func (s *stubDispatcher) Dispatch(_ context.Context, to notify.Recipient, ev notify.Event) notify.Result {
	s.calls = append(s.calls, struct {
		To notify.Recipient
		Ev notify.Event
	}{to, ev})
	return s.results[to.UserID]
}

func okResult() notify.Result {
	return notify.Result{
		Message:        notify.ChannelResult{OK: true},
		Record:         notify.ChannelResult{OK: true},
		OverallSuccess: true,
	}
}

func failedResult() notify.Result {
	return notify.Result{
		Message: notify.ChannelResult{Err: "smtp down"},
		Record:  notify.ChannelResult{OK: true},
	}
}

func testReservationEvent(admin *notify.Recipient) ReservationEvent {
	return ReservationEvent{
		ReservationID: 42,
		Guest:         notify.Recipient{UserID: 7, Email: "guest@example.com"},
		Admin:         admin,
		Info: notify.ReservationInfo{
			ConfirmationCode: "A1B2C3D4",
			VenueName:        "Harbor View",
			ServiceName:      "Deluxe Room",
			CheckIn:          time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC),
			CheckOut:         time.Date(2025, 6, 12, 11, 0, 0, 0, time.UTC),
			TotalCents:       100000,
			Currency:         "USD",
		},
	}
}

func TestOnReservationCreatedNotifiesGuestAndAdmin(t *testing.T) {
	admin := &notify.Recipient{UserID: 1, Email: "ops@example.com"}
	d := &stubDispatcher{results: map[uint64]notify.Result{7: okResult(), 1: okResult()}}
	c := NewCoordinator(d, zerolog.Nop())

	res := c.OnReservationCreated(context.Background(), testReservationEvent(admin))

	assert.True(t, res.Success)
	assert.True(t, res.GuestNotified)
	assert.True(t, res.AdminNotified)
	require.Len(t, d.calls, 2)
	assert.Equal(t, model.NotifReservationConfirmed, d.calls[0].Ev.Type)
	assert.Equal(t, uint64(7), d.calls[0].To.UserID)
	assert.Equal(t, model.NotifSystem, d.calls[1].Ev.Type)
	assert.Equal(t, uint64(1), d.calls[1].To.UserID)
	require.NotNil(t, d.calls[1].Ev.Alert)
	assert.Equal(t, "A1B2C3D4", d.calls[1].Ev.Alert.Metadata["confirmation_code"])
}

func TestOnReservationCancelledWithoutAdmin(t *testing.T) {
	d := &stubDispatcher{results: map[uint64]notify.Result{7: okResult()}}
	c := NewCoordinator(d, zerolog.Nop())

	res := c.OnReservationCancelled(context.Background(), testReservationEvent(nil))

	assert.True(t, res.Success)
	assert.True(t, res.GuestNotified)
	assert.False(t, res.AdminNotified)
	assert.Nil(t, res.Admin)
	require.Len(t, d.calls, 1)
	assert.Equal(t, model.NotifReservationCancelled, d.calls[0].Ev.Type)
}

func TestAdminFailureDoesNotFlipSuccess(t *testing.T) {
	admin := &notify.Recipient{UserID: 1, Email: "ops@example.com"}
	d := &stubDispatcher{results: map[uint64]notify.Result{7: okResult(), 1: failedResult()}}
	c := NewCoordinator(d, zerolog.Nop())

	res := c.OnReservationCancelled(context.Background(), testReservationEvent(admin))

	assert.True(t, res.Success, "success reflects the guest dispatch alone")
	assert.True(t, res.GuestNotified)
	assert.False(t, res.AdminNotified)
	require.NotNil(t, res.Admin)
	assert.False(t, res.Admin.OverallSuccess)
}

func TestGuestFailureIsAbsorbedNotEscalated(t *testing.T) {
	d := &stubDispatcher{results: map[uint64]notify.Result{7: failedResult()}}
	c := NewCoordinator(d, zerolog.Nop())

	res := c.OnReservationCancelled(context.Background(), testReservationEvent(nil))

	assert.False(t, res.Success)
	assert.False(t, res.GuestNotified)
	assert.True(t, res.Guest.Record.OK, "in-app record still reached the store")
}

func TestOnPaymentConfirmedBuildsPaymentEvent(t *testing.T) {
	d := &stubDispatcher{results: map[uint64]notify.Result{7: okResult()}}
	c := NewCoordinator(d, zerolog.Nop())

	res := c.OnPaymentConfirmed(context.Background(), PaymentEvent{
		ReservationID: 42,
		Guest:         notify.Recipient{UserID: 7},
		Info: notify.PaymentInfo{
			ConfirmationCode: "A1B2C3D4",
			AmountCents:      100000,
			Currency:         "USD",
			Method:           "card",
			TransactionRef:   "tx-123",
			PaidAt:           time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
	})

	assert.True(t, res.Success)
	require.Len(t, d.calls, 1)
	assert.Equal(t, model.NotifPaymentConfirmed, d.calls[0].Ev.Type)
	require.NotNil(t, d.calls[0].Ev.Payment)
	assert.Equal(t, "tx-123", d.calls[0].Ev.Payment.TransactionRef)
}

func TestSendCheckInReminderIsGuestOnly(t *testing.T) {
	admin := &notify.Recipient{UserID: 1}
	d := &stubDispatcher{results: map[uint64]notify.Result{7: okResult(), 1: okResult()}}
	c := NewCoordinator(d, zerolog.Nop())

	res := c.SendCheckInReminder(context.Background(), testReservationEvent(admin))

	assert.True(t, res.Success)
	assert.False(t, res.AdminNotified)
	require.Len(t, d.calls, 1, "reminders go to the guest only")
	assert.Equal(t, model.NotifCheckInReminder, d.calls[0].Ev.Type)
}
