package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuora/venue-reservation/internal/model"
)

func TestCanTransitionTable(t *testing.T) {
	legal := []struct{ from, to model.ReservationStatus }{
		{model.StatusPending, model.StatusConfirmed},
		{model.StatusPending, model.StatusCancelled},
		{model.StatusConfirmed, model.StatusCheckedIn},
		{model.StatusConfirmed, model.StatusCancelled},
		{model.StatusCheckedIn, model.StatusCheckedOut},
		{model.StatusCheckedIn, model.StatusNoShow},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct{ from, to model.ReservationStatus }{
		{model.StatusPending, model.StatusCheckedIn},
		{model.StatusPending, model.StatusCheckedOut},
		{model.StatusConfirmed, model.StatusPending},
		{model.StatusCheckedIn, model.StatusCancelled},
		{model.StatusCheckedOut, model.StatusCancelled},
		{model.StatusCancelled, model.StatusConfirmed},
		{model.StatusNoShow, model.StatusCancelled},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestApplyTransitionRecordsStatus(t *testing.T) {
	r := &model.Reservation{Status: model.StatusPending}

	require.NoError(t, ApplyTransition(r, model.StatusConfirmed))
	assert.Equal(t, model.StatusConfirmed, r.Status)

	require.NoError(t, ApplyTransition(r, model.StatusCheckedIn))
	require.NoError(t, ApplyTransition(r, model.StatusCheckedOut))
	assert.True(t, r.Status.Terminal())
}

func TestApplyTransitionDoubleCancel(t *testing.T) {
	r := &model.Reservation{Status: model.StatusPending}
	require.NoError(t, ApplyTransition(r, model.StatusCancelled))

	// Simulate the caller stamping the cancellation outcome.
	refund := int64(50000)
	status := model.RefundPending
	cancelledAt := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	r.RefundCents = &refund
	r.RefundStatus = &status
	r.CancelledAt = &cancelledAt

	err := ApplyTransition(r, model.StatusCancelled)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	// The repeat must leave the first cancellation's outcome intact.
	assert.Equal(t, model.StatusCancelled, r.Status)
	assert.Equal(t, int64(50000), *r.RefundCents)
	assert.Equal(t, model.RefundPending, *r.RefundStatus)
	assert.Equal(t, cancelledAt, *r.CancelledAt)
}

func TestApplyTransitionCancelGuards(t *testing.T) {
	checkedOut := &model.Reservation{Status: model.StatusCheckedOut}
	assert.ErrorIs(t, ApplyTransition(checkedOut, model.StatusCancelled), ErrCannotCancelCompleted)
	assert.Equal(t, model.StatusCheckedOut, checkedOut.Status)

	noShow := &model.Reservation{Status: model.StatusNoShow}
	assert.ErrorIs(t, ApplyTransition(noShow, model.StatusCancelled), ErrInvalidTransition)
	assert.Equal(t, model.StatusNoShow, noShow.Status)
}

func TestApplyTransitionRejectsIllegalMove(t *testing.T) {
	r := &model.Reservation{Status: model.StatusPending}
	err := ApplyTransition(r, model.StatusCheckedOut)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.StatusPending, r.Status, "failed transition must not mutate the reservation")
}
