package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/venuora/venue-reservation/internal/model"
)

func TestComputeRefundTiers(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		totalCents int64
		until      time.Duration
		wantRefund int64
		wantStatus model.RefundStatus
	}{
		{"well beyond 48h refunds everything", 100000, 72 * time.Hour, 100000, model.RefundPending},
		{"just over 48h refunds everything", 100000, 48*time.Hour + time.Minute, 100000, model.RefundPending},
		{"exactly 48h falls into the half tier", 100000, 48 * time.Hour, 50000, model.RefundPending},
		{"30h refunds half", 100000, 30 * time.Hour, 50000, model.RefundPending},
		{"just over 24h refunds half", 100000, 24*time.Hour + time.Second, 50000, model.RefundPending},
		{"exactly 24h refunds nothing", 100000, 24 * time.Hour, 0, model.RefundCompleted},
		{"same day refunds nothing", 80000, 2 * time.Hour, 0, model.RefundCompleted},
		{"past check-in refunds nothing", 50000, -3 * time.Hour, 0, model.RefundCompleted},
		{"zero total beyond 48h needs no execution", 0, 72 * time.Hour, 0, model.RefundCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ComputeRefund(tc.totalCents, now.Add(tc.until), now)
			assert.Equal(t, tc.wantRefund, q.RefundCents)
			assert.Equal(t, tc.wantStatus, q.Status)
		})
	}
}

func TestComputeRefundIsDeterministic(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	checkIn := now.Add(48 * time.Hour)

	first := ComputeRefund(100000, checkIn, now)
	second := ComputeRefund(100000, checkIn, now)
	assert.Equal(t, first, second)
}

func TestComputeRefundOddCentStaysWithVenue(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	q := ComputeRefund(99999, now.Add(30*time.Hour), now)
	assert.Equal(t, int64(49999), q.RefundCents)
}

func TestComputeRefundNeverExceedsTotal(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	for _, until := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour, 30 * time.Hour, 48 * time.Hour, 100 * time.Hour} {
		q := ComputeRefund(77700, now.Add(until), now)
		assert.LessOrEqual(t, q.RefundCents, int64(77700))
		assert.GreaterOrEqual(t, q.RefundCents, int64(0))
	}
}
