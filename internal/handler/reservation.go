package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/venuora/venue-reservation/internal/lifecycle"
	"github.com/venuora/venue-reservation/internal/model"
	"github.com/venuora/venue-reservation/internal/notify"
	"github.com/venuora/venue-reservation/internal/queue"
	"github.com/venuora/venue-reservation/internal/repository"
	"github.com/venuora/venue-reservation/internal/reservation"
)

// reservationStore is the slice of repository.ReservationRepo the
// handler needs; tests substitute an in-memory implementation.
type reservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) error
	Cancel(ctx context.Context, id uint64, from model.ReservationStatus,
		refundCents int64, refundStatus model.RefundStatus, reason *string, cancelledAt time.Time) error
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetDetail(ctx context.Context, id uint64) (*repository.Detail, error)
}

// coordinator mirrors lifecycle.Coordinator.
type coordinator interface {
	OnReservationCreated(ctx context.Context, ev lifecycle.ReservationEvent) lifecycle.Result
	OnReservationCancelled(ctx context.Context, ev lifecycle.ReservationEvent) lifecycle.Result
	OnPaymentConfirmed(ctx context.Context, ev lifecycle.PaymentEvent) lifecycle.Result
	SendCheckInReminder(ctx context.Context, ev lifecycle.ReservationEvent) lifecycle.Result
}

// cancelLocker mirrors lock.Locker.
type cancelLocker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

// eventPublisher mirrors queue.Publisher.
type eventPublisher interface {
	Publish(ctx context.Context, event queue.LifecycleEvent) error
}

// ReservationHandler serves the reservation lifecycle endpoints.  The
// state transition is committed at the store before the coordinator is
// invoked, so no recipient ever sees a notification for a state that
// did not take effect.  Dispatch and broker degradation never fail a
// committed operation.
type ReservationHandler struct {
	repo      reservationStore
	coord     coordinator
	locker    cancelLocker
	publisher eventPublisher
	admin     *notify.Recipient // optional admin alert recipient
	now       func() time.Time
}

// NewReservationHandler constructs a ReservationHandler.  admin may be
// nil, in which case no admin alerts are dispatched.
func NewReservationHandler(repo reservationStore, coord coordinator, locker cancelLocker,
	publisher eventPublisher, admin *notify.Recipient) *ReservationHandler {
	if repo == nil || coord == nil || locker == nil || publisher == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{
		repo:      repo,
		coord:     coord,
		locker:    locker,
		publisher: publisher,
		admin:     admin,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// newConfirmationCode returns a short human-readable reservation code,
// e.g. "A1B2C3D4".
func newConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create handles POST /v1/reservations.  It stores a PENDING
// reservation for the authenticated guest and dispatches the
// confirmation notification (plus optional admin alert) afterwards.
// Returns 201 with the reservation and the dispatch flags.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ServiceID  uint64    `json:"service_id"`
		VenueID    uint64    `json:"venue_id"`
		CheckIn    time.Time `json:"check_in"`
		CheckOut   time.Time `json:"check_out"`
		TotalCents int64     `json:"total_cents"`
		Currency   string    `json:"currency"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ServiceID == 0 || body.VenueID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id and venue_id are required"})
	}
	if !body.CheckOut.After(body.CheckIn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
	}
	if body.TotalCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_cents must not be negative"})
	}
	if body.Currency == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "currency is required"})
	}

	ctx := c.Request().Context()
	res := &model.Reservation{
		ConfirmationCode: newConfirmationCode(),
		UserID:           userID,
		ServiceID:        body.ServiceID,
		VenueID:          body.VenueID,
		CheckIn:          body.CheckIn.UTC(),
		CheckOut:         body.CheckOut.UTC(),
		Status:           model.StatusPending,
		TotalCents:       body.TotalCents,
		Currency:         body.Currency,
	}
	if err := h.repo.Create(ctx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	result := h.coord.OnReservationCreated(ctx, h.reservationEvent(ctx, res))
	h.publish(ctx, queue.KindReservationConfirmed, res, result)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id":    res.ID,
		"confirmation_code": res.ConfirmationCode,
		"status":            res.Status,
		"guest_notified":    result.GuestNotified,
		"admin_notified":    result.AdminNotified,
	})
}

// List handles GET /v1/reservations.  It returns all reservations of
// the authenticated guest, newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.repo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/reservations/:id.  Guests may only read their
// own reservations; admins may read any.  A reservation owned by
// someone else reports 404, not 403, so ids are not probeable.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if res.UserID != userID && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// Cancel handles POST /v1/reservations/:id/cancel — the cancellation
// command.  The flow is: acquire the per-reservation lock, validate
// the transition, compute the refund, commit everything in one
// conditional update, then dispatch notifications and publish the
// broker event.  The operation either fully succeeds (status changed,
// refund computed, response returned) or fully fails with no partial
// mutation; notification degradation is reported in the response
// flags but never fails the cancellation.
//
// A repeat of an already-applied cancellation returns 200 echoing the
// stored state without re-running refund computation or dispatch.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	// The reason is optional; an empty body binds to the zero value.
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	// Serialize concurrent cancellations of the same reservation for
	// the duration of transition + refund computation.
	release, ok := h.locker.Acquire(ctx, fmt.Sprintf("reservation:cancel:%d", id))
	if !ok {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cancellation already in progress"})
	}
	defer release()

	res, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if res.UserID != userID && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	prev := res.Status
	if err := reservation.ApplyTransition(res, model.StatusCancelled); err != nil {
		return h.cancelTransitionError(c, res, err)
	}

	quote := reservation.ComputeRefund(res.TotalCents, res.CheckIn, h.now())
	cancelledAt := h.now()
	var reason *string
	if body.Reason != "" {
		reason = &body.Reason
	}

	err = h.repo.Cancel(ctx, id, prev, quote.RefundCents, quote.Status, reason, cancelledAt)
	if errors.Is(err, repository.ErrStale) {
		// Lost a race despite the lock (e.g. Redis degraded).  Re-read
		// and classify against the fresh state.
		fresh, ferr := h.repo.GetByID(ctx, id)
		if ferr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
		}
		return h.cancelTransitionError(c, fresh, classifyCancel(fresh.Status))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}

	res.RefundCents = &quote.RefundCents
	rs := quote.Status
	res.RefundStatus = &rs
	res.CancelReason = reason
	res.CancelledAt = &cancelledAt

	result := h.coord.OnReservationCancelled(ctx, h.reservationEvent(ctx, res))
	h.publish(ctx, queue.KindReservationCancelled, res, result)

	return c.JSON(http.StatusOK, cancelResponse(res, &result))
}

// classifyCancel maps a concurrent-transition loser's fresh status to
// the same typed errors ApplyTransition would have produced.
func classifyCancel(s model.ReservationStatus) error {
	switch s {
	case model.StatusCancelled:
		return reservation.ErrAlreadyCancelled
	case model.StatusCheckedOut:
		return reservation.ErrCannotCancelCompleted
	default:
		return reservation.ErrInvalidTransition
	}
}

// cancelTransitionError renders the failure of a cancellation
// transition.  AlreadyCancelled is a no-op confirmation: the stored
// cancellation is echoed back with 200 and nothing is re-dispatched.
func (h *ReservationHandler) cancelTransitionError(c echo.Context, res *model.Reservation, err error) error {
	switch {
	case errors.Is(err, reservation.ErrAlreadyCancelled):
		return c.JSON(http.StatusOK, cancelResponse(res, nil))
	case errors.Is(err, reservation.ErrCannotCancelCompleted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot cancel a completed reservation"})
	default:
		return c.JSON(http.StatusConflict, echo.Map{
			"error": fmt.Sprintf("cannot cancel a reservation in status %s", res.Status),
		})
	}
}

// cancelResponse builds the cancellation command's success payload.
// result is nil for idempotent repeats, which dispatch nothing.
func cancelResponse(res *model.Reservation, result *lifecycle.Result) echo.Map {
	out := echo.Map{
		"confirmation_code": res.ConfirmationCode,
		"status":            res.Status,
		"cancelled_at":      res.CancelledAt,
		"refund_cents":      res.RefundCents,
		"refund_status":     res.RefundStatus,
		"cancel_reason":     res.CancelReason,
	}
	if result != nil {
		out["guest_notified"] = result.GuestNotified
		out["admin_notified"] = result.AdminNotified
	} else {
		out["already_cancelled"] = true
	}
	return out
}

// ConfirmPayment handles POST /v1/reservations/:id/confirm-payment.
// It records the payment, advances PENDING to CONFIRMED with a
// conditional update and dispatches the payment-confirmed
// notification.  A repeat against an already-CONFIRMED reservation
// returns 200 echoing the stored state without recording a second
// payment or re-dispatching.
func (h *ReservationHandler) ConfirmPayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		AmountCents    int64  `json:"amount_cents"`
		Currency       string `json:"currency"`
		Method         string `json:"method"`
		TransactionRef string `json:"transaction_ref"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.AmountCents <= 0 || body.Method == "" || body.TransactionRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents, method and transaction_ref are required"})
	}

	ctx := c.Request().Context()
	res, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if res.UserID != userID && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	if err := reservation.ApplyTransition(res, model.StatusConfirmed); err != nil {
		// A retried confirmation is a no-op echo of the applied state,
		// mirroring the idempotent-cancel behavior.
		if res.Status == model.StatusConfirmed {
			return c.JSON(http.StatusOK, echo.Map{
				"confirmation_code": res.ConfirmationCode,
				"status":            res.Status,
				"already_confirmed": true,
			})
		}
		return c.JSON(http.StatusConflict, echo.Map{
			"error": fmt.Sprintf("cannot confirm a reservation in status %s", res.Status),
		})
	}
	if err := h.repo.UpdateStatus(ctx, id, model.StatusPending, model.StatusConfirmed); err != nil {
		if errors.Is(err, repository.ErrStale) {
			fresh, ferr := h.repo.GetByID(ctx, id)
			if ferr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
			}
			if fresh.Status == model.StatusConfirmed {
				return c.JSON(http.StatusOK, echo.Map{
					"confirmation_code": fresh.ConfirmationCode,
					"status":            fresh.Status,
					"already_confirmed": true,
				})
			}
			return c.JSON(http.StatusConflict, echo.Map{
				"error": fmt.Sprintf("cannot confirm a reservation in status %s", fresh.Status),
			})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm reservation"})
	}

	if body.Currency == "" {
		body.Currency = res.Currency
	}
	paidAt := h.now()
	payment := &model.Payment{
		ReservationID:  id,
		AmountCents:    body.AmountCents,
		Currency:       body.Currency,
		Method:         body.Method,
		TransactionRef: body.TransactionRef,
		PaidAt:         paidAt,
	}
	if err := h.repo.CreatePayment(ctx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}

	guest, admin := h.recipients(res, h.detail(ctx, id))
	result := h.coord.OnPaymentConfirmed(ctx, lifecycle.PaymentEvent{
		ReservationID: id,
		Guest:         guest,
		Admin:         admin,
		Info: notify.PaymentInfo{
			ConfirmationCode: res.ConfirmationCode,
			AmountCents:      body.AmountCents,
			Currency:         body.Currency,
			Method:           body.Method,
			TransactionRef:   body.TransactionRef,
			PaidAt:           paidAt,
		},
	})
	h.publish(ctx, queue.KindPaymentConfirmed, res, result)

	return c.JSON(http.StatusOK, echo.Map{
		"confirmation_code": res.ConfirmationCode,
		"status":            model.StatusConfirmed,
		"payment_id":        payment.ID,
		"guest_notified":    result.GuestNotified,
		"admin_notified":    result.AdminNotified,
	})
}

// SendReminder handles POST /v1/admin/reminders/:id.  It dispatches a
// check-in reminder for the reservation; the route is the HTTP face
// of the external scheduler trigger.
func (h *ReservationHandler) SendReminder(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	res, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	result := h.coord.SendCheckInReminder(ctx, h.reservationEvent(ctx, res))
	return c.JSON(http.StatusOK, echo.Map{
		"confirmation_code": res.ConfirmationCode,
		"guest_notified":    result.GuestNotified,
	})
}

// detail loads the joined reservation context (guest identity,
// venue/service names).  A failed lookup returns nil: the dispatch
// still proceeds with the bare reservation fields rather than being
// blocked by a read problem.
func (h *ReservationHandler) detail(ctx context.Context, id uint64) *repository.Detail {
	d, err := h.repo.GetDetail(ctx, id)
	if err != nil {
		return nil
	}
	return d
}

// recipients resolves the guest recipient (and the configured admin,
// if any) from the joined detail.
func (h *ReservationHandler) recipients(res *model.Reservation, d *repository.Detail) (notify.Recipient, *notify.Recipient) {
	guest := notify.Recipient{UserID: res.UserID}
	if d != nil {
		guest.Email = d.GuestEmail
		guest.Name = d.GuestName
	}
	return guest, h.admin
}

// reservationEvent assembles the lifecycle payload for a reservation.
func (h *ReservationHandler) reservationEvent(ctx context.Context, res *model.Reservation) lifecycle.ReservationEvent {
	d := h.detail(ctx, res.ID)
	guest, admin := h.recipients(res, d)
	info := notify.ReservationInfo{
		ConfirmationCode: res.ConfirmationCode,
		CheckIn:          res.CheckIn,
		CheckOut:         res.CheckOut,
		TotalCents:       res.TotalCents,
		Currency:         res.Currency,
	}
	if d != nil {
		info.VenueName = d.Venue.Name
		info.ServiceName = d.Service.Name
	}
	if res.RefundCents != nil {
		info.RefundCents = *res.RefundCents
	}
	if res.RefundStatus != nil {
		info.RefundStatus = string(*res.RefundStatus)
	}
	if res.CancelReason != nil {
		info.CancelReason = *res.CancelReason
	}
	return lifecycle.ReservationEvent{
		ReservationID: res.ID,
		Guest:         guest,
		Admin:         admin,
		Info:          info,
	}
}

// publish emits the broker event for a committed lifecycle change.
// Publish failures are already logged inside the publisher and are
// deliberately ignored here.
func (h *ReservationHandler) publish(ctx context.Context, kind string, res *model.Reservation, result lifecycle.Result) {
	ev := queue.LifecycleEvent{
		Kind:             kind,
		ReservationID:    res.ID,
		ConfirmationCode: res.ConfirmationCode,
		UserID:           res.UserID,
		Status:           string(res.Status),
		TotalCents:       res.TotalCents,
		Currency:         res.Currency,
		GuestNotified:    result.GuestNotified,
		OccurredAt:       h.now().Format(time.RFC3339),
	}
	if d := h.detail(ctx, res.ID); d != nil {
		ev.VenueName = d.Venue.Name
		ev.ServiceName = d.Service.Name
	}
	if res.RefundCents != nil {
		ev.RefundCents = *res.RefundCents
	}
	if res.RefundStatus != nil {
		ev.RefundStatus = string(*res.RefundStatus)
	}
	_ = h.publisher.Publish(ctx, ev)
}
