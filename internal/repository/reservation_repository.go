package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/venuora/venue-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and their
// payments.  Status-changing updates are conditional on the expected
// current status, so concurrent transitions for the same reservation
// serialize at the database instead of clobbering each other.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo constructs a ReservationRepo over an open database.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

const reservationCols = `id, confirmation_code, user_id, service_id, venue_id,
       check_in, check_out, status, total_cents, currency,
       refund_cents, refund_status, cancel_reason, cancelled_at,
       created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		res          model.Reservation
		refundStatus sql.NullString
	)
	err := row.Scan(
		&res.ID, &res.ConfirmationCode, &res.UserID, &res.ServiceID, &res.VenueID,
		&res.CheckIn, &res.CheckOut, &res.Status, &res.TotalCents, &res.Currency,
		&res.RefundCents, &refundStatus, &res.CancelReason, &res.CancelledAt,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if refundStatus.Valid {
		rs := model.RefundStatus(refundStatus.String)
		res.RefundStatus = &rs
	}
	return &res, nil
}

// Create inserts a new reservation and fills in its generated ID.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
        (confirmation_code, user_id, service_id, venue_id, check_in, check_out,
         status, total_cents, currency)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.ConfirmationCode, res.UserID, res.ServiceID, res.VenueID,
		res.CheckIn, res.CheckOut, res.Status, res.TotalCents, res.Currency)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID loads a reservation by primary key.  Returns ErrNotFound
// when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

// ListByUser returns all reservations owned by the given user, newest
// first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
        WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// UpdateStatus performs a compare-and-swap status change: the row is
// updated only while its status still equals from.  Returns ErrStale
// when the row exists but the status moved on, so the caller can
// re-read and classify (e.g. a concurrent cancellation).
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus) error {
	const q = `UPDATE reservations SET status = ?, updated_at = NOW()
        WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return err
	}
	return r.classify(ctx, result, id)
}

// Cancel atomically cancels a reservation: status, refund amount and
// status, cancel reason and cancelled_at are written in one
// conditional update guarded by the expected current status.  Either
// the whole cancellation commits or nothing does; cancelled_at is
// therefore set exactly once.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64, from model.ReservationStatus,
	refundCents int64, refundStatus model.RefundStatus, reason *string, cancelledAt time.Time) error {
	const q = `UPDATE reservations
        SET status = ?, refund_cents = ?, refund_status = ?,
            cancel_reason = ?, cancelled_at = ?, updated_at = NOW()
        WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q,
		model.StatusCancelled, refundCents, refundStatus, reason, cancelledAt, id, from)
	if err != nil {
		return err
	}
	return r.classify(ctx, result, id)
}

// classify turns a zero-row conditional update into ErrStale or
// ErrNotFound depending on whether the row still exists.
func (r *ReservationRepo) classify(ctx context.Context, result sql.Result, id uint64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrStale
}

// CreatePayment records a completed payment for a reservation.
func (r *ReservationRepo) CreatePayment(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments
        (reservation_id, amount_cents, currency, method, transaction_ref, paid_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		p.ReservationID, p.AmountCents, p.Currency, p.Method, p.TransactionRef, p.PaidAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Detail is a reservation joined with the read-only context needed to
// fill notification templates and API responses: guest identity plus
// the venue and service rows the reservation points at.
type Detail struct {
	Reservation model.Reservation `json:"reservation"`
	GuestEmail  string            `json:"guest_email"`
	GuestName   string            `json:"guest_name"`
	Venue       model.Venue       `json:"venue"`
	Service     model.Service     `json:"service"`
}

// GetDetail loads a reservation together with guest, venue and
// service context in one query.  Returns ErrNotFound when the
// reservation does not exist.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*Detail, error) {
	const q = `SELECT r.id, r.confirmation_code, r.user_id, r.service_id, r.venue_id,
               r.check_in, r.check_out, r.status, r.total_cents, r.currency,
               r.refund_cents, r.refund_status, r.cancel_reason, r.cancelled_at,
               r.created_at, r.updated_at,
               u.email, u.full_name,
               v.id, v.name, v.city, v.address,
               s.id, s.venue_id, s.name, s.price_cents, s.currency
        FROM reservations r
        JOIN users u ON u.id = r.user_id
        JOIN venues v ON v.id = r.venue_id
        JOIN services s ON s.id = r.service_id
        WHERE r.id = ?`
	var (
		d            Detail
		refundStatus sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.Reservation.ID, &d.Reservation.ConfirmationCode, &d.Reservation.UserID,
		&d.Reservation.ServiceID, &d.Reservation.VenueID,
		&d.Reservation.CheckIn, &d.Reservation.CheckOut, &d.Reservation.Status,
		&d.Reservation.TotalCents, &d.Reservation.Currency,
		&d.Reservation.RefundCents, &refundStatus, &d.Reservation.CancelReason,
		&d.Reservation.CancelledAt, &d.Reservation.CreatedAt, &d.Reservation.UpdatedAt,
		&d.GuestEmail, &d.GuestName,
		&d.Venue.ID, &d.Venue.Name, &d.Venue.City, &d.Venue.Address,
		&d.Service.ID, &d.Service.VenueID, &d.Service.Name,
		&d.Service.PriceCents, &d.Service.Currency,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if refundStatus.Valid {
		rs := model.RefundStatus(refundStatus.String)
		d.Reservation.RefundStatus = &rs
	}
	return &d, nil
}
