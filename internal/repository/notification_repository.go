package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/venuora/venue-reservation/internal/model"
)

// NotificationRepo persists in-app notification records.  The table
// is append-mostly: dispatch creates rows, users mark them read, and
// an administrative cleanup deletes old ones.  No cross-record
// coordination is needed.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo constructs a NotificationRepo over an open database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create inserts a notification record.  Metadata is stored as JSON.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return err
	}
	const q = `INSERT INTO notifications
        (id, user_id, type, title, message, metadata, is_read, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		n.ID, n.UserID, n.Type, n.Title, n.Message, meta, n.IsRead, n.CreatedAt, n.UpdatedAt)
	return err
}

// ListByUser returns the user's notifications, newest first.  When
// unreadOnly is set, read notifications are filtered out.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, unreadOnly bool) ([]*model.Notification, error) {
	q := `SELECT id, user_id, type, title, message, metadata, is_read, created_at, updated_at
        FROM notifications WHERE user_id = ?`
	if unreadOnly {
		q += ` AND is_read = FALSE`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Notification, 0)
	for rows.Next() {
		var (
			n    model.Notification
			meta []byte
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&meta, &n.IsRead, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &n.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification as read.  The user id guards
// ownership: marking someone else's notification reports ErrNotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string, userID uint64) error {
	const q = `UPDATE notifications SET is_read = TRUE, updated_at = NOW()
        WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read and
// returns how many were affected.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	const q = `UPDATE notifications SET is_read = TRUE, updated_at = NOW()
        WHERE user_id = ? AND is_read = FALSE`
	result, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteOlderThan removes notifications created before the cutoff and
// returns how many were deleted.  Used by the administrative cleanup.
func (r *NotificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM notifications WHERE created_at < ?`
	result, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
