package model

import "time"

// NotificationType enumerates the kinds of in-app notifications the
// dispatcher can create.  Values are stored as-is in the database and
// exposed verbatim through the API.
type NotificationType string

const (
	NotifReservationConfirmed NotificationType = "RESERVATION_CONFIRMED"
	NotifReservationCancelled NotificationType = "RESERVATION_CANCELLED"
	NotifPaymentConfirmed     NotificationType = "PAYMENT_CONFIRMED"
	NotifCheckInReminder      NotificationType = "CHECK_IN_REMINDER"
	NotifSystem               NotificationType = "SYSTEM"
)

// Notification is the persisted in-app record of a lifecycle event.
// It is created by the notification dispatcher as a side effect of a
// lifecycle event and afterwards mutated only by the user marking it
// read or by the administrative age-based cleanup.
//
// Fields:
//
//	ID        – primary key identifier (UUID).
//	UserID    – owning user.
//	Type      – event kind, see NotificationType.
//	Title     – short fixed title for the event kind.
//	Message   – filled template text describing the event.
//	Metadata  – event-specific structured fields (reservation id,
//	            amount, venue name, ...), stored as JSON.
//	IsRead    – whether the user has seen the notification.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last mutation timestamp (mark-read).
type Notification struct {
	ID        string           `json:"id"`         // notifications.id
	UserID    uint64           `json:"user_id"`    // notifications.user_id
	Type      NotificationType `json:"type"`       // notifications.type
	Title     string           `json:"title"`      // notifications.title
	Message   string           `json:"message"`    // notifications.message
	Metadata  map[string]any   `json:"metadata"`   // notifications.metadata (JSON column)
	IsRead    bool             `json:"is_read"`    // notifications.is_read
	CreatedAt time.Time        `json:"created_at"` // notifications.created_at
	UpdatedAt time.Time        `json:"updated_at"` // notifications.updated_at
}
