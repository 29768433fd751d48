package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuora/venue-reservation/internal/model"
	"github.com/venuora/venue-reservation/internal/repository"
)

// notificationStore is the slice of repository.NotificationRepo the
// handler needs.
type notificationStore interface {
	ListByUser(ctx context.Context, userID uint64, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id string, userID uint64) error
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationHandler serves the in-app notification channel: listing,
// mark-read and the administrative age-based cleanup.  Records are
// created only by the dispatcher; nothing here writes new ones.
type NotificationHandler struct {
	repo notificationStore
	now  func() time.Time
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(repo notificationStore) *NotificationHandler {
	if repo == nil {
		panic("nil repository passed to NewNotificationHandler")
	}
	return &NotificationHandler{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List handles GET /v1/notifications.  The optional ?unread=1 query
// parameter restricts the result to unread records.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unread := c.QueryParam("unread") == "1" || c.QueryParam("unread") == "true"
	items, err := h.repo.ListByUser(c.Request().Context(), userID, unread)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MarkRead handles PATCH /v1/notifications/:id/read.  Ownership is
// enforced by the store: marking someone else's notification reports
// 404.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.repo.MarkRead(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notification"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	n, err := h.repo.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Cleanup handles DELETE /v1/admin/notifications.  The required
// older_than_days query parameter sets the age cutoff; everything
// created before it is deleted.  Admin role is enforced by routing
// middleware.
func (h *NotificationHandler) Cleanup(c echo.Context) error {
	days, err := strconv.Atoi(c.QueryParam("older_than_days"))
	if err != nil || days <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "older_than_days must be a positive integer"})
	}
	cutoff := h.now().AddDate(0, 0, -days)
	n, err := h.repo.DeleteOlderThan(c.Request().Context(), cutoff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
