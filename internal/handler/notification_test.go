package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuora/venue-reservation/internal/model"
	"github.com/venuora/venue-reservation/internal/repository"
)

type mockNotificationStore struct {
	mock.Mock
}

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID uint64, unreadOnly bool) ([]*model.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Notification), args.Error(1)
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id string, userID uint64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newNotificationContext(method, target string, userID float64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", model.RoleGuest)
	return c, rec
}

func TestNotificationListPassesUnreadFilter(t *testing.T) {
	repo := new(mockNotificationStore)
	h := NewNotificationHandler(repo)

	repo.On("ListByUser", mock.Anything, uint64(7), true).Return([]*model.Notification{
		{ID: "n-1", UserID: 7, Type: model.NotifReservationConfirmed, Title: "Reservation confirmed"},
	}, nil)

	c, rec := newNotificationContext(http.MethodGet, "/v1/notifications?unread=1", 7)
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reservation confirmed")
	repo.AssertExpectations(t)
}

func TestNotificationMarkRead(t *testing.T) {
	repo := new(mockNotificationStore)
	h := NewNotificationHandler(repo)

	repo.On("MarkRead", mock.Anything, "n-1", uint64(7)).Return(nil)

	c, rec := newNotificationContext(http.MethodPatch, "/v1/notifications/n-1/read", 7)
	c.SetParamNames("id")
	c.SetParamValues("n-1")
	require.NoError(t, h.MarkRead(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNotificationMarkReadForeignRecordReportsNotFound(t *testing.T) {
	repo := new(mockNotificationStore)
	h := NewNotificationHandler(repo)

	repo.On("MarkRead", mock.Anything, "n-1", uint64(7)).Return(repository.ErrNotFound)

	c, rec := newNotificationContext(http.MethodPatch, "/v1/notifications/n-1/read", 7)
	c.SetParamNames("id")
	c.SetParamValues("n-1")
	require.NoError(t, h.MarkRead(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationMarkAllRead(t *testing.T) {
	repo := new(mockNotificationStore)
	h := NewNotificationHandler(repo)

	repo.On("MarkAllRead", mock.Anything, uint64(7)).Return(int64(3), nil)

	c, rec := newNotificationContext(http.MethodPost, "/v1/notifications/read-all", 7)
	require.NoError(t, h.MarkAllRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decodeBody(t, rec)["updated"])
}

func TestNotificationCleanupComputesCutoff(t *testing.T) {
	repo := new(mockNotificationStore)
	h := NewNotificationHandler(repo)
	h.now = func() time.Time { return fixedNow }

	repo.On("DeleteOlderThan", mock.Anything, fixedNow.AddDate(0, 0, -30)).Return(int64(12), nil)

	c, rec := newNotificationContext(http.MethodDelete, "/v1/admin/notifications?older_than_days=30", 1)
	require.NoError(t, h.Cleanup(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(12), decodeBody(t, rec)["deleted"])
	repo.AssertExpectations(t)
}

func TestNotificationCleanupRejectsBadAge(t *testing.T) {
	repo := new(mockNotificationStore)
	h := NewNotificationHandler(repo)

	for _, q := range []string{"", "older_than_days=0", "older_than_days=-3", "older_than_days=soon"} {
		c, rec := newNotificationContext(http.MethodDelete, "/v1/admin/notifications?"+q, 1)
		require.NoError(t, h.Cleanup(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	repo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
}
