package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuora/venue-reservation/internal/model"
	"github.com/venuora/venue-reservation/internal/repository"
	"github.com/venuora/venue-reservation/internal/utils"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newLoginContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoginIssuesToken(t *testing.T) {
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "pat@example.com").Return(&model.User{
		ID:           7,
		Email:        "pat@example.com",
		PasswordHash: hash,
		Role:         model.RoleGuest,
	}, nil)

	h := NewAuthHandler(users, "test-secret", 15, 4)
	c, rec := newLoginContext(`{"email":"pat@example.com","password":"s3cret"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["expires_at"])
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)

	users := new(mockUserStore)
	users.On("GetByEmail", mock.Anything, "pat@example.com").Return(&model.User{
		ID: 7, Email: "pat@example.com", PasswordHash: hash, Role: model.RoleGuest,
	}, nil)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	h := NewAuthHandler(users, "test-secret", 15, 4)

	c1, rec1 := newLoginContext(`{"email":"pat@example.com","password":"wrong"}`)
	require.NoError(t, h.Login(c1))
	c2, rec2 := newLoginContext(`{"email":"ghost@example.com","password":"whatever"}`)
	require.NoError(t, h.Login(c2))

	assert.Equal(t, http.StatusUnauthorized, rec1.Code)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
	assert.JSONEq(t, rec1.Body.String(), rec2.Body.String(), "responses must not reveal which emails exist")
}

func TestRegisterCreatesGuestAccount(t *testing.T) {
	users := new(mockUserStore)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "pat@example.com" && u.Role == model.RoleGuest && u.PasswordHash != "s3cret123"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 7
	}).Return(nil)

	h := NewAuthHandler(users, "test-secret", 15, 4)
	c, rec := newLoginContext(`{"email":"Pat@Example.com","full_name":"Pat Guest","password":"s3cret123"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(7), body["user_id"])
	assert.Equal(t, "pat@example.com", body["email"], "email is normalized")
	users.AssertExpectations(t)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	users := new(mockUserStore)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailTaken)

	h := NewAuthHandler(users, "test-secret", 15, 4)
	c, rec := newLoginContext(`{"email":"pat@example.com","password":"s3cret123"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	users := new(mockUserStore)
	h := NewAuthHandler(users, "test-secret", 15, 4)
	c, rec := newLoginContext(`{"email":"pat@example.com","password":"short"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	h := NewAuthHandler(new(mockUserStore), "test-secret", 15, 4)
	c, rec := newLoginContext(`{"email":"pat@example.com"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
