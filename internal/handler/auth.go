package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuora/venue-reservation/internal/model"
	"github.com/venuora/venue-reservation/internal/repository"
	"github.com/venuora/venue-reservation/internal/utils"
)

// userStore is the slice of repository.UserRepo the auth handler needs.
type userStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthHandler serves registration and login.  Authorization beyond
// identity (ownership of reservations, admin role) is enforced by
// middleware and the individual handlers, not here.
type AuthHandler struct {
	users      userStore
	jwtSecret  string
	ttlMin     int
	bcryptCost int
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users userStore, jwtSecret string, ttlMin, bcryptCost int) *AuthHandler {
	if users == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{users: users, jwtSecret: jwtSecret, ttlMin: ttlMin, bcryptCost: bcryptCost}
}

// Register handles POST /v1/auth/register.  New accounts always get
// the GUEST role; admins are provisioned out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	if len(body.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	hash, err := utils.HashPassword(body.Password, h.bcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create account"})
	}
	u := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(body.Email)),
		FullName:     body.FullName,
		PasswordHash: hash,
		Role:         model.RoleGuest,
	}
	if err := h.users.Create(c.Request().Context(), u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create account"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user_id": u.ID, "email": u.Email})
}

// Login handles POST /v1/auth/login.  It verifies the password and
// issues a short-lived HS256 access token carrying the user id and
// role.  Unknown accounts and wrong passwords both yield the same 401
// so the endpoint does not leak which emails exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	u, err := h.users.GetByEmail(c.Request().Context(), body.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := utils.NewAccessToken(h.jwtSecret, u.ID, u.Role, h.ttlMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
