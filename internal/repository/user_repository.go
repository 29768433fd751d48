package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/venuora/venue-reservation/internal/model"
)

// ErrEmailTaken is returned by Create when the email is already
// registered.
var ErrEmailTaken = errors.New("email already registered")

// UserRepo provides the user persistence the service needs:
// registration, login by email and recipient addressing by id.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo over an open database.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userCols = `id, email, full_name, password_hash, role, created_at`

// Create inserts a new user and fills in its generated ID.  A unique
// violation on the email column maps to ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (email, full_name, password_hash, role) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, u.Email, u.FullName, u.PasswordHash, u.Role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") { // mysql duplicate entry
			return ErrEmailTaken
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail loads a user by normalized email address.  Returns
// ErrNotFound when no account exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = ?`
	return r.scan(r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))))
}

// GetByID loads a user by primary key.  Returns ErrNotFound when no
// account exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = ?`
	return r.scan(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserRepo) scan(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
