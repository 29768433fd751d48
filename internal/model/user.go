package model

import "time"

// Role values stored in users.role and carried in the JWT "role" claim.
const (
	RoleGuest = "GUEST"
	RoleAdmin = "ADMIN"
)

// User is an account that can own reservations and receive
// notifications.  Password handling lives in the auth handler; the
// lifecycle core only ever reads users for recipient addressing.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	FullName     string    // users.full_name
	PasswordHash string    // users.password_hash
	Role         string    // users.role (GUEST or ADMIN)
	CreatedAt    time.Time // users.created_at
}
