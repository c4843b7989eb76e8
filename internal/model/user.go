package model

import "time"

// Roles stored in users.role. Admin accounts are provisioned directly
// in the database; registration always creates a regular user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors the `users` table. Only a bcrypt hash of the password
// is ever stored; handlers and services never see a stored credential.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique, lower-cased)
	PasswordHash string    // users.password_hash
	Role         string    // users.role ("user" or "admin")
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
