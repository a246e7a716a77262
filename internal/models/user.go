package models

import "time"

// UserRole enumerates the roles carried in the token. No endpoint branches on
// the role; it is passed through as an opaque claim.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User is an authentication principal stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    *string   `db:"first_name" json:"firstName"`
	LastName     *string   `db:"last_name" json:"lastName"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// SeedHistory marks a named seed as executed; a present row means the seed
// must not run again.
type SeedHistory struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	ExecutedAt time.Time `db:"executed_at" json:"executedAt"`
}
