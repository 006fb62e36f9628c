package types

import "time"

// Admin represents the privileged account that manages contacts.
// Exactly one is seeded at first run; no route creates more.
type Admin struct {
	// ID is the unique identifier of the admin.
	ID int `json:"id" db:"id"`

	// Username is the unique login name.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the bcrypt hash of the admin's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the admin account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
