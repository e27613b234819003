package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in PasswordHash; the plaintext is
// never persisted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string // optional, used for the welcome mail only
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
