package user

import (
	"time"
)

// User represents the users table. The password is never stored or
// exposed in cleartext; only the bcrypt hash persists.
type User struct {
	ID           int64
	Username     string
	Email        string
	Name         string
	PasswordHash string
	DateJoined   time.Time
}
