package domain

import "time"

// User is an account that can log in and hold tokens.
type User struct {
	ID       string
	Username string

	// PasswordHash is a PHC-format argon2id hash.
	PasswordHash string

	// TOTPSecret enables the optional second factor when non-empty.
	TOTPSecret string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MFAEnabled reports whether login requires a TOTP code.
func (u User) MFAEnabled() bool { return u.TOTPSecret != "" }
