package domain

import "time"

// User is an account that can log in (when IsSuperuser) or act as a sender
// (when IsEnabled).
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"`
	IsEnabled    bool      `json:"is_enabled" db:"is_enabled"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CanSend reports whether the account may be used as a sender.
func (u *User) CanSend() bool { return u.IsEnabled }

// Identity is the authenticated operator carried by a session.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
