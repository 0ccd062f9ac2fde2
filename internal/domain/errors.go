package domain

import "errors"

// Sentinel errors shared by every service. Services wrap them with context
// (fmt.Errorf("%w: ...")) and the HTTP layer maps them with errors.Is.
var (
	ErrInvalid      = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnavailable  = errors.New("store unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDisabled     = errors.New("account disabled")
	ErrMailAPI      = errors.New("mail api error")
)
