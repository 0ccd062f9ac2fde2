package identity

import (
	"fmt"

	"github.com/ignite/massmail/internal/domain"
)

// Sentinel errors for the identity service layer.
var (
	ErrUsernameRequired = fmt.Errorf("%w: username is required", domain.ErrInvalid)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalid, MinPasswordLength)
	ErrUsernameTaken    = fmt.Errorf("%w: username already exists", domain.ErrConflict)
	ErrInvalidLogin     = fmt.Errorf("%w: invalid credentials or not an admin", domain.ErrUnauthorized)
)
