package user

import (
	"fmt"

	"github.com/ignite/massmail/internal/domain"
)

// Sentinel errors for the user service layer.
var (
	ErrNotFound         = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrExists           = fmt.Errorf("%w: user exists", domain.ErrConflict)
	ErrUsernameRequired = fmt.Errorf("%w: username is required", domain.ErrInvalid)
	ErrPasswordRequired = fmt.Errorf("%w: password is required", domain.ErrInvalid)
	ErrMalformedID      = fmt.Errorf("%w: malformed user id", domain.ErrInvalid)
	ErrSenderDisabled   = fmt.Errorf("%w: user is not enabled", domain.ErrDisabled)
)
