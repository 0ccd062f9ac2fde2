package contact

import (
	"fmt"

	"github.com/ignite/massmail/internal/domain"
)

// Sentinel errors for the contact service layer.
var (
	ErrNotFound         = fmt.Errorf("contact %w", domain.ErrNotFound)
	ErrExists           = fmt.Errorf("%w: contact already exists", domain.ErrConflict)
	ErrUsernameRequired = fmt.Errorf("%w: username is required", domain.ErrInvalid)
	ErrMalformedID      = fmt.Errorf("%w: malformed contact id", domain.ErrInvalid)
	ErrMissingColumn    = fmt.Errorf("%w: CSV must contain a 'username' column", domain.ErrInvalid)
	ErrEmptyFile        = fmt.Errorf("%w: CSV file is empty", domain.ErrInvalid)
)
