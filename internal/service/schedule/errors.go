package schedule

import (
	"fmt"

	"github.com/ignite/massmail/internal/domain"
)

// Sentinel errors for the schedule service layer.
var (
	ErrNotFound     = fmt.Errorf("scheduled email %w", domain.ErrNotFound)
	ErrMalformedID  = fmt.Errorf("%w: malformed scheduled email id", domain.ErrInvalid)
	ErrPastFireTime = fmt.Errorf("%w: schedule time must be in the future", domain.ErrInvalid)
	ErrNotRetryable = fmt.Errorf("%w: only failed emails can be retried", domain.ErrConflict)
)
