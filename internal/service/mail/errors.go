package mail

import (
	"fmt"

	"github.com/ignite/massmail/internal/domain"
)

// Sentinel errors for the mail service layer.
var (
	ErrNoRecipients  = fmt.Errorf("%w: at least one To recipient is required", domain.ErrInvalid)
	ErrSenderMissing = fmt.Errorf("%w: a sender must be selected", domain.ErrInvalid)
)
