package template

import (
	"fmt"

	"github.com/ignite/massmail/internal/domain"
)

// Sentinel errors for the template service layer.
var (
	ErrNotFound        = fmt.Errorf("template %w", domain.ErrNotFound)
	ErrExists          = fmt.Errorf("%w: template name already exists for this owner", domain.ErrConflict)
	ErrNameRequired    = fmt.Errorf("%w: template name is required", domain.ErrInvalid)
	ErrContentRequired = fmt.Errorf("%w: template content is required", domain.ErrInvalid)
)
