package discount

import (
	"fmt"

	"storefront-core/internal/apperror"
)

var (
	// -- Validation & Input --
	ErrInvalidPercent = fmt.Errorf("discount percent must be in (0, 100] with at most two decimal places: %w", apperror.ErrInvalidArgument)
	ErrEmptyCode      = fmt.Errorf("discount code is required: %w", apperror.ErrInvalidArgument)
	ErrInvalidWindow  = fmt.Errorf("discount starts after it expires: %w", apperror.ErrInvalidArgument)

	// -- Resource State --
	ErrDiscountNotFound  = fmt.Errorf("discount code not found: %w", apperror.ErrNotFound)
	ErrDiscountNotActive = fmt.Errorf("discount code is not currently active: %w", apperror.ErrInvalidState)
	ErrDuplicateCode     = fmt.Errorf("discount code already exists: %w", apperror.ErrConflict)
)
