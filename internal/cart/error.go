package cart

import (
	"errors"
	"fmt"

	"storefront-core/internal/apperror"
)

var (
	// -- Validation & Input --
	ErrInvalidQuantity = fmt.Errorf("cart quantity must be at least 1: %w", apperror.ErrInvalidArgument)
	ErrEmptyCode       = fmt.Errorf("discount code is required: %w", apperror.ErrInvalidArgument)

	// -- Database & Operation Failures --
	ErrFailedLockCart  = errors.New("failed to lock cart")
	ErrFailedLoadCart  = errors.New("failed to load cart")
	ErrFailedClearCart = errors.New("failed to clear cart")
)
