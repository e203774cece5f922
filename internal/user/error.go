package user

import (
	"fmt"

	"storefront-core/internal/apperror"
)

var (
	ErrUserNotFound    = fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	ErrUsernameExists  = fmt.Errorf("username already registered: %w", apperror.ErrConflict)
	ErrInvalidUsername = fmt.Errorf("username is required: %w", apperror.ErrInvalidArgument)
)
