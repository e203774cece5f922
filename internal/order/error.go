package order

import (
	"fmt"

	"storefront-core/internal/apperror"
)

var (
	// -- Validation & Input --
	ErrInvalidStatus = fmt.Errorf("unknown order status: %w", apperror.ErrInvalidArgument)

	// -- Resource State --
	ErrEmptyCart     = fmt.Errorf("cannot place an order from an empty cart: %w", apperror.ErrInvalidState)
	ErrOrderNotFound = fmt.Errorf("order not found: %w", apperror.ErrNotFound)

	// -- Authorization --
	ErrNotOrderOwner = fmt.Errorf("order belongs to another user: %w", apperror.ErrPermissionDenied)
)
