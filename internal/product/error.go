package product

import (
	"fmt"

	"storefront-core/internal/apperror"
)

var (
	// -- Validation & Input --
	ErrEmptyName      = fmt.Errorf("product name cannot be empty: %w", apperror.ErrInvalidArgument)
	ErrNegativePrice  = fmt.Errorf("product price cannot be negative: %w", apperror.ErrInvalidArgument)
	ErrPricePrecision = fmt.Errorf("product price cannot have more than two decimal places: %w", apperror.ErrInvalidArgument)

	// -- Resource State --
	ErrProductNotFound    = fmt.Errorf("product not found: %w", apperror.ErrNotFound)
	ErrReferencedByOrders = fmt.Errorf("product is referenced by existing orders: %w", apperror.ErrConflict)
)
