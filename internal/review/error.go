package review

import (
	"fmt"

	"storefront-core/internal/apperror"
)

var (
	// -- Validation & Input --
	ErrInvalidRating = fmt.Errorf("rating must be between 1 and 5: %w", apperror.ErrInvalidArgument)

	// -- Resource State --
	ErrReviewNotFound = fmt.Errorf("review not found: %w", apperror.ErrNotFound)

	// -- Authorization --
	ErrNotAuthor = fmt.Errorf("only the author may change this review: %w", apperror.ErrPermissionDenied)
)
