package wishlist

import "errors"

var (
	// -- Database & Operation Failures --
	ErrFailedLockWishlist = errors.New("failed to lock wishlist")
	ErrFailedLoadWishlist = errors.New("failed to load wishlist")
)
