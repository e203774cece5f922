package identity

import (
	"context"
	"errors"
	"fmt"

	"storefront-core/internal/apperror"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the authenticated caller. Every cart, wishlist, order and review
// operation receives it explicitly.
type User struct {
	ID       int64
	Username string
	Role     Role
}

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrAdminOnly       = fmt.Errorf("admin role required: %w", apperror.ErrPermissionDenied)
	ErrCustomerOnly    = fmt.Errorf("administrators cannot perform customer actions: %w", apperror.ErrPermissionDenied)
)

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) Authenticated() bool {
	return u.ID > 0
}

// RequireAdmin allows only authenticated administrators.
func RequireAdmin(u User) error {
	if !u.Authenticated() {
		return ErrUnauthenticated
	}
	if !u.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// RequireCustomer allows authenticated non-admin users. Carts, wishlists and
// reviews belong to shoppers only.
func RequireCustomer(u User) error {
	if !u.Authenticated() {
		return ErrUnauthenticated
	}
	if u.IsAdmin() {
		return ErrCustomerOnly
	}
	return nil
}

type contextKey string

const userKey contextKey = "identity_user"

// WithUser stores the caller on the request context. Only the transport layer
// uses this; services take the User as a parameter.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext retrieves the caller safely
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}
