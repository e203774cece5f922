package user

import (
	"time"

	"storefront-core/internal/identity"
)

// User is a row of the user directory. Credentials live with the external
// identity provider and are not stored here.
type User struct {
	ID        int64
	Username  string
	Role      identity.Role
	CreatedAt time.Time
}

// Identity converts the directory row into the caller identity services take.
func (u *User) Identity() identity.User {
	return identity.User{ID: u.ID, Username: u.Username, Role: u.Role}
}
