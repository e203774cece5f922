package middleware

import (
	"context"
	"net/http"

	"storefront-core/internal/auth"
	"storefront-core/internal/identity"
	"storefront-core/internal/logger"
	"storefront-core/internal/user"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

// UserLookup resolves the subject of a verified token against the user
// directory. It returns nil, nil for an unknown id.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// Auth resolves the access token into an identity.User on the request
// context. Requests without a token continue anonymously; a token that does
// not verify is rejected with 401.
//
// With a non-nil users, the identity comes from the directory row rather
// than the claims, so a deleted user or a changed role takes effect before
// the token expires.
func Auth(tokens TokenParser, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromCtx(r.Context())

			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				log.Debug("rejected access token", zap.Error(err))
				unauthorized(w)
				return
			}

			u, err := claims.Identity()
			if err != nil {
				unauthorized(w)
				return
			}

			if users != nil {
				stored, err := users.FindByID(r.Context(), u.ID)
				if err != nil {
					log.Error("failed to resolve token subject", zap.Int64("user_id", u.ID), zap.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				if stored == nil {
					log.Debug("token subject no longer exists", zap.Int64("user_id", u.ID))
					unauthorized(w)
					return
				}
				u = stored.Identity()
			}

			next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), u)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
