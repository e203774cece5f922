package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront-core/internal/auth"
	"storefront-core/internal/config"
	"storefront-core/internal/db"
	"storefront-core/internal/identity"
	"storefront-core/internal/logger"
	"storefront-core/internal/user"

	"go.uber.org/zap"
)

var openDBFunc = db.NewDatabase

var errUnknownRole = errors.New("unknown role (use 'USER' or 'ADMIN')")

// token registers a user in the directory when missing and prints a signed
// access token for it. Intended for local development and smoke tests.
func main() {
	username := flag.String("user", "", "username to issue a token for")
	role := flag.String("role", string(identity.RoleUser), "role for a new user: USER or ADMIN")
	flag.Parse()

	if err := run(context.Background(), *username, *role, os.Stdout); err != nil {
		logger.L().Fatal("token issuance failed", zap.Error(err))
	}
}

func run(ctx context.Context, username, roleFlag string, out io.Writer) error {
	role := identity.Role(strings.ToUpper(strings.TrimSpace(roleFlag)))
	if role != identity.RoleUser && role != identity.RoleAdmin {
		return errUnknownRole
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return user.ErrInvalidUsername
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	database, err := openDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	u, err := ensureUser(ctx, user.NewRepository(database), username, role)
	if err != nil {
		return err
	}

	tok, err := signer.Issue(u.Identity())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

// ensureUser returns the existing user as stored. The role flag only applies
// to a user created here.
func ensureUser(ctx context.Context, users user.Repository, username string, role identity.Role) (*user.User, error) {
	log := logger.L().With(zap.String("username", username))

	u, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if u.Role != role {
			log.Warn("existing user keeps its role", zap.String("role", string(u.Role)))
		}
		return u, nil
	}

	u, err = users.Create(ctx, username, role)
	if err != nil {
		return nil, err
	}
	log.Info("user created", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}
