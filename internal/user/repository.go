package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront-core/internal/db"
	"storefront-core/internal/identity"
	"storefront-core/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, username string, role identity.Role) (*User, error)
	// FindByUsername and FindByID return nil, nil when no user matches.
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, username string, role identity.Role) (*User, error) {
	log := logger.FromCtx(ctx)

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	var u User
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (username, role) VALUES ($1, $2) RETURNING id, username, role, created_at",
		username, role,
	).Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt)

	if db.IsUniqueViolation(err) {
		return nil, ErrUsernameExists
	}
	if err != nil {
		log.Error("db: failed to insert user",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx,
		"SELECT id, username, role, created_at FROM users WHERE username = $1", username)
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx,
		"SELECT id, username, role, created_at FROM users WHERE id = $1", id)
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
