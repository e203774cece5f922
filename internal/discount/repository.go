package discount

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront-core/internal/db"
	"storefront-core/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, input CreateInput) (*DiscountCode, error)
	// LatestActiveFlagged returns the highest-id code with active = true, or
	// nil, nil when there is none. The time window is not checked.
	LatestActiveFlagged(ctx context.Context) (*DiscountCode, error)
	ListActiveFlagged(ctx context.Context) ([]*DiscountCode, error)
	// FindByCode matches case-insensitively and returns nil, nil when absent.
	FindByCode(ctx context.Context, code string) (*DiscountCode, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const discountColumns = `id, code, percent, starts_at, expires_at, active, created_at`

func scanDiscount(row interface{ Scan(dest ...any) error }) (*DiscountCode, error) {
	var d DiscountCode
	if err := row.Scan(
		&d.ID,
		&d.Code,
		&d.Percent,
		&d.StartsAt,
		&d.ExpiresAt,
		&d.Active,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) Create(ctx context.Context, input CreateInput) (*DiscountCode, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateDiscount"),
		zap.String("code", input.Code),
	)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO discount_codes (code, percent, starts_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+discountColumns,
		input.Code, input.Percent, input.StartsAt, input.ExpiresAt,
	)

	d, err := scanDiscount(row)
	if db.IsUniqueViolation(err) {
		log.Warn("duplicate discount code")
		return nil, ErrDuplicateCode
	}
	if err != nil {
		log.Error("failed to insert discount code", zap.Error(err))
		return nil, err
	}

	return d, nil
}

func (r *repository) LatestActiveFlagged(ctx context.Context) (*DiscountCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+discountColumns+`
		FROM discount_codes
		WHERE active = TRUE
		ORDER BY id DESC
		LIMIT 1`)

	d, err := scanDiscount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) ListActiveFlagged(ctx context.Context) ([]*DiscountCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+discountColumns+`
		FROM discount_codes
		WHERE active = TRUE
		ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]*DiscountCode, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, d)
	}

	return codes, rows.Err()
}

func (r *repository) FindByCode(ctx context.Context, code string) (*DiscountCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+discountColumns+`
		FROM discount_codes
		WHERE lower(code) = lower($1)`, code)

	d, err := scanDiscount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteExpired removes every code whose expiry is strictly before now,
// whatever its active flag.
func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM discount_codes
		WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	return err
}
