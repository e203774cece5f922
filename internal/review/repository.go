package review

import (
	"context"
	"database/sql"
	"errors"

	"storefront-core/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// Upsert writes the single review of (productID, userID), replacing
	// rating and comment when one already exists.
	Upsert(ctx context.Context, productID, userID int64, rating int, comment *string) (*Review, error)
	// GetByID returns nil, nil when the review does not exist.
	GetByID(ctx context.Context, id int64) (*Review, error)
	Update(ctx context.Context, id int64, rating int, comment *string) (*Review, error)
	Delete(ctx context.Context, id int64) error
	AverageRating(ctx context.Context, productID int64) (float64, error)
	Count(ctx context.Context, productID int64) (int64, error)
	ListForProduct(ctx context.Context, productID int64) ([]*Review, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const reviewColumns = `r.id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at, r.updated_at`

func scanReview(row interface{ Scan(dest ...any) error }) (*Review, error) {
	var rv Review
	if err := row.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.UserID,
		&rv.Username,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repository) Upsert(ctx context.Context, productID, userID int64, rating int, comment *string) (*Review, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpsertReview"),
		zap.Int64("product_id", productID),
	)

	row := r.db.QueryRowContext(ctx, `
		WITH saved AS (
			INSERT INTO reviews (product_id, user_id, rating, comment)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, user_id)
			DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
			RETURNING *
		)
		SELECT `+reviewColumns+`
		FROM saved r
		JOIN users u ON u.id = r.user_id`,
		productID, userID, rating, comment,
	)

	rv, err := scanReview(row)
	if err != nil {
		log.Error("failed to upsert review", zap.Error(err))
		return nil, err
	}
	return rv, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`, id)

	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *repository) Update(ctx context.Context, id int64, rating int, comment *string) (*Review, error) {
	row := r.db.QueryRowContext(ctx, `
		WITH saved AS (
			UPDATE reviews
			SET rating = $1, comment = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING *
		)
		SELECT `+reviewColumns+`
		FROM saved r
		JOIN users u ON u.id = r.user_id`,
		rating, comment, id,
	)

	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) AverageRating(ctx context.Context, productID int64) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE product_id = $1`,
		productID,
	).Scan(&avg)
	return avg, err
}

func (r *repository) Count(ctx context.Context, productID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID,
	).Scan(&n)
	return n, err
}

func (r *repository) ListForProduct(ctx context.Context, productID int64) ([]*Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC, r.id DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
