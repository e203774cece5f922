package wishlist

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-core/internal/db"
	"storefront-core/internal/logger"
	"storefront-core/internal/product"

	"go.uber.org/zap"
)

type Repository interface {
	Get(ctx context.Context, userID int64) (*Wishlist, error)
	Add(ctx context.Context, userID, productID int64) (*Wishlist, error)
	Remove(ctx context.Context, userID, productID int64) (*Wishlist, error)
	Clear(ctx context.Context, userID int64) (*Wishlist, error)
	Count(ctx context.Context, userID int64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func lockWishlist(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wishlists (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailedLockWishlist, err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM wishlists WHERE user_id = $1 FOR UPDATE`, userID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailedLockWishlist, err)
	}
	return id, nil
}

func loadWishlist(ctx context.Context, tx *sql.Tx, id, userID int64) (*Wishlist, error) {
	w := &Wishlist{ID: id, UserID: userID, Items: make([]Item, 0)}

	rows, err := tx.QueryContext(ctx, `
		SELECT wi.id, wi.product_id, p.name, p.price, wi.added_at
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.wishlist_id = $1
		ORDER BY wi.added_at DESC, wi.id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadWishlist, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Price, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedLoadWishlist, err)
		}
		w.Items = append(w.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadWishlist, err)
	}
	return w, nil
}

func (r *repository) mutate(
	ctx context.Context,
	method string,
	userID int64,
	fn func(tx *sql.Tx, wishlistID int64) error,
) (*Wishlist, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
		zap.Int64("user_id", userID),
	)

	var w *Wishlist
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		id, err := lockWishlist(ctx, tx, userID)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(tx, id); err != nil {
				return err
			}
		}
		w, err = loadWishlist(ctx, tx, id, userID)
		return err
	})
	if err != nil {
		log.Error("wishlist operation failed", zap.Error(err))
		return nil, err
	}
	return w, nil
}

func (r *repository) Get(ctx context.Context, userID int64) (*Wishlist, error) {
	return r.mutate(ctx, "GetWishlist", userID, nil)
}

func (r *repository) Add(ctx context.Context, userID, productID int64) (*Wishlist, error) {
	return r.mutate(ctx, "AddToWishlist", userID, func(tx *sql.Tx, id int64) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wishlist_items (wishlist_id, product_id)
			VALUES ($1, $2)
			ON CONFLICT (wishlist_id, product_id) DO NOTHING`, id, productID)
		if db.IsForeignKeyViolation(err) {
			return product.ErrProductNotFound
		}
		return err
	})
}

func (r *repository) Remove(ctx context.Context, userID, productID int64) (*Wishlist, error) {
	return r.mutate(ctx, "RemoveFromWishlist", userID, func(tx *sql.Tx, id int64) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM wishlist_items WHERE wishlist_id = $1 AND product_id = $2`, id, productID)
		return err
	})
}

func (r *repository) Clear(ctx context.Context, userID int64) (*Wishlist, error) {
	return r.mutate(ctx, "ClearWishlist", userID, func(tx *sql.Tx, id int64) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM wishlist_items WHERE wishlist_id = $1`, id)
		return err
	})
}

func (r *repository) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM wishlist_items wi
		JOIN wishlists w ON w.id = wi.wishlist_id
		WHERE w.user_id = $1`, userID).Scan(&n)
	return n, err
}
