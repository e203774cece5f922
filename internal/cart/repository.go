package cart

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-core/internal/db"
	"storefront-core/internal/logger"
	"storefront-core/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	Get(ctx context.Context, userID int64) (*Cart, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*Cart, error)
	SetItemQuantity(ctx context.Context, userID, productID int64, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*Cart, error)
	SetDiscount(ctx context.Context, userID int64, code string, percent decimal.Decimal) (*Cart, error)
	ClearDiscount(ctx context.Context, userID int64) (*Cart, error)
	Clear(ctx context.Context, userID int64) (*Cart, error)
	CountItems(ctx context.Context, userID int64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// LockForUpdate returns the id of the user's cart, creating it first when the
// user has none, and holds a row lock on it until q's transaction ends.
func LockForUpdate(ctx context.Context, q db.DBTX, userID int64) (int64, error) {
	if _, err := q.ExecContext(ctx, `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailedLockCart, err)
	}

	var cartID int64
	if err := q.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&cartID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailedLockCart, err)
	}

	return cartID, nil
}

// Load reads the cart header and its lines joined with live product data.
func Load(ctx context.Context, q db.DBTX, cartID int64) (*Cart, error) {
	c := &Cart{ID: cartID, Items: make([]Item, 0)}

	var (
		code    sql.NullString
		percent decimal.NullDecimal
	)
	err := q.QueryRowContext(ctx, `
		SELECT user_id, applied_discount_code, applied_discount_percent
		FROM carts
		WHERE id = $1`, cartID).Scan(&c.UserID, &code, &percent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}
	if code.Valid && percent.Valid {
		c.DiscountCode = &code.String
		c.DiscountPercent = &percent.Decimal
	}

	rows, err := q.QueryContext(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}

	return c, nil
}

// ClearTx removes every line and the applied discount of a cart.
func ClearTx(ctx context.Context, q db.DBTX, cartID int64) error {
	if _, err := q.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedClearCart, err)
	}
	if _, err := q.ExecContext(ctx, `
		UPDATE carts
		SET applied_discount_code = NULL, applied_discount_percent = NULL
		WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedClearCart, err)
	}
	return nil
}

// mutate runs fn against the locked cart and returns the cart as it stands
// after fn, all inside one transaction.
func (r *repository) mutate(
	ctx context.Context,
	method string,
	userID int64,
	fn func(tx *sql.Tx, cartID int64) error,
) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
		zap.Int64("user_id", userID),
	)

	var c *Cart
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		cartID, err := LockForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(tx, cartID); err != nil {
				return err
			}
		}
		c, err = Load(ctx, tx, cartID)
		return err
	})
	if err != nil {
		log.Error("cart operation failed", zap.Error(err))
		return nil, err
	}

	return c, nil
}

func (r *repository) Get(ctx context.Context, userID int64) (*Cart, error) {
	return r.mutate(ctx, "GetCart", userID, nil)
}

func (r *repository) AddItem(ctx context.Context, userID, productID int64, quantity int) (*Cart, error) {
	return r.mutate(ctx, "AddItem", userID, func(tx *sql.Tx, cartID int64) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
			cartID, productID, quantity,
		)
		if db.IsForeignKeyViolation(err) {
			// Deleted after the service looked it up.
			return product.ErrProductNotFound
		}
		return err
	})
}

func (r *repository) SetItemQuantity(ctx context.Context, userID, productID int64, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}

	return r.mutate(ctx, "SetItemQuantity", userID, func(tx *sql.Tx, cartID int64) error {
		// A missing line is left missing.
		_, err := tx.ExecContext(ctx, `
			UPDATE cart_items
			SET quantity = $1
			WHERE cart_id = $2 AND product_id = $3`,
			quantity, cartID, productID,
		)
		return err
	})
}

func (r *repository) RemoveItem(ctx context.Context, userID, productID int64) (*Cart, error) {
	return r.mutate(ctx, "RemoveItem", userID, func(tx *sql.Tx, cartID int64) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
			cartID, productID,
		)
		return err
	})
}

func (r *repository) SetDiscount(ctx context.Context, userID int64, code string, percent decimal.Decimal) (*Cart, error) {
	return r.mutate(ctx, "SetDiscount", userID, func(tx *sql.Tx, cartID int64) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE carts
			SET applied_discount_code = $1, applied_discount_percent = $2
			WHERE id = $3`,
			code, percent, cartID,
		)
		return err
	})
}

func (r *repository) ClearDiscount(ctx context.Context, userID int64) (*Cart, error) {
	return r.mutate(ctx, "ClearDiscount", userID, func(tx *sql.Tx, cartID int64) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE carts
			SET applied_discount_code = NULL, applied_discount_percent = NULL
			WHERE id = $1`, cartID)
		return err
	})
}

func (r *repository) Clear(ctx context.Context, userID int64) (*Cart, error) {
	return r.mutate(ctx, "ClearCart", userID, func(tx *sql.Tx, cartID int64) error {
		return ClearTx(ctx, tx, cartID)
	})
}

func (r *repository) CountItems(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
