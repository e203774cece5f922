package product

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront-core/internal/db"
	"storefront-core/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, input NewProductInput) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	// GetByID returns nil, nil when the product does not exist.
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*Product, error)
	SearchByName(ctx context.Context, substring string) ([]*Product, error)
	DeleteCascade(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, price, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, input NewProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
	)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price)
		VALUES ($1, $2)
		RETURNING `+productColumns,
		input.Name, input.Price,
	)

	p, err := scanProduct(row)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (r *repository) List(ctx context.Context) ([]*Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, input UpdateProductInput) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $1, price = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+productColumns,
		input.Name, input.Price, id,
	)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) SearchByName(ctx context.Context, substring string) ([]*Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY id`,
		"%"+escapeLike(substring)+"%",
	)
}

// DeleteCascade removes the product together with the cart items, wishlist
// items and reviews that point at it, in that order, inside one transaction.
// Order history is never touched: a product still referenced by an order
// item is rejected with ErrReferencedByOrders.
func (r *repository) DeleteCascade(ctx context.Context, id int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeleteCascade"),
		zap.Int64("product_id", id),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		var refs int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM order_items WHERE product_id = $1`, id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrReferencedByOrders
		}

		steps := []struct {
			table string
			query string
		}{
			{"cart_items", `DELETE FROM cart_items WHERE product_id = $1`},
			{"wishlist_items", `DELETE FROM wishlist_items WHERE product_id = $1`},
			{"reviews", `DELETE FROM reviews WHERE product_id = $1`},
			{"products", `DELETE FROM products WHERE id = $1`},
		}

		for _, step := range steps {
			res, err := tx.ExecContext(ctx, step.query, id)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			log.Debug("cascade step done", zap.String("table", step.table), zap.Int64("rows", n))
		}

		return nil
	})

	if db.IsForeignKeyViolation(err) {
		return ErrReferencedByOrders
	}
	if err != nil {
		log.Error("failed to delete product", zap.Error(err))
		return err
	}

	log.Info("product deleted")
	return nil
}

func (r *repository) query(ctx context.Context, query string, args ...any) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
