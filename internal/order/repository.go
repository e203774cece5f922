package order

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"storefront-core/internal/cart"
	"storefront-core/internal/db"
	"storefront-core/internal/logger"
	"storefront-core/internal/outbox"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateFromCart converts the user's cart into an order and empties the
	// cart in a single transaction.
	CreateFromCart(ctx context.Context, userID int64) (*Order, error)
	ListForUser(ctx context.Context, userID int64) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	// GetByID returns nil, nil when the order does not exist.
	GetByID(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	CountByProduct(ctx context.Context, productID int64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateFromCart(ctx context.Context, userID int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateFromCart"),
		zap.Int64("user_id", userID),
	)

	var o *Order
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		cartID, err := cart.LockForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		c, err := cart.Load(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return ErrEmptyCart
		}

		o = &Order{UserID: userID, TotalPrice: c.Total().Round(totalScale), Items: make([]Item, 0, len(c.Items))}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (user_id, total_price, status)
			VALUES ($1, $2, $3)
			RETURNING id, order_date, status`,
			userID, o.TotalPrice, StatusPlaced,
		).Scan(&o.ID, &o.OrderDate, &o.Status); err != nil {
			return err
		}

		for _, ci := range c.Items {
			it := Item{
				OrderID:      o.ID,
				ProductID:    ci.ProductID,
				ProductName:  ci.ProductName,
				Quantity:     ci.Quantity,
				PriceAtOrder: ci.UnitPrice,
			}
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, quantity, price_at_order)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.PriceAtOrder,
			).Scan(&it.ID); err != nil {
				return err
			}
			o.Items = append(o.Items, it)
		}

		if _, err := outbox.Enqueue(ctx, tx, outbox.EventOrderPlaced, strconv.FormatInt(o.ID, 10), newPlacedEvent(o)); err != nil {
			return err
		}

		return cart.ClearTx(ctx, tx, cartID)
	})
	if err != nil {
		if !errors.Is(err, ErrEmptyCart) {
			log.Error("failed to create order", zap.Error(err))
		}
		return nil, err
	}

	return o, nil
}

func newPlacedEvent(o *Order) placedEvent {
	ev := placedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		OrderDate:  o.OrderDate,
		Items:      make([]placedItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, placedItem{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder,
		})
	}
	return ev
}

const orderColumns = `id, user_id, total_price, order_date, status`

func (r *repository) ListForUser(ctx context.Context, userID int64) ([]*Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC, id DESC`, userID)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY order_date DESC, id DESC`)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	orders, err := r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return orders[0], nil
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	byID := make(map[int64]*Order)
	ids := make([]int64, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.OrderDate, &o.Status); err != nil {
			return nil, err
		}
		o.Items = make([]Item, 0)
		orders = append(orders, &o)
		byID[o.ID] = &o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price_at_order
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtOrder); err != nil {
			return nil, err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}

	return orders, itemRows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", id),
	)

	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		ev := statusChangedEvent{OrderID: id, To: status}
		err := tx.QueryRowContext(ctx,
			`SELECT user_id, status FROM orders WHERE id = $1 FOR UPDATE`, id,
		).Scan(&ev.UserID, &ev.From)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1 WHERE id = $2`, status, id); err != nil {
			log.Error("failed to update status", zap.Error(err))
			return err
		}

		_, err = outbox.Enqueue(ctx, tx, outbox.EventOrderStatusChanged, strconv.FormatInt(id, 10), ev)
		return err
	})
}

// Delete removes the order. Its items go with it through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE product_id = $1`, productID,
	).Scan(&n)
	return n, err
}
