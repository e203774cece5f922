package order

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront-core/internal/outbox"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderCols     = []string{"id", "user_id", "total_price", "order_date", "status"}
	orderItemCols = []string{"id", "order_id", "product_id", "product_name", "quantity", "price_at_order"}
)

func expectCartLockAndLoad(mock sqlmock.Sqlmock, userID, cartID int64, header, items *sqlmock.Rows) {
	mock.ExpectExec("INSERT INTO carts \\(user_id\\)").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id = \\$1 FOR UPDATE").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID))
	mock.ExpectQuery("SELECT user_id, applied_discount_code, applied_discount_percent").
		WithArgs(cartID).
		WillReturnRows(header)
	mock.ExpectQuery("FROM cart_items ci JOIN products p").
		WithArgs(cartID).
		WillReturnRows(items)
}

// placedTotal matches an order.placed payload by its total_price.
type placedTotal string

func (want placedTotal) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var ev struct {
		TotalPrice decimal.Decimal `json:"total_price"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return false
	}
	return ev.TotalPrice.Equal(decimal.RequireFromString(string(want)))
}

func TestRepository_CreateFromCart(t *testing.T) {
	ctx := context.Background()
	headerCols := []string{"user_id", "applied_discount_code", "applied_discount_percent"}
	cartItemCols := []string{"id", "product_id", "name", "price", "quantity"}

	t.Run("SnapshotsPricesAndClearsCart", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)
		placedAt := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		expectCartLockAndLoad(mock, 7, 3,
			sqlmock.NewRows(headerCols).AddRow(7, "SAVE10", "10"),
			sqlmock.NewRows(cartItemCols).
				AddRow(1, 10, "Mug", "10.00", 2).
				AddRow(2, 11, "Pen", "5.00", 1),
		)
		mock.ExpectQuery("INSERT INTO orders \\(user_id, total_price, status\\)").
			WithArgs(int64(7), decimal.RequireFromString("22.5"), StatusPlaced).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_date", "status"}).AddRow(100, placedAt, "PLACED"))
		mock.ExpectQuery("INSERT INTO order_items").
			WithArgs(int64(100), int64(10), "Mug", 2, decimal.RequireFromString("10.00")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1000))
		mock.ExpectQuery("INSERT INTO order_items").
			WithArgs(int64(100), int64(11), "Pen", 1, decimal.RequireFromString("5.00")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1001))
		mock.ExpectQuery("INSERT INTO outbox_events").
			WithArgs(sqlmock.AnyArg(), "100", outbox.EventOrderPlaced, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(placedAt))
		mock.ExpectExec("DELETE FROM cart_items WHERE cart_id = \\$1").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("UPDATE carts SET applied_discount_code = NULL").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.CreateFromCart(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(100), o.ID)
		assert.Equal(t, StatusPlaced, o.Status)
		assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("22.5")))
		require.Len(t, o.Items, 2)
		assert.True(t, o.Items[0].PriceAtOrder.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "Mug", o.Items[0].ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RoundsTotalToStoredScale", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)
		placedAt := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

		// 9.99 less 33.33% is 6.660333 before rounding.
		mock.ExpectBegin()
		expectCartLockAndLoad(mock, 7, 3,
			sqlmock.NewRows(headerCols).AddRow(7, "THIRD", "33.33"),
			sqlmock.NewRows(cartItemCols).AddRow(1, 10, "Mug", "9.99", 1),
		)
		mock.ExpectQuery("INSERT INTO orders \\(user_id, total_price, status\\)").
			WithArgs(int64(7), decimal.RequireFromString("6.66"), StatusPlaced).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_date", "status"}).AddRow(101, placedAt, "PLACED"))
		mock.ExpectQuery("INSERT INTO order_items").
			WithArgs(int64(101), int64(10), "Mug", 1, decimal.RequireFromString("9.99")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1002))
		mock.ExpectQuery("INSERT INTO outbox_events").
			WithArgs(sqlmock.AnyArg(), "101", outbox.EventOrderPlaced, placedTotal("6.66")).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(placedAt))
		mock.ExpectExec("DELETE FROM cart_items WHERE cart_id = \\$1").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE carts SET applied_discount_code = NULL").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.CreateFromCart(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, "6.66", o.TotalPrice.StringFixed(2))
		assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("6.66")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyCartWritesNothing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		expectCartLockAndLoad(mock, 7, 3,
			sqlmock.NewRows(headerCols).AddRow(7, nil, nil),
			sqlmock.NewRows(cartItemCols),
		)
		mock.ExpectRollback()

		_, err = repo.CreateFromCart(ctx, 7)

		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FailureAfterOrderInsertRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		expectCartLockAndLoad(mock, 7, 3,
			sqlmock.NewRows(headerCols).AddRow(7, nil, nil),
			sqlmock.NewRows(cartItemCols).AddRow(1, 10, "Mug", "10.00", 1),
		)
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_date", "status"}).AddRow(100, time.Now(), "PLACED"))
		mock.ExpectQuery("INSERT INTO order_items").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1000))
		mock.ExpectQuery("INSERT INTO outbox_events").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec("DELETE FROM cart_items").
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err = repo.CreateFromCart(ctx, 7)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	newer := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	mock.ExpectQuery("FROM orders WHERE user_id = \\$1 ORDER BY order_date DESC").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(2, 7, "5.00", newer, "SHIPPED").
			AddRow(1, 7, "22.50", older, "PLACED"))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY\\(\\$1\\)").
		WithArgs(pq.Array([]int64{2, 1})).
		WillReturnRows(sqlmock.NewRows(orderItemCols).
			AddRow(10, 1, 10, "Mug", 2, "10.00").
			AddRow(11, 1, 11, "Pen", 1, "5.00").
			AddRow(12, 2, 11, "Pen", 1, "5.00"))

	orders, err := repo.ListForUser(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID)
	assert.Equal(t, StatusShipped, orders[0].Status)
	assert.Len(t, orders[0].Items, 1)
	assert.Len(t, orders[1].Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	t.Run("KeepsSnapshotPrice", func(t *testing.T) {
		mock.ExpectQuery("FROM orders WHERE id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(1, 7, "20.00", time.Now(), "PLACED"))
		mock.ExpectQuery("FROM order_items").
			WillReturnRows(sqlmock.NewRows(orderItemCols).AddRow(10, 1, 10, "Mug", 2, "10.00"))

		o, err := repo.GetByID(context.Background(), 1)

		require.NoError(t, err)
		assert.True(t, o.Items[0].PriceAtOrder.Equal(decimal.NewFromInt(10)))
		assert.True(t, o.Items[0].LineTotal().Equal(o.TotalPrice))
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery("FROM orders WHERE id = \\$1").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(orderCols))

		o, err := repo.GetByID(context.Background(), 404)

		assert.NoError(t, err)
		assert.Nil(t, o)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("WritesOutboxEvent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT user_id, status FROM orders WHERE id = \\$1 FOR UPDATE").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow(7, "DELIVERED"))
		mock.ExpectExec("UPDATE orders SET status = \\$1 WHERE id = \\$2").
			WithArgs(StatusPlaced, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO outbox_events").
			WithArgs(sqlmock.AnyArg(), "1", outbox.EventOrderStatusChanged,
				[]byte(`{"order_id":1,"user_id":7,"from":"DELIVERED","to":"PLACED"}`)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectCommit()

		err = repo.UpdateStatus(ctx, 1, StatusPlaced)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT user_id, status FROM orders").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err = repo.UpdateStatus(ctx, 1, StatusShipped)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_DeleteAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Delete", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM orders WHERE id = \\$1").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, 1))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM orders").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 1), ErrOrderNotFound)
	})

	t.Run("CountByProduct", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM order_items WHERE product_id = \\$1").
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		n, err := repo.CountByProduct(ctx, 10)

		assert.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}
