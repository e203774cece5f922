package wishlist

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	AddedAt     time.Time       `json:"added_at"`
}

type Wishlist struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Items  []Item `json:"items"`
}
