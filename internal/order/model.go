package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// totalScale is the number of decimal places orders.total_price keeps. The
// total is rounded once at placement so the returned order, its event and
// the stored row agree.
const totalScale = 2

var knownStatuses = map[Status]bool{
	StatusPlaced:    true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// ParseStatus accepts any known status regardless of case. No transition
// table applies: any status may follow any other.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !knownStatuses[st] {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Order is immutable once placed, except for Status.
type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Items      []Item          `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OrderDate  time.Time       `json:"order_date"`
	Status     Status          `json:"status"`
}

// Item keeps the product name and unit price as they were when the order was
// placed.
type Item struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type placedEvent struct {
	OrderID    int64           `json:"order_id"`
	UserID     int64           `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     Status          `json:"status"`
	OrderDate  time.Time       `json:"order_date"`
	Items      []placedItem    `json:"items"`
}

type placedItem struct {
	ProductID    int64           `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

type statusChangedEvent struct {
	OrderID int64  `json:"order_id"`
	UserID  int64  `json:"user_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
