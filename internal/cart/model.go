package cart

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is one cart line. ProductName and UnitPrice are read live from the
// catalog every time the cart is loaded.
type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart belongs to exactly one user. DiscountCode and DiscountPercent are a
// snapshot taken when the code was applied; both are set or both are nil.
type Cart struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	Items           []Item           `json:"items"`
	DiscountCode    *string          `json:"discount_code,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

func (c *Cart) HasDiscount() bool {
	return c.DiscountCode != nil && c.DiscountPercent != nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func (c *Cart) DiscountAmount() decimal.Decimal {
	if c.DiscountPercent == nil || !c.DiscountPercent.IsPositive() {
		return decimal.Zero
	}
	return c.Subtotal().Mul(*c.DiscountPercent).Div(hundred)
}

// Total never goes below zero.
func (c *Cart) Total() decimal.Decimal {
	total := c.Subtotal().Sub(c.DiscountAmount())
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
