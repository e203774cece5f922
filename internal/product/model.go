package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

type NewProductInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// UpdateProductInput replaces name and price; identity fields never change.
type UpdateProductInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
