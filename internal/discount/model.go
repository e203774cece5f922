package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

// percentScale matches the NUMERIC(5, 2) percent columns.
const percentScale = 2

var (
	minPercent = decimal.Zero
	maxPercent = decimal.NewFromInt(100)
)

type DiscountCode struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Percent   decimal.Decimal `json:"percent"`
	StartsAt  *time.Time      `json:"starts_at,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsCurrentlyActive reports whether the code is flagged active and now lies
// inside its window. Both bounds are inclusive and either may be open.
func (d *DiscountCode) IsCurrentlyActive(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return false
	}
	return true
}

// validPercent rejects values the percent columns would silently round.
func validPercent(p decimal.Decimal) bool {
	return p.GreaterThan(minPercent) &&
		p.LessThanOrEqual(maxPercent) &&
		p.Equal(p.Truncate(percentScale))
}

type CreateInput struct {
	Code      string          `json:"code"`
	Percent   decimal.Decimal `json:"percent"`
	StartsAt  *time.Time      `json:"starts_at,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}
