package product

import (
	"context"
	"strings"

	"storefront-core/internal/identity"
	"storefront-core/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// priceScale matches the NUMERIC(12, 2) price columns.
const priceScale = 2

// OrderReferenceCounter reports how many order items point at a product.
// The order engine implements it; deletion is refused while the count is
// positive.
type OrderReferenceCounter interface {
	CountOrderReferences(ctx context.Context, productID int64) (int64, error)
}

// Service is the catalog. Reads are public, mutations are admin only.
type Service interface {
	Create(ctx context.Context, actor identity.User, input NewProductInput) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, actor identity.User, id int64, input UpdateProductInput) (*Product, error)
	Delete(ctx context.Context, actor identity.User, id int64) error
	SearchByName(ctx context.Context, substring string) ([]*Product, error)
}

type service struct {
	repo   Repository
	orders OrderReferenceCounter
}

func NewService(repo Repository, orders OrderReferenceCounter) Service {
	return &service{repo: repo, orders: orders}
}

// Create adds a product to the catalog (admin only)
func (s *service) Create(ctx context.Context, actor identity.User, input NewProductInput) (*Product, error) {
	if err := identity.RequireAdmin(actor); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validate(input.Name, input.Price); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("price", p.Price.String()),
	)
	return p, nil
}

// List returns all products ordered by id
func (s *service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}

// GetByID returns a product or ErrProductNotFound
func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Update replaces a product's name and price (admin only)
func (s *service) Update(ctx context.Context, actor identity.User, id int64, input UpdateProductInput) (*Product, error) {
	if err := identity.RequireAdmin(actor); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validate(input.Name, input.Price); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, input)
}

// Delete refuses products that appear in any order, then removes the
// product's cart items, wishlist items and reviews before the product row.
func (s *service) Delete(ctx context.Context, actor identity.User, id int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteProduct"),
		zap.Int64("product_id", id),
	)

	if err := identity.RequireAdmin(actor); err != nil {
		return err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}

	refs, err := s.orders.CountOrderReferences(ctx, id)
	if err != nil {
		log.Error("failed to count order references", zap.Error(err))
		return err
	}
	if refs > 0 {
		log.Warn("product delete refused", zap.Int64("order_references", refs))
		return ErrReferencedByOrders
	}

	return s.repo.DeleteCascade(ctx, id)
}

// SearchByName matches products whose name contains substring, ignoring case
func (s *service) SearchByName(ctx context.Context, substring string) ([]*Product, error) {
	return s.repo.SearchByName(ctx, strings.TrimSpace(substring))
}

func validate(name string, price decimal.Decimal) error {
	if name == "" {
		return ErrEmptyName
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if !price.Equal(price.Truncate(priceScale)) {
		return ErrPricePrecision
	}
	return nil
}
