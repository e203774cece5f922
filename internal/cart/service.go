package cart

import (
	"context"
	"strings"

	"storefront-core/internal/discount"
	"storefront-core/internal/identity"
	"storefront-core/internal/logger"
	"storefront-core/internal/product"

	"go.uber.org/zap"
)

// ProductFinder resolves a product or fails with product.ErrProductNotFound.
type ProductFinder interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

type DiscountValidator interface {
	ValidateForUse(ctx context.Context, code string) (*discount.DiscountCode, error)
}

// Service defines the business logic for carts. Every method acts on the
// caller's own cart, creating it on first access.
type Service interface {
	Get(ctx context.Context, user identity.User) (*Cart, error)
	AddItem(ctx context.Context, user identity.User, productID int64, quantity int) (*Cart, error)
	SetItemQuantity(ctx context.Context, user identity.User, productID int64, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, user identity.User, productID int64) (*Cart, error)
	ApplyDiscount(ctx context.Context, user identity.User, code string) (*Cart, error)
	ClearDiscount(ctx context.Context, user identity.User) (*Cart, error)
	Clear(ctx context.Context, user identity.User) (*Cart, error)
	Count(ctx context.Context, user identity.User) (int64, error)
}

type service struct {
	repo      Repository
	products  ProductFinder
	discounts DiscountValidator
}

func NewService(repo Repository, products ProductFinder, discounts DiscountValidator) Service {
	return &service{repo: repo, products: products, discounts: discounts}
}

// Get returns the user's cart with live catalog prices, creating it if needed
func (s *service) Get(ctx context.Context, user identity.User) (*Cart, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, user.ID)
}

// AddItem adds quantity units of a product, summing with an existing line.
func (s *service) AddItem(ctx context.Context, user identity.User, productID int64, quantity int) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)

	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		log.Warn("add to cart rejected", zap.Error(err))
		return nil, err
	}

	c, err := s.repo.AddItem(ctx, user.ID, productID, quantity)
	if err != nil {
		return nil, err
	}

	log.Info("item added to cart", zap.Int("lines", len(c.Items)))
	return c, nil
}

// SetItemQuantity replaces a line's quantity. Zero or less removes the line.
func (s *service) SetItemQuantity(ctx context.Context, user identity.User, productID int64, quantity int) (*Cart, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return s.repo.RemoveItem(ctx, user.ID, productID)
	}
	return s.repo.SetItemQuantity(ctx, user.ID, productID, quantity)
}

// RemoveItem deletes a product line from the user's cart; removing an absent line is a no-op
func (s *service) RemoveItem(ctx context.Context, user identity.User, productID int64) (*Cart, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	return s.repo.RemoveItem(ctx, user.ID, productID)
}

// ApplyDiscount copies the code and its percent onto the cart. Later changes
// to the code itself do not affect a cart that already holds it.
func (s *service) ApplyDiscount(ctx context.Context, user identity.User, code string) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ApplyDiscount"),
	)

	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	dc, err := s.discounts.ValidateForUse(ctx, code)
	if err != nil {
		log.Info("discount rejected", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	c, err := s.repo.SetDiscount(ctx, user.ID, dc.Code, dc.Percent)
	if err != nil {
		return nil, err
	}

	log.Info("discount applied",
		zap.String("code", dc.Code),
		zap.String("percent", dc.Percent.String()),
	)
	return c, nil
}

// ClearDiscount drops the applied code and percent from the user's cart
func (s *service) ClearDiscount(ctx context.Context, user identity.User) (*Cart, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	return s.repo.ClearDiscount(ctx, user.ID)
}

// Clear empties the user's cart and drops any applied discount
func (s *service) Clear(ctx context.Context, user identity.User) (*Cart, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	return s.repo.Clear(ctx, user.ID)
}

// Count returns the number of distinct lines in the cart.
func (s *service) Count(ctx context.Context, user identity.User) (int64, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return 0, err
	}
	return s.repo.CountItems(ctx, user.ID)
}
