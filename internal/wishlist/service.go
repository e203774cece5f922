package wishlist

import (
	"context"

	"storefront-core/internal/identity"
	"storefront-core/internal/logger"
	"storefront-core/internal/product"

	"go.uber.org/zap"
)

type ProductFinder interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

type Service interface {
	Get(ctx context.Context, user identity.User) (*Wishlist, error)
	Add(ctx context.Context, user identity.User, productID int64) (*Wishlist, error)
	Remove(ctx context.Context, user identity.User, productID int64) (*Wishlist, error)
	Clear(ctx context.Context, user identity.User) (*Wishlist, error)
	Count(ctx context.Context, user identity.User) (int64, error)
}

type service struct {
	repo     Repository
	products ProductFinder
}

func NewService(repo Repository, products ProductFinder) Service {
	return &service{repo: repo, products: products}
}

// Get returns the user's wishlist, creating it if needed
func (s *service) Get(ctx context.Context, user identity.User) (*Wishlist, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, user.ID)
}

// Add saves a product once. Adding it again leaves the wishlist unchanged.
func (s *service) Add(ctx context.Context, user identity.User, productID int64) (*Wishlist, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	w, err := s.repo.Add(ctx, user.ID, productID)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product added to wishlist",
		zap.Int64("product_id", productID),
		zap.Int("items", len(w.Items)),
	)
	return w, nil
}

// Remove deletes a product from the user's wishlist
func (s *service) Remove(ctx context.Context, user identity.User, productID int64) (*Wishlist, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	return s.repo.Remove(ctx, user.ID, productID)
}

// Clear empties the user's wishlist
func (s *service) Clear(ctx context.Context, user identity.User) (*Wishlist, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}
	return s.repo.Clear(ctx, user.ID)
}

// Count returns how many products the user has saved
func (s *service) Count(ctx context.Context, user identity.User) (int64, error) {
	if err := identity.RequireCustomer(user); err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, user.ID)
}
