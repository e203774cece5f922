package review

import (
	"context"

	"storefront-core/internal/identity"
	"storefront-core/internal/logger"
	"storefront-core/internal/product"
	"storefront-core/internal/user"

	"go.uber.org/zap"
)

type ProductFinder interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}

// Service is the review ledger: at most one review per user and product.
// Mutations are open to the authoring shopper only; administrators are
// rejected.
type Service interface {
	Upsert(ctx context.Context, actor identity.User, productID int64, rating int, comment *string) (*Review, error)
	Update(ctx context.Context, actor identity.User, reviewID int64, rating int, comment *string) (*Review, error)
	Delete(ctx context.Context, actor identity.User, reviewID int64) error
	AverageRating(ctx context.Context, productID int64) (float64, error)
	ReviewCount(ctx context.Context, productID int64) (int64, error)
	ListForProduct(ctx context.Context, productID int64) ([]*Review, error)
}

type service struct {
	repo     Repository
	products ProductFinder
	users    UserFinder
}

func NewService(repo Repository, products ProductFinder, users UserFinder) Service {
	return &service{repo: repo, products: products, users: users}
}

// Upsert creates the actor's review of a product, or overwrites the one they already wrote
func (s *service) Upsert(ctx context.Context, actor identity.User, productID int64, rating int, comment *string) (*Review, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpsertReview"),
		zap.Int64("product_id", productID),
	)

	if err := identity.RequireCustomer(actor); err != nil {
		return nil, err
	}
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	author, err := s.users.FindByUsername(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	if author == nil {
		log.Warn("review author missing from directory", zap.String("username", actor.Username))
		return nil, user.ErrUserNotFound
	}

	rv, err := s.repo.Upsert(ctx, productID, author.ID, rating, comment)
	if err != nil {
		return nil, err
	}

	log.Info("review saved", zap.Int64("review_id", rv.ID), zap.Int("rating", rating))
	return rv, nil
}

// Update edits a review; only its author may do so
func (s *service) Update(ctx context.Context, actor identity.User, reviewID int64, rating int, comment *string) (*Review, error) {
	if _, err := s.authored(ctx, actor, reviewID); err != nil {
		return nil, err
	}
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}
	return s.repo.Update(ctx, reviewID, rating, comment)
}

// Delete removes a review; only its author may do so
func (s *service) Delete(ctx context.Context, actor identity.User, reviewID int64) error {
	if _, err := s.authored(ctx, actor, reviewID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("review deleted", zap.Int64("review_id", reviewID))
	return nil
}

// authored loads a review the actor is allowed to change.
func (s *service) authored(ctx context.Context, actor identity.User, reviewID int64) (*Review, error) {
	if err := identity.RequireCustomer(actor); err != nil {
		return nil, err
	}

	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	if rv.Username != actor.Username {
		return nil, ErrNotAuthor
	}
	return rv, nil
}

// AverageRating returns the mean rating of a product, 0 when it has no reviews
func (s *service) AverageRating(ctx context.Context, productID int64) (float64, error) {
	return s.repo.AverageRating(ctx, productID)
}

// ReviewCount returns how many reviews a product has
func (s *service) ReviewCount(ctx context.Context, productID int64) (int64, error) {
	return s.repo.Count(ctx, productID)
}

// ListForProduct returns a product's reviews, newest first
func (s *service) ListForProduct(ctx context.Context, productID int64) ([]*Review, error) {
	return s.repo.ListForProduct(ctx, productID)
}
