package order

import (
	"context"

	"storefront-core/internal/identity"
	"storefront-core/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	CreateFromCart(ctx context.Context, user identity.User) (*Order, error)
	ListForUser(ctx context.Context, user identity.User) ([]*Order, error)
	ListAll(ctx context.Context, actor identity.User) ([]*Order, error)
	Get(ctx context.Context, actor identity.User, id int64) (*Order, error)
	SetStatus(ctx context.Context, actor identity.User, id int64, status string) error
	Delete(ctx context.Context, actor identity.User, id int64) error
	// CountOrderReferences counts order items that point at productID. The
	// catalog uses it to refuse deleting products that appear in orders.
	CountOrderReferences(ctx context.Context, productID int64) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateFromCart turns the user's cart into a PLACED order and empties the cart
func (s *service) CreateFromCart(ctx context.Context, user identity.User) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateFromCart"),
	)

	if err := identity.RequireCustomer(user); err != nil {
		return nil, err
	}

	o, err := s.repo.CreateFromCart(ctx, user.ID)
	if err != nil {
		log.Warn("order not created", zap.Error(err))
		return nil, err
	}

	log.Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.String("total_price", o.TotalPrice.String()),
		zap.Int("items", len(o.Items)),
	)
	return o, nil
}

// ListForUser returns the user's orders, newest first
func (s *service) ListForUser(ctx context.Context, user identity.User) ([]*Order, error) {
	if !user.Authenticated() {
		return nil, identity.ErrUnauthenticated
	}
	return s.repo.ListForUser(ctx, user.ID)
}

// ListAll returns every order, newest first (admin only)
func (s *service) ListAll(ctx context.Context, actor identity.User) ([]*Order, error) {
	if err := identity.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

// Get returns an order to its owner or to an administrator.
func (s *service) Get(ctx context.Context, actor identity.User, id int64) (*Order, error) {
	if !actor.Authenticated() {
		return nil, identity.ErrUnauthenticated
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !actor.IsAdmin() && o.UserID != actor.ID {
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

// SetStatus moves an order to any known status (admin only)
func (s *service) SetStatus(ctx context.Context, actor identity.User, id int64, status string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetStatus"),
		zap.Int64("order_id", id),
	)

	if err := identity.RequireAdmin(actor); err != nil {
		return err
	}

	st, err := ParseStatus(status)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return err
	}

	log.Info("order status updated", zap.String("status", string(st)))
	return nil
}

// Delete removes an order and its items (admin only)
func (s *service) Delete(ctx context.Context, actor identity.User, id int64) error {
	if err := identity.RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order deleted", zap.Int64("order_id", id))
	return nil
}

// CountOrderReferences counts order items that point at productID
func (s *service) CountOrderReferences(ctx context.Context, productID int64) (int64, error) {
	return s.repo.CountByProduct(ctx, productID)
}
