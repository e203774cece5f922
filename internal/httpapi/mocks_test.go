package httpapi

import (
	"context"
	"time"

	"storefront-core/internal/cart"
	"storefront-core/internal/discount"
	"storefront-core/internal/identity"
	"storefront-core/internal/order"
	"storefront-core/internal/product"
	"storefront-core/internal/review"
	"storefront-core/internal/wishlist"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) product(args mock.Arguments) (*product.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) products(args mock.Arguments) ([]*product.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, actor identity.User, input product.NewProductInput) (*product.Product, error) {
	return m.product(m.Called(ctx, actor, input))
}

func (m *MockProductService) List(ctx context.Context) ([]*product.Product, error) {
	return m.products(m.Called(ctx))
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductService) Update(ctx context.Context, actor identity.User, id int64, input product.UpdateProductInput) (*product.Product, error) {
	return m.product(m.Called(ctx, actor, id, input))
}

func (m *MockProductService) Delete(ctx context.Context, actor identity.User, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockProductService) SearchByName(ctx context.Context, substring string) ([]*product.Product, error) {
	return m.products(m.Called(ctx, substring))
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) review(args mock.Arguments) (*review.Review, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewService) Upsert(ctx context.Context, actor identity.User, productID int64, rating int, comment *string) (*review.Review, error) {
	return m.review(m.Called(ctx, actor, productID, rating, comment))
}

func (m *MockReviewService) Update(ctx context.Context, actor identity.User, reviewID int64, rating int, comment *string) (*review.Review, error) {
	return m.review(m.Called(ctx, actor, reviewID, rating, comment))
}

func (m *MockReviewService) Delete(ctx context.Context, actor identity.User, reviewID int64) error {
	return m.Called(ctx, actor, reviewID).Error(0)
}

func (m *MockReviewService) AverageRating(ctx context.Context, productID int64) (float64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockReviewService) ReviewCount(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewService) ListForProduct(ctx context.Context, productID int64) ([]*review.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Review), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*cart.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, user identity.User) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, user))
}

func (m *MockCartService) AddItem(ctx context.Context, user identity.User, productID int64, quantity int) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, user, productID, quantity))
}

func (m *MockCartService) SetItemQuantity(ctx context.Context, user identity.User, productID int64, quantity int) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, user, productID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, user identity.User, productID int64) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, user, productID))
}

func (m *MockCartService) ApplyDiscount(ctx context.Context, user identity.User, code string) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, user, code))
}

func (m *MockCartService) ClearDiscount(ctx context.Context, user identity.User) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, user))
}

func (m *MockCartService) Clear(ctx context.Context, user identity.User) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, user))
}

func (m *MockCartService) Count(ctx context.Context, user identity.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) wishlist(args mock.Arguments) (*wishlist.Wishlist, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wishlist.Wishlist), args.Error(1)
}

func (m *MockWishlistService) Get(ctx context.Context, user identity.User) (*wishlist.Wishlist, error) {
	return m.wishlist(m.Called(ctx, user))
}

func (m *MockWishlistService) Add(ctx context.Context, user identity.User, productID int64) (*wishlist.Wishlist, error) {
	return m.wishlist(m.Called(ctx, user, productID))
}

func (m *MockWishlistService) Remove(ctx context.Context, user identity.User, productID int64) (*wishlist.Wishlist, error) {
	return m.wishlist(m.Called(ctx, user, productID))
}

func (m *MockWishlistService) Clear(ctx context.Context, user identity.User) (*wishlist.Wishlist, error) {
	return m.wishlist(m.Called(ctx, user))
}

func (m *MockWishlistService) Count(ctx context.Context, user identity.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) orders(args mock.Arguments) ([]*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) CreateFromCart(ctx context.Context, user identity.User) (*order.Order, error) {
	return m.order(m.Called(ctx, user))
}

func (m *MockOrderService) ListForUser(ctx context.Context, user identity.User) ([]*order.Order, error) {
	return m.orders(m.Called(ctx, user))
}

func (m *MockOrderService) ListAll(ctx context.Context, actor identity.User) ([]*order.Order, error) {
	return m.orders(m.Called(ctx, actor))
}

func (m *MockOrderService) Get(ctx context.Context, actor identity.User, id int64) (*order.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *MockOrderService) SetStatus(ctx context.Context, actor identity.User, id int64, status string) error {
	return m.Called(ctx, actor, id, status).Error(0)
}

func (m *MockOrderService) Delete(ctx context.Context, actor identity.User, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockOrderService) CountOrderReferences(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

type MockDiscountService struct {
	mock.Mock
}

func (m *MockDiscountService) code(args mock.Arguments) (*discount.DiscountCode, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.DiscountCode), args.Error(1)
}

func (m *MockDiscountService) Create(ctx context.Context, actor identity.User, input discount.CreateInput) (*discount.DiscountCode, error) {
	return m.code(m.Called(ctx, actor, input))
}

func (m *MockDiscountService) FindActiveBanner(ctx context.Context) (*discount.DiscountCode, error) {
	return m.code(m.Called(ctx))
}

func (m *MockDiscountService) ListAllActive(ctx context.Context) ([]*discount.DiscountCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discount.DiscountCode), args.Error(1)
}

func (m *MockDiscountService) ValidateForUse(ctx context.Context, code string) (*discount.DiscountCode, error) {
	return m.code(m.Called(ctx, code))
}

func (m *MockDiscountService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscountService) DeleteByID(ctx context.Context, actor identity.User, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

type pinger struct {
	err error
}

func (p pinger) PingContext(context.Context) error { return p.err }
