package discount

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-core/internal/apperror"
	"storefront-core/internal/identity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, input CreateInput) (*DiscountCode, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DiscountCode), args.Error(1)
}

func (m *MockRepository) LatestActiveFlagged(ctx context.Context) (*DiscountCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DiscountCode), args.Error(1)
}

func (m *MockRepository) ListActiveFlagged(ctx context.Context) ([]*DiscountCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*DiscountCode), args.Error(1)
}

func (m *MockRepository) FindByCode(ctx context.Context, code string) (*DiscountCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DiscountCode), args.Error(1)
}

func (m *MockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var (
	admin    = identity.User{ID: 1, Username: "root", Role: identity.RoleAdmin}
	customer = identity.User{ID: 2, Username: "alice", Role: identity.RoleUser}
	fixedNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
)

func newTestService(repo Repository, cache BannerCache) *service {
	svc := NewService(repo, cache).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("TrimsCode", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		want := CreateInput{Code: "SUMMER", Percent: decimal.NewFromInt(15)}
		repo.On("Create", ctx, want).Return(&DiscountCode{ID: 9, Code: "SUMMER", Percent: want.Percent, Active: true}, nil)

		d, err := svc.Create(ctx, admin, CreateInput{Code: "  SUMMER ", Percent: want.Percent})

		require.NoError(t, err)
		assert.Equal(t, int64(9), d.ID)
		repo.AssertExpectations(t)
	})

	t.Run("PercentOutOfRange", func(t *testing.T) {
		for _, p := range []string{"0", "-1", "100.5", "0.001", "12.345"} {
			svc := newTestService(new(MockRepository), nil)

			_, err := svc.Create(ctx, admin, CreateInput{Code: "X", Percent: decimal.RequireFromString(p)})

			assert.ErrorIs(t, err, ErrInvalidPercent, p)
			assert.Equal(t, apperror.KindInvalidArgument, apperror.KindOf(err))
		}
	})

	t.Run("InvertedWindow", func(t *testing.T) {
		svc := newTestService(new(MockRepository), nil)
		start, end := fixedNow.Add(time.Hour), fixedNow

		_, err := svc.Create(ctx, admin, CreateInput{
			Code: "X", Percent: decimal.NewFromInt(5), StartsAt: &start, ExpiresAt: &end,
		})

		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, ErrDuplicateCode)

		_, err := svc.Create(ctx, admin, CreateInput{Code: "summer", Percent: decimal.NewFromInt(5)})

		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("NotAdmin", func(t *testing.T) {
		svc := newTestService(new(MockRepository), nil)

		_, err := svc.Create(ctx, customer, CreateInput{Code: "X", Percent: decimal.NewFromInt(5)})

		assert.ErrorIs(t, err, identity.ErrAdminOnly)
	})
}

func TestService_ValidateForUse(t *testing.T) {
	ctx := context.Background()
	past := fixedNow.Add(-time.Minute)

	t.Run("StartsExactlyNow", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		start := fixedNow
		repo.On("FindByCode", ctx, "SAVE").
			Return(&DiscountCode{Code: "SAVE", Percent: decimal.NewFromInt(10), Active: true, StartsAt: &start}, nil)

		d, err := svc.ValidateForUse(ctx, " SAVE ")

		require.NoError(t, err)
		assert.Equal(t, "SAVE", d.Code)
	})

	t.Run("Expired", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("FindByCode", ctx, "OLD").
			Return(&DiscountCode{Code: "OLD", Percent: decimal.NewFromInt(10), Active: true, ExpiresAt: &past}, nil)

		_, err := svc.ValidateForUse(ctx, "OLD")

		assert.ErrorIs(t, err, ErrDiscountNotActive)
		assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
	})

	t.Run("Deactivated", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("FindByCode", ctx, "OFF").
			Return(&DiscountCode{Code: "OFF", Percent: decimal.NewFromInt(10), Active: false}, nil)

		_, err := svc.ValidateForUse(ctx, "OFF")

		assert.ErrorIs(t, err, ErrDiscountNotActive)
	})

	t.Run("Unknown", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("FindByCode", ctx, "NOPE").Return(nil, nil)

		_, err := svc.ValidateForUse(ctx, "NOPE")

		assert.ErrorIs(t, err, ErrDiscountNotFound)
	})
}

func TestService_FindActiveBanner(t *testing.T) {
	ctx := context.Background()

	t.Run("CachedAfterFirstRead", func(t *testing.T) {
		cache, _ := setupTestRedis(t)
		repo := new(MockRepository)
		svc := newTestService(repo, cache)
		repo.On("LatestActiveFlagged", ctx).
			Return(&DiscountCode{ID: 3, Code: "BANNER", Percent: decimal.NewFromInt(5), Active: true}, nil).
			Once()

		first, err := svc.FindActiveBanner(ctx)
		require.NoError(t, err)
		second, err := svc.FindActiveBanner(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(3), first.ID)
		assert.Equal(t, int64(3), second.ID)
		repo.AssertNumberOfCalls(t, "LatestActiveFlagged", 1)
	})

	t.Run("NewestNotYetStarted", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		start := fixedNow.Add(time.Hour)
		repo.On("LatestActiveFlagged", ctx).
			Return(&DiscountCode{ID: 8, Active: true, StartsAt: &start}, nil)

		d, err := svc.FindActiveBanner(ctx)

		assert.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("None", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("LatestActiveFlagged", ctx).Return(nil, nil)

		d, err := svc.FindActiveBanner(ctx)

		assert.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("CreateInvalidatesCache", func(t *testing.T) {
		cache, mr := setupTestRedis(t)
		repo := new(MockRepository)
		svc := newTestService(repo, cache)
		require.NoError(t, cache.Set(ctx, &DiscountCode{ID: 1, Active: true}))

		repo.On("Create", ctx, mock.Anything).Return(&DiscountCode{ID: 2, Code: "NEW"}, nil)
		_, err := svc.Create(ctx, admin, CreateInput{Code: "NEW", Percent: decimal.NewFromInt(5)})

		require.NoError(t, err)
		assert.False(t, mr.Exists(bannerKey))
	})

	t.Run("StorageError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("LatestActiveFlagged", ctx).Return(nil, errors.New("db error"))

		_, err := svc.FindActiveBanner(ctx)

		assert.Error(t, err)
	})
}

func TestService_ListAllActive(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newTestService(repo, nil)
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)

	repo.On("ListActiveFlagged", ctx).Return([]*DiscountCode{
		{ID: 5, Active: true},
		{ID: 4, Active: true, ExpiresAt: &past},
		{ID: 3, Active: true, StartsAt: &future},
		{ID: 2, Active: true, StartsAt: &past, ExpiresAt: &future},
	}, nil)

	codes, err := svc.ListAllActive(ctx)

	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, int64(5), codes[0].ID)
	assert.Equal(t, int64(2), codes[1].ID)
}

func TestService_SweepExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes", func(t *testing.T) {
		cache, mr := setupTestRedis(t)
		repo := new(MockRepository)
		svc := newTestService(repo, cache)
		require.NoError(t, cache.Set(ctx, &DiscountCode{ID: 1}))
		repo.On("DeleteExpired", ctx, fixedNow).Return(int64(2), nil)

		n, err := svc.SweepExpired(ctx, fixedNow)

		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.False(t, mr.Exists(bannerKey))
	})

	t.Run("Error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("DeleteExpired", ctx, fixedNow).Return(int64(0), errors.New("db error"))

		_, err := svc.SweepExpired(ctx, fixedNow)

		assert.Error(t, err)
	})
}

func TestService_DeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Idempotent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)
		repo.On("DeleteByID", ctx, int64(404)).Return(nil)

		assert.NoError(t, svc.DeleteByID(ctx, admin, 404))
	})

	t.Run("NotAdmin", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil)

		err := svc.DeleteByID(ctx, customer, 1)

		assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
		repo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})
}
