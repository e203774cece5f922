package discount

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-core/internal/identity"
	"storefront-core/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Service interface {
	Create(ctx context.Context, actor identity.User, input CreateInput) (*DiscountCode, error)
	// FindActiveBanner returns the newest active-flagged code when it is
	// currently active, or nil, nil.
	FindActiveBanner(ctx context.Context) (*DiscountCode, error)
	ListAllActive(ctx context.Context) ([]*DiscountCode, error)
	ValidateForUse(ctx context.Context, code string) (*DiscountCode, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteByID(ctx context.Context, actor identity.User, id int64) error
}

type service struct {
	repo  Repository
	cache BannerCache
	sfg   singleflight.Group
	now   func() time.Time
}

func NewService(repo Repository, cache BannerCache) Service {
	if cache == nil {
		cache = NopBannerCache{}
	}
	return &service{repo: repo, cache: cache, now: time.Now}
}

// Create registers a new code (admin only). Codes are trimmed and unique regardless of case
func (s *service) Create(ctx context.Context, actor identity.User, input CreateInput) (*DiscountCode, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateDiscount"),
	)

	if err := identity.RequireAdmin(actor); err != nil {
		return nil, err
	}

	input.Code = strings.TrimSpace(input.Code)
	if input.Code == "" {
		return nil, ErrEmptyCode
	}
	if !validPercent(input.Percent) {
		return nil, ErrInvalidPercent
	}
	if input.StartsAt != nil && input.ExpiresAt != nil && input.StartsAt.After(*input.ExpiresAt) {
		return nil, ErrInvalidWindow
	}

	d, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.invalidateBanner(ctx)
	log.Info("discount code created",
		zap.Int64("discount_id", d.ID),
		zap.String("code", d.Code),
		zap.String("percent", d.Percent.String()),
	)
	return d, nil
}

// FindActiveBanner returns the code to advertise, or nil when none is currently active
func (s *service) FindActiveBanner(ctx context.Context) (*DiscountCode, error) {
	candidate, err := s.bannerCandidate(ctx)
	if err != nil {
		return nil, err
	}
	if candidate == nil || !candidate.IsCurrentlyActive(s.now()) {
		return nil, nil
	}
	return candidate, nil
}

// bannerCandidate reads through the cache. Concurrent misses share a single
// storage query.
func (s *service) bannerCandidate(ctx context.Context) (*DiscountCode, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "FindActiveBanner"),
	)

	v, err, _ := s.sfg.Do(bannerKey, func() (any, error) {
		d, err := s.cache.Get(ctx)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Warn("banner cache read failed", zap.Error(err))
		}

		d, err = s.repo.LatestActiveFlagged(ctx)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, d); err != nil {
			log.Warn("banner cache write failed", zap.Error(err))
		}
		return d, nil
	})
	if err != nil {
		log.Error("failed to load banner", zap.Error(err))
		return nil, err
	}

	d, _ := v.(*DiscountCode)
	return d, nil
}

// ListAllActive lists currently active codes, newest first
func (s *service) ListAllActive(ctx context.Context) ([]*DiscountCode, error) {
	codes, err := s.repo.ListActiveFlagged(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]*DiscountCode, 0, len(codes))
	for _, d := range codes {
		if d.IsCurrentlyActive(now) {
			active = append(active, d)
		}
	}
	return active, nil
}

// ValidateForUse looks a code up case-insensitively and checks it can be applied now
func (s *service) ValidateForUse(ctx context.Context, code string) (*DiscountCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	d, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiscountNotFound
	}
	if !d.IsCurrentlyActive(s.now()) || !validPercent(d.Percent) {
		return nil, ErrDiscountNotActive
	}
	return d, nil
}

// SweepExpired permanently deletes codes that expired before now.
func (s *service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateBanner(ctx)
	}
	return n, nil
}

// DeleteByID removes a code (admin only). Deleting a missing code succeeds
func (s *service) DeleteByID(ctx context.Context, actor identity.User, id int64) error {
	if err := identity.RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.invalidateBanner(ctx)
	return nil
}

func (s *service) invalidateBanner(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.FromCtx(ctx).Warn("banner cache invalidation failed", zap.Error(err))
	}
}
