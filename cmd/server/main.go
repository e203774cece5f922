package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-core/internal/auth"
	"storefront-core/internal/cart"
	"storefront-core/internal/config"
	"storefront-core/internal/db"
	"storefront-core/internal/discount"
	"storefront-core/internal/httpapi"
	"storefront-core/internal/logger"
	"storefront-core/internal/middleware"
	"storefront-core/internal/order"
	"storefront-core/internal/outbox"
	"storefront-core/internal/product"
	"storefront-core/internal/review"
	"storefront-core/internal/user"
	"storefront-core/internal/wishlist"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	// minProductionSecretLen is the HS256 key size in bytes.
	minProductionSecretLen = 32
)

var errWeakJWTSecret = errors.New("JWT_SECRET must be at least 32 bytes in production")

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped with error", zap.Error(err))
	}
}

// app is the wired process: the HTTP handler plus the background workers
// that share its lifetime.
type app struct {
	handler http.Handler
	sweeper *discount.Sweeper
	poller  *outbox.Poller
	limiter *middleware.RateLimiter
	closers []func() error
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv, os.Getenv("LOG_LEVEL"))
	defer logger.Sync()
	log := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	a, err := newServer(cfg, database)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	a.startWorkers(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront server starting", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}

func newServer(cfg *config.Config, database *sql.DB) (*app, error) {
	log := logger.L()
	a := &app{}

	if cfg.IsProduction() && len(cfg.JWTSecret) < minProductionSecretLen {
		return nil, errWeakJWTSecret
	}
	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	var bannerCache discount.BannerCache = discount.NopBannerCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		a.closers = append(a.closers, redisClient.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, banner cache disabled", zap.Error(err))
		} else {
			bannerCache = discount.NewRedisBannerCache(redisClient, cfg.BannerCacheTTL)
			log.Info("redis banner cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	// Orders are built first: the catalog asks them whether a product is
	// still referenced before deleting it.
	users := user.NewRepository(database)
	orderSvc := order.NewService(order.NewRepository(database))
	productSvc := product.NewService(product.NewRepository(database), orderSvc)
	discountSvc := discount.NewService(discount.NewRepository(database), bannerCache)
	cartSvc := cart.NewService(cart.NewRepository(database), productSvc, discountSvc)
	reviewSvc := review.NewService(review.NewRepository(database), productSvc, users)
	wishlistSvc := wishlist.NewService(wishlist.NewRepository(database), productSvc)

	a.sweeper = discount.NewSweeper(discountSvc, cfg.DiscountSweepInterval)
	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher := outbox.NewKafkaPublisher(brokers, cfg.OrderEventsTopic)
		a.closers = append(a.closers, publisher.Close)
		a.poller = outbox.NewPoller(outbox.NewRepository(database), publisher, cfg.OutboxPollInterval)
		log.Info("order events publishing enabled", zap.Strings("brokers", brokers), zap.String("topic", cfg.OrderEventsTopic))
	} else {
		log.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	a.handler = httpapi.NewRouter(httpapi.Services{
		Products:  productSvc,
		Discounts: discountSvc,
		Carts:     cartSvc,
		Reviews:   reviewSvc,
		Orders:    orderSvc,
		Wishlists: wishlistSvc,
	}, httpapi.Options{
		Tokens:         signer,
		Users:          users,
		Limiter:        a.limiter,
		RequestTimeout: cfg.RequestTimeout,
		DB:             database,
	})

	return a, nil
}

func (a *app) startWorkers(ctx context.Context) {
	go a.sweeper.Run(ctx)
	go a.limiter.Cleanup(ctx)
	if a.poller != nil {
		go a.poller.Run(ctx)
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.L().Warn("failed to close resource", zap.Error(err))
		}
	}
}
