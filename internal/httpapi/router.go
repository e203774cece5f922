package httpapi

import (
	"context"
	"net/http"
	"time"

	"storefront-core/internal/cart"
	"storefront-core/internal/discount"
	"storefront-core/internal/logger"
	"storefront-core/internal/middleware"
	"storefront-core/internal/order"
	"storefront-core/internal/product"
	"storefront-core/internal/review"
	"storefront-core/internal/wishlist"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Products  product.Service
	Discounts discount.Service
	Carts     cart.Service
	Reviews   review.Service
	Orders    order.Service
	Wishlists wishlist.Service
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Tokens         middleware.TokenParser
	Users          middleware.UserLookup
	Limiter        *middleware.RateLimiter
	RequestTimeout time.Duration
	DB             Pinger
}

func NewRouter(svc Services, opts Options) http.Handler {
	products := NewProductHandler(svc.Products)
	reviews := NewReviewHandler(svc.Reviews)
	carts := NewCartHandler(svc.Carts)
	wishlists := NewWishlistHandler(svc.Wishlists)
	orders := NewOrderHandler(svc.Orders)
	discounts := NewDiscountHandler(svc.Discounts)

	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}
	if opts.Tokens != nil {
		r.Use(middleware.Auth(opts.Tokens, opts.Users))
	}
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	r.Get("/health", health(opts.DB))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Get("/search", products.Search)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", products.Get)
			r.Put("/", products.Update)
			r.Delete("/", products.Delete)
			r.Get("/reviews", reviews.ListForProduct)
			r.Post("/reviews", reviews.Upsert)
		})
	})

	r.Route("/reviews/{reviewID}", func(r chi.Router) {
		r.Put("/", reviews.Update)
		r.Delete("/", reviews.Delete)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", carts.GetCart)
		r.Delete("/", carts.ClearCart)
		r.Get("/count", carts.CountItems)
		r.Post("/items", carts.AddItem)
		r.Put("/items/{productID}", carts.UpdateQuantity)
		r.Delete("/items/{productID}", carts.RemoveItem)
		r.Post("/discount", carts.ApplyDiscount)
		r.Delete("/discount", carts.ClearDiscount)
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Get("/", wishlists.Get)
		r.Delete("/", wishlists.Clear)
		r.Post("/items", wishlists.Add)
		r.Delete("/items/{productID}", wishlists.Remove)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.PlaceOrder)
		r.Get("/", orders.ListMine)
		r.Get("/all", orders.ListAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", orders.Get)
			r.Put("/status", orders.UpdateStatus)
			r.Delete("/", orders.Delete)
		})
	})

	r.Route("/discounts", func(r chi.Router) {
		r.Get("/", discounts.List)
		r.Post("/", discounts.Create)
		r.Get("/banner", discounts.Banner)
		r.Delete("/{id}", discounts.Delete)
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
