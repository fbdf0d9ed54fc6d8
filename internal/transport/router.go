package transport

import (
	"context"
	"net/http"
	"time"

	"storefront-be/internal/address"
	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/offer"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/store"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Carts     cart.Service
	Addresses address.Service
	Checkout  checkout.Service
	Orders    order.Service
	Offers    offer.Service
	Stores    store.Service
	Ledger    inventory.Ledger
	Users     user.Service
	Products  product.Service

	DB      Pinger
	Tokens  *auth.Tokens
	Limiter *middleware.RateLimiter
	Metrics *metrics.Registry

	InternalSecret string
}

type handler struct {
	svc Services
}

func NewRouter(s Services) *chi.Mux {
	h := &handler{svc: s}

	r := chi.NewRouter()
	r.Use(
		logger.RequestIDMiddleware,
		logger.LoggingMiddleware,
		middleware.Recover,
		middleware.Internal(s.InternalSecret),
		middleware.Authenticate(s.Tokens),
	)
	if s.Limiter != nil {
		r.Use(s.Limiter.Middleware)
	}

	r.Get("/health", h.health)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/offers/active", h.activeOffers)
	r.Get("/offers/preview", h.previewOffers)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Get("/quote", h.quote)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{variantID}", h.updateCartItem)
			r.Delete("/items/{variantID}", h.removeCartItem)
		})

		r.Get("/checkout/stores", h.availableStores)
		r.Post("/checkout", h.checkout)

		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Post("/orders/{id}/cancel", h.cancelOrder)

		r.Get("/addresses", h.listAddresses)
		r.Post("/addresses", h.createAddress)

		r.Put("/me/location", h.updateLocation)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(utils.RoleAdmin))

		r.Post("/products", h.createProduct)

		r.Post("/inventory/allocations", h.allocateStock)
		r.Get("/inventory/{variantID}", h.getGlobalStock)
		r.Put("/inventory/{variantID}/total", h.setTotalStock)

		r.Post("/offers", h.createOffer)
		r.Delete("/offers/{id}", h.deactivateOffer)

		r.Post("/stores", h.createStore)
		r.Get("/stores", h.listStores)
		r.Get("/stores/{id}", h.getStore)
		r.Get("/stores/{id}/hours", h.listStoreHours)
		r.Put("/stores/{id}/hours", h.setStoreHours)
		r.Get("/stores/{id}/inventory", h.listStoreInventory)
		r.Get("/stores/{id}/pickups", h.listStorePickups)

		r.Patch("/pickups/{id}", h.updatePickup)
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.svc.DB != nil {
		if err := h.svc.DB.PingContext(ctx); err != nil {
			logger.FromCtx(ctx).Warn("health check failed", zap.Error(err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
