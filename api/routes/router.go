package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ecofinds-backend/api/controllers"
	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// Dependencies are the services mounted by the router. A nil service answers
// its routes with an INTERNAL_ERROR envelope.
type Dependencies struct {
	Carts    controllers.CartRegistry
	Checkout controllers.SummaryQuoter
	Coupons  controllers.CouponCatalog
	Orders   controllers.OrdersService
	Wishlist controllers.WishlistService
	// Ready lists the backends pinged by /health/ready, keyed by name.
	Ready   map[string]controllers.Pinger
	Metrics prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		chimiddleware.CleanPath,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Carts, logg))
			r.Delete("/", controllers.CartClear(deps.Carts, logg))
			r.Get("/mini", controllers.CartMini(deps.Carts, logg))
			r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
			r.Put("/items/{productID}", controllers.CartUpdateItem(deps.Carts, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(deps.Carts, logg))
			r.Post("/summary", controllers.CartSummary(deps.Carts, deps.Checkout, logg))
			r.Post("/checkout", controllers.CartCheckout(deps.Carts, deps.Orders, logg))
		})

		r.Get("/orders", controllers.OrdersList(deps.Orders, logg))
		r.Get("/coupons", controllers.CouponsList(deps.Coupons, logg))
		r.Get("/coupons/{code}", controllers.CouponResolve(deps.Coupons, logg))

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/items", controllers.WishlistAddItem(deps.Wishlist, logg))
			r.Delete("/items/{productID}", controllers.WishlistRemoveItem(deps.Wishlist, logg))
			r.Post("/items/{productID}/move-to-cart", controllers.WishlistMoveToCart(deps.Wishlist, deps.Carts, logg))
		})

		r.Post("/session/identity", controllers.SessionIdentity(deps.Carts, logg))
	})

	return r
}
