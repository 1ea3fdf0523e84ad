package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaldistore/cart-engine/api/controllers"
	cartcontrollers "github.com/jaldistore/cart-engine/api/controllers/cart"
	"github.com/jaldistore/cart-engine/api/middleware"
	"github.com/jaldistore/cart-engine/pkg/config"
	"github.com/jaldistore/cart-engine/pkg/logger"
)

// NewRouter assembles the engine's HTTP surface: health probes, metrics, and
// the authenticated cart operations consumed by UI collaborators.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]controllers.Pinger,
	cartService cartcontrollers.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", cartcontrollers.List(cartService, logg))
		r.Post("/items", cartcontrollers.AddItem(cartService, logg))
		r.Patch("/items/{itemID}", cartcontrollers.UpdateQty(cartService, logg))
		r.Post("/items/remove", cartcontrollers.RemoveItems(cartService, logg))
		r.Post("/sync", cartcontrollers.Sync(cartService, logg))
		r.Post("/logout", cartcontrollers.Logout(cartService, logg))

		r.Get("/{storeID}", cartcontrollers.Fetch(cartService, logg))
		r.Delete("/{storeID}", cartcontrollers.RemoveCart(cartService, logg))
		r.Post("/{storeID}/offer", cartcontrollers.ApplyOffer(cartService, logg))
		r.Delete("/{storeID}/offer", cartcontrollers.ClearOffer(cartService, logg))
	})

	return r
}
