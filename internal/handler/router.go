package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmeshcher/storefront/internal/health"
	custommiddleware "github.com/mmeshcher/storefront/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины.
// probes может быть nil, тогда маршруты проверки здоровья не регистрируются.
func (h *Handler) SetupRouter(probes *health.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	if probes != nil {
		r.Get("/healthz", probes.ServeHTTP)
		r.Get("/readyz", probes.ReadinessHandler)
		r.Get("/livez", health.LivenessHandler)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/promos", h.ListPromos)

		r.Group(func(r chi.Router) {
			r.Use(h.sessions.Middleware)

			r.Get("/cart", h.GetCart)
			r.Post("/cart/items", h.AddItem)
			r.Put("/cart/items/{id}", h.UpdateItem)
			r.Delete("/cart/items/{id}", h.RemoveItem)
			r.Post("/cart/promo", h.ApplyPromo)

			r.Post("/checkout", h.Checkout)

			r.Get("/section", h.GetSection)
			r.Put("/section", h.SwitchSection)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
