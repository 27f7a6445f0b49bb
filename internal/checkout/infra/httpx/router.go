package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/infra/httpx/middlewares"
)

// NewRouter builds the HTTP surface. Admin routes assume the upstream gateway
// has already enforced the admin role; buyer routes require the
// authenticated-buyer header.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products/{id}", handler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireBuyer)
			r.Post("/orders", handler.PlaceOrder)
			r.Get("/orders", handler.ListMyOrders)
		})

		r.Get("/orders/{id}", handler.GetOrder)

		r.Route("/admin/orders", func(r chi.Router) {
			r.Get("/", handler.ListAllOrders)
			r.Put("/{id}/status", handler.UpdateStatus)
			r.Delete("/{id}", handler.DeleteOrder)
		})
	})

	return otelhttp.NewHandler(r, "checkout-http")
}
