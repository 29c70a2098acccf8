// Package server exposes the storefront HTTP API over chi.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(products *ProductsHandler, orders *OrdersHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))

	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Get("/{id}", products.Get)
		r.Post("/", products.Create)
	})

	r.Route("/v1/orders", func(r chi.Router) {
		r.Post("/", orders.Create)
		r.Post("/get-order", orders.Get)
	})

	return r
}
