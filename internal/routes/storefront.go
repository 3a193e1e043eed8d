package routes

import (
	"github.com/dukerupert/nahl/internal/middleware"
	"github.com/dukerupert/nahl/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing storefront routes.
// Page routes run under a timeout; the cart event stream is long-lived and
// does not.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	pages := r.Group(middleware.Timeout(middleware.DefaultTimeout))

	// Browsing
	pages.Get("/{$}", deps.HomeHandler.ServeHTTP)
	pages.Get("/herbs", deps.HerbsHandler.ServeHTTP)
	pages.Get("/honey", deps.HoneyHandler.ServeHTTP)
	pages.Get("/product", deps.ProductHandler.Show)

	// Cart
	pages.Get("/cart", deps.CartHandler.View)
	r.Get("/cart/events", deps.CartHandler.Events)

	// Cart mutations (small forms, rate limited per visitor)
	mutations := []router.Middleware{middleware.MaxBodySize(middleware.FormMaxBodySize)}
	if deps.CartLimiter != nil {
		mutations = append(mutations, deps.CartLimiter)
	}
	actions := pages.Group(mutations...)
	actions.Post("/product/action", deps.ProductHandler.Action)
	actions.Post("/cart/add", deps.CartHandler.Add)

	if deps.NotFound != nil {
		r.NotFound(deps.NotFound)
	}
}

// RegisterSystemRoutes registers health, metrics and static file routes.
func RegisterSystemRoutes(r *router.Router, deps SystemDeps) {
	if deps.Health != nil {
		r.Get("/health", deps.Health)
	}
	if deps.Metrics != nil {
		r.Handle("GET", "/metrics", deps.Metrics)
	}
	if deps.Static != nil {
		r.Static("/static/", deps.Static, deps.StaticMaxAge)
	}
}
