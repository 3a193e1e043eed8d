package routes

import (
	"io/fs"
	"net/http"

	"github.com/dukerupert/nahl/internal/handler/storefront"
	"github.com/dukerupert/nahl/internal/router"
)

// StorefrontDeps contains dependencies for storefront routes
type StorefrontDeps struct {
	// Home
	HomeHandler http.Handler

	// Category grids
	HerbsHandler http.Handler
	HoneyHandler http.Handler

	// Product detail and its cart actions
	ProductHandler *storefront.ProductHandler

	// Cart page, bound buttons and change stream
	CartHandler *storefront.CartHandler

	// CartLimiter guards cart mutations. Nil disables rate limiting.
	CartLimiter router.Middleware

	// NotFound renders unmatched paths.
	NotFound http.HandlerFunc
}

// SystemDeps contains dependencies for operational routes
type SystemDeps struct {
	Health  http.HandlerFunc
	Metrics http.Handler

	// Static is served under /static/.
	Static       fs.FS
	StaticMaxAge int
}
