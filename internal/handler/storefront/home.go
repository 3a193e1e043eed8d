package storefront

import (
	"net/http"

	"github.com/dukerupert/nahl/internal/catalog"
)

// HomeHandler handles the storefront homepage
type HomeHandler struct {
	Deps
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(d Deps) *HomeHandler {
	return &HomeHandler{Deps: d}
}

// HomePageData contains data for the home page template
type HomePageData struct {
	Layout
	Cards []Card
	Empty string
	Error *PageError
}

// ServeHTTP handles GET /
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := HomePageData{
		Layout: h.layout(ctx, StoreName, "home"),
		Empty:  catalog.Featured.Empty,
	}

	page, err := h.Catalog.ListProducts(ctx, catalog.Featured, 1)
	h.Metrics.ListingViewed(catalog.Featured.Name, err)
	if err == nil {
		data.Cards, err = h.cards(ctx, page, compactBadge)
	}
	if err != nil {
		data.Error = h.pageError(ctx, err)
		h.Renderer.RenderStatus(w, data.Error.Status, "home", data)
		return
	}

	h.Renderer.RenderStatus(w, http.StatusOK, "home", data)
}
