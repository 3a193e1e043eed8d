package storefront

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/nahl/internal/catalog"
)

// ListingHandler serves one paged category grid.
type ListingHandler struct {
	Deps
	listing catalog.Listing
	title   string
}

// NewListingHandler creates a handler for listing, titled title.
func NewListingHandler(listing catalog.Listing, title string, d Deps) *ListingHandler {
	return &ListingHandler{Deps: d, listing: listing, title: title}
}

// ListingPageData contains data for the listing template
type ListingPageData struct {
	Layout
	Heading string
	Path    string
	Cards   []Card
	Empty   string
	Page    int
	Pager   *catalog.Pager
	Error   *PageError
}

// ServeHTTP handles GET /herbs and GET /honey
func (h *ListingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := ListingPageData{
		Layout:  h.layout(ctx, h.title+" | "+StoreName, h.listing.Name),
		Heading: h.title,
		Path:    h.listing.Path,
		Empty:   h.listing.Empty,
		Page:    ParsePage(r.URL.Query().Get("page")),
	}

	page, err := h.Catalog.ListProducts(ctx, h.listing, data.Page)
	h.Metrics.ListingViewed(h.listing.Name, err)
	if err == nil {
		data.Pager = page.Pager
		data.Cards, err = h.cards(ctx, page, catalog.Badges)
	}
	if err != nil {
		data.Error = h.pageError(ctx, err)
		h.Renderer.RenderStatus(w, data.Error.Status, "listing", data)
		return
	}

	h.Renderer.RenderStatus(w, http.StatusOK, "listing", data)
}

// ParsePage reads a 1-based page number. Anything else is page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
