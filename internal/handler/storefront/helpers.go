// Package storefront serves the shopper-facing pages: the home page, the
// category listings, the product detail page and the cart.
package storefront

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dukerupert/nahl/internal/cart"
	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/handler"
	"github.com/dukerupert/nahl/internal/middleware"
	"github.com/dukerupert/nahl/internal/service"
	"github.com/dukerupert/nahl/internal/telemetry"
)

// StoreName is shown in page titles and the header.
const StoreName = "Nahl"

// Renderer renders a named page with a status code.
type Renderer interface {
	RenderStatus(w http.ResponseWriter, status int, name string, data any)
}

// Deps are the collaborators shared by the storefront handlers.
type Deps struct {
	Catalog  service.CatalogService
	Cart     domain.Cart
	Renderer Renderer
	Metrics  *telemetry.BusinessMetrics
	Logger   *slog.Logger
}

// Layout is the data every page passes to the layout template.
type Layout struct {
	StoreName string
	Title     string
	Nav       string
	CartCount int
}

// PageError replaces a page's content region with a message.
type PageError struct {
	Status  int
	Message string
}

// Card is one product tile on a listing grid.
type Card struct {
	Product  domain.Product
	Currency string
	Image    string
	Badges   []catalog.Badge
	Button   cart.Binding
}

func (d Deps) logger(ctx context.Context) *slog.Logger {
	return middleware.GetLogger(ctx, d.Logger)
}

// layout builds the shared page data. A cart that cannot be read shows zero.
func (d Deps) layout(ctx context.Context, title, nav string) Layout {
	l := Layout{StoreName: StoreName, Title: title, Nav: nav}

	lines, err := d.Cart.Lines(ctx, domain.SessionFromContext(ctx))
	if err != nil {
		d.logger(ctx).Warn("failed to read cart for header", "error", err)
		return l
	}
	for _, line := range lines {
		l.CartCount += line.Qty
	}
	return l
}

// pageError logs err and turns it into the inline message for the content region.
func (d Deps) pageError(ctx context.Context, err error) *PageError {
	status := handler.ErrorCodeToHTTPStatus(domain.ErrorCode(err))

	logger := d.logger(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("page failed", "error", err, "status", status)
	} else {
		logger.Info("page not shown", "error", err, "status", status)
	}

	return &PageError{Status: status, Message: domain.ErrorMessage(err)}
}

// cards binds each product to its add-to-cart button. badges picks the
// badge set for the grid.
func (d Deps) cards(ctx context.Context, page *service.ListingPage, badges func(domain.Product) []catalog.Badge) ([]Card, error) {
	session := domain.SessionFromContext(ctx)

	cards := make([]Card, 0, len(page.Page.Items))
	for _, p := range page.Page.Items {
		button, err := cart.BindButton(ctx, d.Cart, session, p.ID)
		if err != nil {
			return nil, domain.Internal(err, "storefront.cards", "failed to read cart")
		}
		cards = append(cards, Card{
			Product:  p,
			Currency: page.Currency,
			Image:    p.CardImage(page.Listing.Fallback),
			Badges:   badges(p),
			Button:   button,
		})
	}
	return cards, nil
}

func compactBadge(p domain.Product) []catalog.Badge {
	if b := catalog.CardBadge(p); b != nil {
		return []catalog.Badge{*b}
	}
	return nil
}

// localReferer returns the path of a same-host Referer, or fallback.
func localReferer(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}
