package storefront

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/detail"
	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/handler"
)

// DetailFallbackImage is shown when a product has no images.
const DetailFallbackImage = "imgs/honey.jpeg"

// ProductHandler serves the product detail page and its cart actions.
type ProductHandler struct {
	Deps
	labels detail.Labels
}

// NewProductHandler creates a new product handler
func NewProductHandler(d Deps) *ProductHandler {
	return &ProductHandler{Deps: d, labels: detail.DefaultLabels}
}

// ProductPageData contains data for the product template
type ProductPageData struct {
	Layout
	Product  domain.Product
	Currency string
	Badges   []catalog.Badge
	Gallery  []string
	Selected int
	Image    string
	Stars    []bool
	View     detail.View
	Error    *PageError
}

// Show handles GET /product?id=...
func (h *ProductHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := ProductPageData{Layout: h.layout(ctx, StoreName, "")}

	pd, err := h.Catalog.GetProduct(ctx, r.URL.Query().Get("id"))
	h.Metrics.ProductViewed(err)
	if err == nil {
		ctrl := detail.NewController(pd.Product, h.Cart, domain.SessionFromContext(ctx)).WithLabels(h.labels)
		data.View, err = ctrl.View(ctx)
		if err != nil {
			err = domain.Internal(err, "storefront.product", "failed to read cart")
		}
	}
	if err != nil {
		data.Error = h.pageError(ctx, err)
		h.Renderer.RenderStatus(w, data.Error.Status, "product", data)
		return
	}

	p := pd.Product
	data.Title = p.Title + " | " + StoreName
	data.Product = p
	data.Currency = pd.Currency
	data.Badges = catalog.Badges(p)
	data.Gallery = p.Gallery(DetailFallbackImage)
	data.Image = p.PrimaryImage(DetailFallbackImage)
	data.Stars = p.Stars()

	// ?img=N selects a gallery thumbnail as the main image.
	if n, err := strconv.Atoi(r.URL.Query().Get("img")); err == nil && n >= 0 && n < len(data.Gallery) {
		data.Selected = n
		data.Image = data.Gallery[n]
	}

	h.Renderer.RenderStatus(w, http.StatusOK, "product", data)
}

// ActionResponse is the JSON reply to a product action.
type ActionResponse struct {
	View      detail.View    `json:"view"`
	Outcome   detail.Outcome `json:"outcome"`
	Submitted int            `json:"submitted"`
	Redirect  string         `json:"redirect,omitempty"`
}

// Action handles POST /product/action with form fields id and action
// (add, increment, decrement or buy).
func (h *ProductHandler) Action(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("storefront.action", "Invalid form data"))
		return
	}

	event, err := detail.ParseAction(r.PostFormValue("action"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	id := r.PostFormValue("id")
	pd, err := h.Catalog.GetProduct(ctx, id)
	if err != nil {
		h.pageError(ctx, err)
		handler.ErrorResponse(w, r, err)
		return
	}

	ctrl := detail.NewController(pd.Product, h.Cart, domain.SessionFromContext(ctx)).WithLabels(h.labels)
	res, err := ctrl.Handle(ctx, detail.Message{Event: event})
	if err != nil {
		err = domain.Internal(err, "storefront.action", "failed to update cart")
		h.pageError(ctx, err)
		handler.ErrorResponse(w, r, err)
		return
	}
	h.Metrics.CartAction(string(event), string(res.Outcome))

	h.logger(ctx).Debug("product action",
		"product_id", id,
		"event", event,
		"outcome", res.Outcome,
		"requested", res.Requested,
		"submitted", res.Submitted,
	)

	if handler.WantsJSON(r) {
		_ = handler.WriteJSON(w, http.StatusOK, ActionResponse{
			View:      res.View,
			Outcome:   res.Outcome,
			Submitted: res.Submitted,
			Redirect:  res.Redirect,
		})
		return
	}

	target := res.Redirect
	if target == "" {
		target = handler.ProductURL(id)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
