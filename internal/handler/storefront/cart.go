package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dukerupert/nahl/internal/detail"
	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/handler"
	"github.com/dukerupert/nahl/internal/service"
)

// DefaultHeartbeat keeps idle event streams open through proxies.
const DefaultHeartbeat = 25 * time.Second

// CartHandler handles all cart-related storefront routes
type CartHandler struct {
	Deps
	heartbeat time.Duration
}

// NewCartHandler creates a new cart handler
func NewCartHandler(d Deps) *CartHandler {
	return &CartHandler{Deps: d, heartbeat: DefaultHeartbeat}
}

// CartPageData contains data for the cart template
type CartPageData struct {
	Layout
	Summary *service.CartSummary
	Error   *PageError
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := CartPageData{Layout: h.layout(ctx, "Cart | "+StoreName, "cart")}

	summary, err := h.Catalog.GetCartSummary(ctx, h.Cart, domain.SessionFromContext(ctx))
	if err != nil {
		data.Error = h.pageError(ctx, err)
		h.Renderer.RenderStatus(w, data.Error.Status, "cart", data)
		return
	}
	data.Summary = summary

	h.Renderer.RenderStatus(w, http.StatusOK, "cart", data)
}

// AddResponse is the JSON reply to a bound add-to-cart button.
type AddResponse struct {
	ID      string         `json:"id"`
	Qty     int            `json:"qty"`
	Outcome detail.Outcome `json:"outcome"`
}

// Add handles POST /cart/add from a listing card. It adds one unit,
// clamped by the product's order limits, then returns to the listing.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("storefront.cart_add", "Invalid form data"))
		return
	}

	id := r.PostFormValue("id")
	pd, err := h.Catalog.GetProduct(ctx, id)
	if err != nil {
		h.pageError(ctx, err)
		handler.ErrorResponse(w, r, err)
		return
	}

	ctrl := detail.NewController(pd.Product, h.Cart, domain.SessionFromContext(ctx))
	res, err := ctrl.Handle(ctx, detail.Message{Event: detail.EventIncrement})
	if err != nil {
		err = domain.Internal(err, "storefront.cart_add", "failed to update cart")
		h.pageError(ctx, err)
		handler.ErrorResponse(w, r, err)
		return
	}
	h.Metrics.CartAction(string(detail.EventIncrement), string(res.Outcome))

	if handler.WantsJSON(r) {
		_ = handler.WriteJSON(w, http.StatusOK, AddResponse{ID: id, Qty: res.View.Qty, Outcome: res.Outcome})
		return
	}

	http.Redirect(w, r, localReferer(r, "/"), http.StatusSeeOther)
}

// Events handles GET /cart/events, a server-sent event stream of the
// visitor's cart changes. Every change is sent as a quantityChanged event
// carrying {id, qty}. With ?product=ID the stream also sends the product's
// re-derived detail view as a view event after each change to it.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := domain.SessionFromContext(ctx)
	logger := h.logger(ctx)

	var ctrl *detail.Controller
	if id := r.URL.Query().Get("product"); id != "" {
		pd, err := h.Catalog.GetProduct(ctx, id)
		if err != nil {
			h.pageError(ctx, err)
			handler.ErrorResponse(w, r, err)
			return
		}
		ctrl = detail.NewController(pd.Product, h.Cart, session)
	}

	changes, cancel := h.Cart.Subscribe(session)
	defer cancel()
	defer h.Metrics.StreamOpened()()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "retry: 3000\n\n")
	if err := rc.Flush(); err != nil {
		logger.Warn("event stream cannot flush", "error", err)
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case change, ok := <-changes:
			if !ok {
				return
			}
			if err := writeEvent(w, "quantityChanged", change); err != nil {
				logger.Debug("event stream closed", "error", err)
				return
			}
			if ctrl != nil {
				res, err := ctrl.Handle(ctx, detail.Message{Event: detail.EventQuantityChanged, Change: change})
				if err != nil {
					logger.Error("failed to resync product view", "product_id", change.ID, "error", err)
				} else if res.Outcome == detail.OutcomeResynced {
					if err := writeEvent(w, "view", res.View); err != nil {
						return
					}
				}
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}
