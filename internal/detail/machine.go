// Package detail drives the product detail actions: it derives the button
// state from a product and its cart quantity and turns clicks into clamped
// cart deltas.
package detail

import (
	"context"
	"fmt"

	"github.com/dukerupert/nahl/internal/domain"
)

// State is the observable state of a product detail view.
type State int

const (
	StateEmpty State = iota
	StateInCart
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateInCart:
		return "in_cart"
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event is a message handled by the controller.
type Event string

const (
	EventAdd             Event = "click:add"
	EventIncrement       Event = "click:increment"
	EventDecrement       Event = "click:decrement"
	EventBuy             Event = "click:buy"
	EventQuantityChanged Event = "external:quantityChanged"
)

// ParseAction maps a form action name to its click event.
func ParseAction(action string) (Event, error) {
	switch action {
	case "add":
		return EventAdd, nil
	case "increment":
		return EventIncrement, nil
	case "decrement":
		return EventDecrement, nil
	case "buy":
		return EventBuy, nil
	default:
		return "", domain.Errorf(domain.EINVALID, "detail.action", "unknown action %q", action)
	}
}

// CartPath is where a purchase sends the shopper.
const CartPath = "/cart"

// Labels holds the button texts.
type Labels struct {
	Unavailable string
	PreOrder    string
	AddToCart   string
	Remove      string
}

// DefaultLabels are the storefront's English button texts.
var DefaultLabels = Labels{
	Unavailable: "unavailable",
	PreOrder:    "pre-order",
	AddToCart:   "add to cart",
	Remove:      "remove from cart",
}

// View is everything the detail page needs to render its actions.
type View struct {
	ProductID   string `json:"id"`
	State       State  `json:"state"`
	Qty         int    `json:"qty"`
	MainLabel   string `json:"mainLabel"`
	MainEnabled bool   `json:"mainEnabled"`
	QtyEnabled  bool   `json:"qtyEnabled"`
	BuyEnabled  bool   `json:"buyEnabled"`
}

// Derive computes the view for p with qty in the cart.
func Derive(p domain.Product, qty int, labels Labels) View {
	v := View{ProductID: p.ID, Qty: qty}

	switch {
	case p.IsOut():
		v.State = StateUnavailable
		v.MainLabel = labels.Unavailable
	case qty > 0:
		v.State = StateInCart
		v.MainLabel = labels.Remove
	default:
		v.State = StateEmpty
		v.MainLabel = labels.AddToCart
		if p.PreOrder {
			v.MainLabel = labels.PreOrder
		}
	}

	enabled := v.State != StateUnavailable
	v.MainEnabled = enabled
	v.QtyEnabled = enabled
	v.BuyEnabled = enabled
	return v
}

// Outcome describes what handling an event did to the cart.
type Outcome string

const (
	// OutcomeSubmitted means a delta was sent to the cart.
	OutcomeSubmitted Outcome = "submitted"
	// OutcomeSuppressed means the clamped delta was zero and nothing was sent.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeIgnored means the event does not apply in the current state.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeResynced means an external change replaced the displayed quantity.
	OutcomeResynced Outcome = "resynced"
)

// Message is an event plus its payload. Change is set only for
// EventQuantityChanged.
type Message struct {
	Event  Event
	Change domain.QuantityChanged
}

// Result is the outcome of handling one message.
type Result struct {
	View      View
	Outcome   Outcome
	Requested int
	Submitted int

	// Redirect is set when the shopper should be sent elsewhere.
	Redirect string
}

// Controller mediates between one product's detail view and the cart.
// It keeps no quantity of its own: every click re-reads the cart.
type Controller struct {
	product domain.Product
	cart    domain.Cart
	session string
	labels  Labels
}

// NewController creates a controller for product in the visitor's cart.
func NewController(product domain.Product, cart domain.Cart, session string) *Controller {
	return &Controller{
		product: product,
		cart:    cart,
		session: session,
		labels:  DefaultLabels,
	}
}

// WithLabels replaces the button texts.
func (c *Controller) WithLabels(labels Labels) *Controller {
	c.labels = labels
	return c
}

// View reads the current quantity and derives the view.
func (c *Controller) View(ctx context.Context) (View, error) {
	qty, err := c.cart.Qty(ctx, c.session, c.product.ID)
	if err != nil {
		return View{}, fmt.Errorf("reading cart quantity: %w", err)
	}
	return Derive(c.product, qty, c.labels), nil
}

// Handle applies msg and returns the resulting view.
func (c *Controller) Handle(ctx context.Context, msg Message) (Result, error) {
	if msg.Event == EventQuantityChanged {
		return c.resync(msg.Change), nil
	}

	qty, err := c.cart.Qty(ctx, c.session, c.product.ID)
	if err != nil {
		return Result{}, fmt.Errorf("reading cart quantity: %w", err)
	}

	ignored := Result{View: Derive(c.product, qty, c.labels), Outcome: OutcomeIgnored}
	if c.product.IsOut() {
		return ignored, nil
	}

	switch msg.Event {
	case EventAdd:
		if qty > 0 {
			return c.apply(ctx, qty, -qty)
		}
		return c.apply(ctx, qty, 1)

	case EventIncrement:
		return c.apply(ctx, qty, 1)

	case EventDecrement:
		if qty <= 0 {
			return ignored, nil
		}
		return c.apply(ctx, qty, -1)

	case EventBuy:
		res := ignored
		if qty <= 0 {
			res, err = c.apply(ctx, qty, 1)
			if err != nil {
				return Result{}, err
			}
		}
		res.Redirect = CartPath
		return res, nil

	default:
		return Result{}, domain.Errorf(domain.EINVALID, "detail.handle", "unknown event %q", msg.Event)
	}
}

// apply clamps delta and submits it. The quantity returned by the cart drives the view.
func (c *Controller) apply(ctx context.Context, current, delta int) (Result, error) {
	submit := Clamp(c.product, current, delta)
	if submit == 0 {
		return Result{
			View:      Derive(c.product, current, c.labels),
			Outcome:   OutcomeSuppressed,
			Requested: delta,
		}, nil
	}

	next, err := c.cart.Add(ctx, c.session, c.product.ID, submit)
	if err != nil {
		return Result{}, fmt.Errorf("updating cart: %w", err)
	}

	return Result{
		View:      Derive(c.product, next, c.labels),
		Outcome:   OutcomeSubmitted,
		Requested: delta,
		Submitted: submit,
	}, nil
}

// resync overwrites the displayed quantity with an external change for this product.
func (c *Controller) resync(change domain.QuantityChanged) Result {
	if change.ID != c.product.ID {
		return Result{Outcome: OutcomeIgnored}
	}
	return Result{
		View:    Derive(c.product, max(0, change.Qty), c.labels),
		Outcome: OutcomeResynced,
	}
}
