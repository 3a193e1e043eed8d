package cart

import (
	"context"
	"fmt"

	"github.com/dukerupert/nahl/internal/domain"
)

// AddPath is the endpoint a bound button posts to.
const AddPath = "/cart/add"

// Binding wires a listing card's add-to-cart button to the cart.
type Binding struct {
	ProductID string
	Qty       int
	Action    string
}

// InCart reports whether the product already has a quantity.
func (b Binding) InCart() bool {
	return b.Qty > 0
}

// BindButton reads the product's quantity and returns the button binding.
func BindButton(ctx context.Context, c domain.Cart, session, productID string) (Binding, error) {
	qty, err := c.Qty(ctx, session, productID)
	if err != nil {
		return Binding{}, fmt.Errorf("binding %s: %w", productID, err)
	}
	return Binding{ProductID: productID, Qty: qty, Action: AddPath}, nil
}
