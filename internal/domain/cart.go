package domain

import "context"

// =============================================================================
// CART DOMAIN TYPES
// =============================================================================

// QuantityChanged is emitted whenever a product's cart quantity changes,
// regardless of which visitor tab or server instance caused it.
type QuantityChanged struct {
	Session string `json:"-"`
	ID      string `json:"id"`
	Qty     int    `json:"qty"`
}

// CartLine is one product in a visitor's cart.
type CartLine struct {
	ProductID string
	Qty       int
}

// Cart is the collaborator owning per-visitor product quantities.
// Implementations own clamping and persistence; quantities are never negative.
type Cart interface {
	// Qty returns the current quantity of a product, 0 if absent.
	Qty(ctx context.Context, session, productID string) (int, error)

	// Add applies delta and returns the resulting authoritative quantity.
	Add(ctx context.Context, session, productID string, delta int) (int, error)

	// Lines returns every product with a positive quantity.
	Lines(ctx context.Context, session string) ([]CartLine, error)

	// Subscribe delivers every change for the session until cancel is called.
	Subscribe(session string) (<-chan QuantityChanged, func())
}
