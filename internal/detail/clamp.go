package detail

import "github.com/dukerupert/nahl/internal/domain"

// Clamp returns the delta to submit when delta is requested from current.
//
// Increases are capped by the product's max order quantity and stock, and a
// first add is raised to the minimum order quantity. Decreases only stop at
// zero so a shopper can always empty the cart. A zero result means nothing
// should be submitted.
func Clamp(p domain.Product, current, delta int) int {
	switch {
	case delta > 0:
		target := current + delta
		target = p.MaxOrderQty.Cap(target)
		target = p.StockQuantity.Cap(target)
		if current == 0 && p.MinOrderQty > 1 {
			target = max(target, p.MinOrderQty)
		}
		return target - current
	case delta < 0:
		return max(0, current+delta) - current
	default:
		return 0
	}
}
