package catalog

import (
	"github.com/dukerupert/nahl/internal/domain"
)

// BadgeStyle is the visual category of a badge.
type BadgeStyle string

const (
	BadgeStyleNew        BadgeStyle = "new"
	BadgeStyleSale       BadgeStyle = "sale"
	BadgeStyleOutOfStock BadgeStyle = "oos"
)

// Badge is a short status label rendered on a product.
type Badge struct {
	Text  string
	Style BadgeStyle
}

// Badge texts.
const (
	LabelUnavailable    = "unavailable"
	LabelNew            = "new"
	LabelBestseller     = "bestseller"
	LabelPreOrder       = "pre-order"
	LabelLimitedEdition = "limited edition"
	LabelBundle         = "bundle"
)

// Badges returns the product's badges in display order. An out-of-stock
// product gets exactly one badge.
func Badges(p domain.Product) []Badge {
	if p.IsOut() {
		return []Badge{{Text: LabelUnavailable, Style: BadgeStyleOutOfStock}}
	}

	var badges []Badge
	if p.NewArrival {
		badges = append(badges, Badge{Text: LabelNew, Style: BadgeStyleNew})
	}
	if p.Bestseller {
		badges = append(badges, Badge{Text: LabelBestseller, Style: BadgeStyleNew})
	}
	if off, ok := p.PercentOff(); ok {
		badges = append(badges, Badge{Text: off.String() + "%", Style: BadgeStyleSale})
	}
	if p.PreOrder {
		badges = append(badges, Badge{Text: LabelPreOrder, Style: BadgeStyleNew})
	}
	if p.LimitedEdition {
		badges = append(badges, Badge{Text: LabelLimitedEdition, Style: BadgeStyleNew})
	}
	if p.Bundle {
		badges = append(badges, Badge{Text: LabelBundle, Style: BadgeStyleNew})
	}
	// newArrival already produced a "new" badge above.
	if p.Featured && !p.NewArrival {
		badges = append(badges, Badge{Text: LabelNew, Style: BadgeStyleNew})
	}
	return badges
}

// CardBadge returns the single compact badge used on home page cards.
// Out of stock wins as everywhere else, then the sale percentage, then
// "new" for new or featured products.
func CardBadge(p domain.Product) *Badge {
	if p.IsOut() {
		return &Badge{Text: LabelUnavailable, Style: BadgeStyleOutOfStock}
	}
	if off, ok := p.PercentOff(); ok {
		return &Badge{Text: off.String() + "%", Style: BadgeStyleSale}
	}
	if p.NewArrival || p.Featured {
		return &Badge{Text: LabelNew, Style: BadgeStyleNew}
	}
	return nil
}
