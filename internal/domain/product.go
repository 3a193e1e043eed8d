package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// ProductStatus represents the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// StockStatus is the catalog's declared availability for a product.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// DiscountType identifies how a discount value is applied.
// Only percentage discounts are rendered as badges.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
)

// DefaultSortOrder is used for products without a usable sortOrder.
const DefaultSortOrder = 9999

// DefaultCurrency is shown next to prices when the catalog does not name one.
const DefaultCurrency = "EGP"

// Limit is an optional upper bound. The zero value is unlimited.
type Limit struct {
	N      int
	Finite bool
}

// Unlimited returns a Limit with no bound.
func Unlimited() Limit { return Limit{} }

// LimitOf returns a finite Limit of n.
func LimitOf(n int) Limit { return Limit{N: n, Finite: true} }

// Cap returns v bounded by the limit.
func (l Limit) Cap(v int) int {
	if l.Finite && v > l.N {
		return l.N
	}
	return v
}

// Discount is a product discount. Value is invalid when the source value was not numeric.
type Discount struct {
	Type  DiscountType
	Value decimal.NullDecimal
}

// Product is a fully normalized catalog record. Every optional field of the
// raw catalog has been resolved to a concrete value or an explicit absence.
type Product struct {
	ID         string
	Title      string
	CategoryID string
	Status     ProductStatus
	SortOrder  float64

	// Position is the record's index in the source list.
	Position int

	// Pricing
	Price          decimal.Decimal
	CompareAtPrice decimal.NullDecimal
	Discount       *Discount

	// Inventory and order bounds
	StockStatus   StockStatus
	StockQuantity Limit
	MinOrderQty   int
	MaxOrderQty   Limit

	// StockAmount is the source stock quantity before flooring to whole
	// units. When set it decides IsOut.
	StockAmount decimal.NullDecimal

	// Flags
	NewArrival        bool
	Bestseller        bool
	PreOrder          bool
	LimitedEdition    bool
	Bundle            bool
	Featured          bool
	GiftWrapAvailable bool

	// Media
	Images    []string
	Thumbnail string

	// Reviews
	Rating       *float64
	ReviewsCount *int

	Description string
	ExpiryDate  string
}

// Catalog is the normalized product catalog.
type Catalog struct {
	Currency string
	Products []Product
}

// Find returns the product with the given id.
func (c *Catalog) Find(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// IsActive reports whether the product may be displayed.
func (p Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsOut reports whether the product cannot be ordered at all.
func (p Product) IsOut() bool {
	if p.StockStatus == StockStatusOutOfStock {
		return true
	}
	if p.StockAmount.Valid {
		return !p.StockAmount.Decimal.IsPositive()
	}
	return p.StockQuantity.Finite && p.StockQuantity.N <= 0
}

// ShowCompareAt reports whether the old price should be displayed.
func (p Product) ShowCompareAt() bool {
	return p.CompareAtPrice.Valid && p.CompareAtPrice.Decimal.GreaterThan(p.Price)
}

// PercentOff returns the percentage discount value when one is present.
func (p Product) PercentOff() (decimal.Decimal, bool) {
	if p.Discount == nil || p.Discount.Type != DiscountTypePercentage || !p.Discount.Value.Valid {
		return decimal.Decimal{}, false
	}
	return p.Discount.Value.Decimal, true
}

// CardImage is the image shown on listing cards.
func (p Product) CardImage(fallback string) string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return fallback
}

// PrimaryImage is the main image on the detail page.
func (p Product) PrimaryImage(fallback string) string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	return fallback
}

// Gallery returns the detail page thumbnails.
func (p Product) Gallery(fallback string) []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	return []string{p.CardImage(fallback)}
}

// Stars returns one entry per star slot, true for a filled star.
// Returns nil when the product has no rating.
func (p Product) Stars() []bool {
	if p.Rating == nil {
		return nil
	}
	full := int(math.Round(math.Max(0, math.Min(5, *p.Rating))))
	stars := make([]bool, 5)
	for i := range stars {
		stars[i] = i < full
	}
	return stars
}
