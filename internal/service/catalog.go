package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/domain"
)

// CatalogService provides the storefront's read operations over the catalog.
// Every call loads the catalog fresh from its source.
type CatalogService interface {
	// ListProducts returns one page of a listing.
	ListProducts(ctx context.Context, listing catalog.Listing, page int) (*ListingPage, error)

	// GetProduct returns an active product by id.
	GetProduct(ctx context.Context, id string) (*ProductDetail, error)

	// GetCartSummary joins the visitor's cart lines with catalog products.
	GetCartSummary(ctx context.Context, cart domain.Cart, session string) (*CartSummary, error)
}

// ListingPage is a rendered-ready page of a listing.
type ListingPage struct {
	Listing  catalog.Listing
	Currency string
	Page     catalog.Page[domain.Product]
	Pager    *catalog.Pager
}

// ProductDetail is an active product with the catalog currency.
type ProductDetail struct {
	Product  domain.Product
	Currency string
}

// CartSummary aggregates cart lines with products and totals.
type CartSummary struct {
	Items     []CartItem
	Subtotal  decimal.Decimal
	ItemCount int
	Currency  string
}

// CartItem is a cart line with its product.
type CartItem struct {
	Product      domain.Product
	Qty          int
	LineSubtotal decimal.Decimal
}

type catalogService struct {
	source catalog.Source
}

// NewCatalogService creates a CatalogService reading from source.
func NewCatalogService(source catalog.Source) CatalogService {
	return &catalogService{source: source}
}

// ListProducts filters, sorts and paginates the listing.
func (s *catalogService) ListProducts(ctx context.Context, listing catalog.Listing, page int) (*ListingPage, error) {
	cat, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	p := listing.Build(cat.Products, page)

	var pager *catalog.Pager
	if listing.Paged {
		pager = catalog.NewPager(p.Number, p.TotalPages)
	}

	return &ListingPage{
		Listing:  listing,
		Currency: cat.Currency,
		Page:     p,
		Pager:    pager,
	}, nil
}

// GetProduct returns the product for the detail page. A missing id is
// rejected before the catalog is loaded.
func (s *catalogService) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	if id == "" {
		return nil, ErrMissingProductID
	}

	cat, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	product, ok := cat.Find(id)
	if !ok {
		return nil, ErrProductNotFound
	}
	if !product.IsActive() {
		return nil, ErrProductInactive
	}

	return &ProductDetail{Product: product, Currency: cat.Currency}, nil
}

// GetCartSummary lists cart lines for products still in the catalog.
func (s *catalogService) GetCartSummary(ctx context.Context, cart domain.Cart, session string) (*CartSummary, error) {
	cat, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	lines, err := cart.Lines(ctx, session)
	if err != nil {
		return nil, domain.Internal(err, "cart.lines", "failed to read cart")
	}

	summary := &CartSummary{Currency: cat.Currency, Subtotal: decimal.Zero}
	for _, line := range lines {
		product, ok := cat.Find(line.ProductID)
		if !ok {
			continue
		}
		sub := product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
		summary.Items = append(summary.Items, CartItem{
			Product:      product,
			Qty:          line.Qty,
			LineSubtotal: sub,
		})
		summary.Subtotal = summary.Subtotal.Add(sub)
		summary.ItemCount += line.Qty
	}

	return summary, nil
}
