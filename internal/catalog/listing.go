package catalog

import (
	"cmp"
	"slices"

	"github.com/dukerupert/nahl/internal/domain"
)

// Query selects the products of a listing.
type Query struct {
	// Category limits results to one categoryId. Empty means every category.
	Category string

	// FeaturedOnly keeps only products flagged as featured.
	FeaturedOnly bool
}

// Filter returns the active products matching q, in source order.
func Filter(products []domain.Product, q Query) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !p.IsActive() {
			continue
		}
		if q.Category != "" && p.CategoryID != q.Category {
			continue
		}
		if q.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders products by ascending SortOrder in place. Equal keys keep
// their relative order.
func Sort(products []domain.Product) {
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})
}

// Page is one slice of a paginated result.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// HasPager reports whether a page control should be shown.
func (p Page[T]) HasPager() bool {
	return p.TotalPages > 1
}

// Paginate returns page number of items split into pages of size.
// A size <= 0 puts everything on a single page. Page numbers outside
// [1, TotalPages] yield an empty page, never an error.
func Paginate[T any](items []T, number, size int) Page[T] {
	total := len(items)
	if size <= 0 {
		size = max(total, 1)
	}

	page := Page[T]{
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
		Items:      []T{},
	}

	// Compare against the page count before multiplying so huge page
	// numbers cannot overflow.
	if number < 1 || number > page.TotalPages {
		return page
	}
	start := (number - 1) * size
	end := min(start+size, total)
	page.Items = items[start:end]
	return page
}

// Listing describes one of the storefront's product grids.
type Listing struct {
	Name     string
	Query    Query
	PageSize int

	// Limit caps the result after sorting. Zero means no cap.
	Limit int

	// Paged listings render a pager and honour the page parameter.
	Paged bool

	// Path is the URL the listing is served from.
	Path string

	// Fallback is the image used when a product has none.
	Fallback string

	// Empty is shown instead of the grid when nothing matches.
	Empty string
}

var (
	Featured = Listing{
		Name:     "featured",
		Query:    Query{FeaturedOnly: true},
		Limit:    4,
		Path:     "/",
		Fallback: "imgs/honey.jpeg",
		Empty:    "No featured products right now.",
	}
	Herbs = Listing{
		Name:     "herbs",
		Query:    Query{Category: "c-herbs"},
		PageSize: 6,
		Paged:    true,
		Path:     "/herbs",
		Fallback: "imgs/herbs.jpeg",
		Empty:    "No herbs available right now.",
	}
	Honey = Listing{
		Name:     "honey",
		Query:    Query{Category: "c-honey"},
		PageSize: 6,
		Paged:    true,
		Path:     "/honey",
		Fallback: "imgs/honey.jpeg",
		Empty:    "No honey available right now.",
	}
)

// Build filters, sorts and paginates products for the listing.
// Unpaged listings always return their first page.
func (l Listing) Build(products []domain.Product, number int) Page[domain.Product] {
	items := Filter(products, l.Query)
	Sort(items)
	if l.Limit > 0 && len(items) > l.Limit {
		items = items[:l.Limit]
	}
	if !l.Paged {
		return Paginate(items, 1, 0)
	}
	return Paginate(items, number, l.PageSize)
}

// PagerLink is one numbered page link.
type PagerLink struct {
	Number  int
	Current bool
}

// Pager is the page control under a paged listing.
type Pager struct {
	Prev  int
	Next  int
	Links []PagerLink
}

// NewPager returns the control for page of pages, or nil when there is at most one page.
func NewPager(page, pages int) *Pager {
	if pages <= 1 {
		return nil
	}
	p := &Pager{
		Prev:  min(max(2, page)-1, pages),
		Next:  min(pages, max(0, min(page, pages))+1),
		Links: make([]PagerLink, 0, pages),
	}
	for i := 1; i <= pages; i++ {
		p.Links = append(p.Links, PagerLink{Number: i, Current: i == page})
	}
	return p
}
