package storefront

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/nahl/internal/cart"
	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/service"
)

const testSession = "test-session"

// mockCatalogService implements service.CatalogService for testing
type mockCatalogService struct {
	listProductsFunc   func(ctx context.Context, listing catalog.Listing, page int) (*service.ListingPage, error)
	getProductFunc     func(ctx context.Context, id string) (*service.ProductDetail, error)
	getCartSummaryFunc func(ctx context.Context, c domain.Cart, session string) (*service.CartSummary, error)
}

func (m *mockCatalogService) ListProducts(ctx context.Context, listing catalog.Listing, page int) (*service.ListingPage, error) {
	if m.listProductsFunc != nil {
		return m.listProductsFunc(ctx, listing, page)
	}
	return &service.ListingPage{Listing: listing, Currency: domain.DefaultCurrency}, nil
}

func (m *mockCatalogService) GetProduct(ctx context.Context, id string) (*service.ProductDetail, error) {
	if m.getProductFunc != nil {
		return m.getProductFunc(ctx, id)
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalogService) GetCartSummary(ctx context.Context, c domain.Cart, session string) (*service.CartSummary, error) {
	if m.getCartSummaryFunc != nil {
		return m.getCartSummaryFunc(ctx, c, session)
	}
	return &service.CartSummary{Currency: domain.DefaultCurrency}, nil
}

// recordingRenderer captures what a handler asked to render.
type recordingRenderer struct {
	status int
	name   string
	data   any
}

func (r *recordingRenderer) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	r.status, r.name, r.data = status, name, data
	w.WriteHeader(status)
}

func newDeps(svc service.CatalogService, store domain.Cart) (Deps, *recordingRenderer) {
	rr := &recordingRenderer{}
	return Deps{
		Catalog:  svc,
		Cart:     store,
		Renderer: rr,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, rr
}

func newStore() *cart.MemoryStore {
	return cart.NewMemoryStore(cart.NewHub())
}

func withSession(req *http.Request) *http.Request {
	return req.WithContext(domain.NewContextWithSession(req.Context(), testSession))
}

func getRequest(target string) *http.Request {
	return withSession(httptest.NewRequest(http.MethodGet, target, nil))
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withSession(req)
}

func testProduct(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Title:       "Sidr honey " + id,
		CategoryID:  "c-honey",
		Status:      domain.ProductStatusActive,
		StockStatus: domain.StockStatusInStock,
		Price:       decimal.NewFromInt(250),
		MaxOrderQty: domain.Unlimited(),
	}
}

func productService(products ...domain.Product) *mockCatalogService {
	return &mockCatalogService{
		getProductFunc: func(ctx context.Context, id string) (*service.ProductDetail, error) {
			if id == "" {
				return nil, domain.ErrMissingProductID
			}
			for _, p := range products {
				if p.ID == id {
					return &service.ProductDetail{Product: p, Currency: domain.DefaultCurrency}, nil
				}
			}
			return nil, domain.ErrProductNotFound
		},
	}
}
