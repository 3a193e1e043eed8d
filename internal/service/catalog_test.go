package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/nahl/internal/cart"
	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/domain"
)

// mockSource implements catalog.Source for testing.
type mockSource struct {
	loadFunc func(ctx context.Context) (*domain.Catalog, error)
	calls    int
}

func (m *mockSource) Load(ctx context.Context) (*domain.Catalog, error) {
	m.calls++
	return m.loadFunc(ctx)
}

func staticSource(products ...domain.Product) *mockSource {
	return &mockSource{loadFunc: func(ctx context.Context) (*domain.Catalog, error) {
		return &domain.Catalog{Currency: "EGP", Products: products}, nil
	}}
}

func failingSource() *mockSource {
	return &mockSource{loadFunc: func(ctx context.Context) (*domain.Catalog, error) {
		return nil, domain.WrapError(errors.New("connection refused"), domain.EUNAVAILABLE, "catalog.load", ErrDataUnavailable.Message)
	}}
}

func active(id, category string, sortOrder float64, price int64) domain.Product {
	return domain.Product{
		ID:          id,
		CategoryID:  category,
		Status:      domain.ProductStatusActive,
		StockStatus: domain.StockStatusInStock,
		SortOrder:   sortOrder,
		Price:       decimal.NewFromInt(price),
	}
}

func TestCatalogService_ListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("category page", func(t *testing.T) {
		svc := NewCatalogService(staticSource(
			active("a", "c-honey", 2, 100),
			active("b", "c-honey", 1, 50),
			active("c", "c-herbs", 0, 10),
		))

		page, err := svc.ListProducts(ctx, catalog.Honey, 1)
		require.NoError(t, err)

		require.Len(t, page.Page.Items, 2)
		assert.Equal(t, "b", page.Page.Items[0].ID)
		assert.Equal(t, "a", page.Page.Items[1].ID)
		assert.Equal(t, "EGP", page.Currency)
		assert.Nil(t, page.Pager)
	})

	t.Run("paged category has pager", func(t *testing.T) {
		var products []domain.Product
		for i := range 7 {
			products = append(products, active(string(rune('a'+i)), "c-herbs", float64(i), 10))
		}
		svc := NewCatalogService(staticSource(products...))

		page, err := svc.ListProducts(ctx, catalog.Herbs, 2)
		require.NoError(t, err)

		assert.Len(t, page.Page.Items, 1)
		require.NotNil(t, page.Pager)
		assert.Equal(t, 1, page.Pager.Prev)
		assert.Equal(t, 2, page.Pager.Next)
	})

	t.Run("featured has no pager", func(t *testing.T) {
		p := active("f", "c-honey", 1, 10)
		p.Featured = true
		svc := NewCatalogService(staticSource(p))

		page, err := svc.ListProducts(ctx, catalog.Featured, 1)
		require.NoError(t, err)
		assert.Len(t, page.Page.Items, 1)
		assert.Nil(t, page.Pager)
	})

	t.Run("source failure", func(t *testing.T) {
		svc := NewCatalogService(failingSource())

		_, err := svc.ListProducts(ctx, catalog.Honey, 1)
		assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
	})
}

func TestCatalogService_GetProduct(t *testing.T) {
	ctx := context.Background()

	inactive := active("off", "c-honey", 1, 10)
	inactive.Status = domain.ProductStatusInactive

	tests := []struct {
		name    string
		source  *mockSource
		id      string
		wantErr error
		wantID  string
	}{
		{"found", staticSource(active("a", "c-honey", 1, 10)), "a", nil, "a"},
		{"missing id", staticSource(), "", ErrMissingProductID, ""},
		{"unknown id", staticSource(active("a", "c-honey", 1, 10)), "zzz", ErrProductNotFound, ""},
		{"inactive", staticSource(inactive), "off", ErrProductInactive, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCatalogService(tt.source)

			detail, err := svc.GetProduct(ctx, tt.id)

			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, detail.Product.ID)
		})
	}

	t.Run("missing id does not load catalog", func(t *testing.T) {
		src := staticSource()
		_, _ = NewCatalogService(src).GetProduct(ctx, "")
		assert.Equal(t, 0, src.calls)
	})

	t.Run("source failure", func(t *testing.T) {
		_, err := NewCatalogService(failingSource()).GetProduct(ctx, "a")
		assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
	})
}

func TestCatalogService_GetCartSummary(t *testing.T) {
	ctx := context.Background()
	store := cart.NewMemoryStore(cart.NewHub())
	store.Add(ctx, "s1", "a", 2)
	store.Add(ctx, "s1", "b", 1)
	store.Add(ctx, "s1", "gone", 5)

	svc := NewCatalogService(staticSource(
		active("a", "c-honey", 1, 100),
		active("b", "c-herbs", 1, 25),
	))

	summary, err := svc.GetCartSummary(ctx, store, "s1")
	require.NoError(t, err)

	require.Len(t, summary.Items, 2)
	assert.Equal(t, "a", summary.Items[0].Product.ID)
	assert.Equal(t, "200", summary.Items[0].LineSubtotal.String())
	assert.Equal(t, "225", summary.Subtotal.String())
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, "EGP", summary.Currency)
}
