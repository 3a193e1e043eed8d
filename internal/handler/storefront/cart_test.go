package storefront

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/service"
)

type staticSource struct {
	products []domain.Product
}

func (s staticSource) Load(ctx context.Context) (*domain.Catalog, error) {
	return &domain.Catalog{Currency: domain.DefaultCurrency, Products: s.products}, nil
}

var _ catalog.Source = staticSource{}

func TestCartHandler_View(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	_, err := store.Add(ctx, testSession, "a", 3)
	require.NoError(t, err)

	deps, rr := newDeps(service.NewCatalogService(staticSource{products: []domain.Product{testProduct("a")}}), store)
	rec := httptest.NewRecorder()

	NewCartHandler(deps).View(rec, getRequest("/cart"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cart", rr.name)
	data := rr.data.(CartPageData)
	require.NotNil(t, data.Summary)
	require.Len(t, data.Summary.Items, 1)
	assert.True(t, decimal.NewFromInt(750).Equal(data.Summary.Subtotal))
	assert.Equal(t, 3, data.CartCount)
}

func TestCartHandler_View_Unavailable(t *testing.T) {
	svc := &mockCatalogService{
		getCartSummaryFunc: func(ctx context.Context, c domain.Cart, session string) (*service.CartSummary, error) {
			return nil, unavailableErr()
		},
	}
	deps, rr := newDeps(svc, newStore())
	rec := httptest.NewRecorder()

	NewCartHandler(deps).View(rec, getRequest("/cart"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	data := rr.data.(CartPageData)
	require.NotNil(t, data.Error)
}

func TestCartHandler_Add(t *testing.T) {
	capped := testProduct("capped")
	capped.MaxOrderQty = domain.LimitOf(1)

	tests := []struct {
		name         string
		id           string
		referer      string
		startQty     int
		wantStatus   int
		wantLocation string
		wantQty      int
	}{
		{"adds one and returns to listing", "capped", "http://example.com/honey?page=2", 0, http.StatusSeeOther, "/honey?page=2", 1},
		{"clamped at max", "capped", "/herbs", 1, http.StatusSeeOther, "/herbs", 1},
		{"foreign referer goes home", "capped", "https://evil.test/phish", 0, http.StatusSeeOther, "/", 1},
		{"no referer goes home", "capped", "", 0, http.StatusSeeOther, "/", 1},
		{"unknown product", "nope", "", 0, http.StatusNotFound, "", 0},
		{"missing id", "", "", 0, http.StatusNotFound, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()
			if tt.startQty > 0 {
				_, err := store.Add(ctx, testSession, tt.id, tt.startQty)
				require.NoError(t, err)
			}
			deps, _ := newDeps(productService(capped), store)

			req := formRequest("/cart/add", url.Values{"id": {tt.id}})
			req.Host = "example.com"
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()

			NewCartHandler(deps).Add(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))

			qty, err := store.Qty(ctx, testSession, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, qty)
		})
	}
}

func TestCartHandler_Add_JSON(t *testing.T) {
	deps, _ := newDeps(productService(testProduct("a")), newStore())

	req := formRequest("/cart/add", url.Values{"id": {"a"}})
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	NewCartHandler(deps).Add(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp AddResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "a", resp.ID)
	assert.Equal(t, 1, resp.Qty)
	assert.Equal(t, "submitted", string(resp.Outcome))
}

// streamEvent is one parsed server-sent event.
type streamEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) streamEvent {
	t.Helper()
	var ev streamEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestCartHandler_Events(t *testing.T) {
	store := newStore()
	deps, _ := newDeps(productService(testProduct("a")), store)
	h := NewCartHandler(deps)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Events(w, withSession(r))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/cart/events?product=a", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "retry: 3000\n", line)

	// The subscription is registered before the first flush.
	_, err = store.Add(context.Background(), testSession, "a", 2)
	require.NoError(t, err)

	changed := readEvent(t, reader)
	assert.Equal(t, "quantityChanged", changed.name)
	assert.JSONEq(t, `{"id":"a","qty":2}`, changed.data)

	view := readEvent(t, reader)
	assert.Equal(t, "view", view.name)
	var v struct {
		ID    string `json:"id"`
		State string `json:"state"`
		Qty   int    `json:"qty"`
	}
	require.NoError(t, json.Unmarshal([]byte(view.data), &v))
	assert.Equal(t, "a", v.ID)
	assert.Equal(t, "in_cart", v.State)
	assert.Equal(t, 2, v.Qty)
}

func TestCartHandler_Events_UnknownProduct(t *testing.T) {
	deps, _ := newDeps(productService(), newStore())
	rec := httptest.NewRecorder()

	NewCartHandler(deps).Events(rec, getRequest("/cart/events?product=nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocalReferer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
	req.Host = "shop.test"

	req.Header.Set("Referer", "http://shop.test/honey")
	assert.Equal(t, "/honey", localReferer(req, "/"))

	req.Header.Set("Referer", "http://other.test/honey")
	assert.Equal(t, "/", localReferer(req, "/"))

	req.Header.Set("Referer", "::bad::")
	assert.Equal(t, "/", localReferer(req, "/"))
}
