package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/storage"
)

const opLoad = "catalog.load"

// Source retrieves the catalog. Implementations fetch fresh data on every call.
type Source interface {
	Load(ctx context.Context) (*domain.Catalog, error)
}

// unavailable wraps any load failure as the single data-unavailable error.
func unavailable(err error) error {
	return domain.WrapError(err, domain.EUNAVAILABLE, opLoad, domain.ErrDataUnavailable.Message)
}

// StorageSource reads the catalog document from a storage backend.
type StorageSource struct {
	store   storage.Storage
	key     string
	decoder *Decoder
}

// NewStorageSource creates a source reading key from store.
func NewStorageSource(store storage.Storage, key string, decoder *Decoder) *StorageSource {
	return &StorageSource{store: store, key: key, decoder: decoder}
}

// Load implements Source.
func (s *StorageSource) Load(ctx context.Context) (*domain.Catalog, error) {
	rc, err := s.store.Get(ctx, s.key)
	if storage.IsNotFound(err) {
		return nil, unavailable(fmt.Errorf("catalog document %q missing: %w", s.key, err))
	}
	if err != nil {
		return nil, unavailable(err)
	}
	defer rc.Close()

	cat, err := s.decoder.Decode(rc)
	if err != nil {
		return nil, unavailable(err)
	}
	return cat, nil
}

// HTTPSource fetches the catalog document over HTTP.
type HTTPSource struct {
	client  *http.Client
	url     string
	decoder *Decoder
}

// NewHTTPSource creates a source fetching url. A nil client uses a default
// client with a 10 second timeout.
func NewHTTPSource(client *http.Client, url string, decoder *Decoder) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{client: client, url: url, decoder: decoder}
}

// Load implements Source. Any non-2xx response is a failure.
func (s *HTTPSource) Load(ctx context.Context) (*domain.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, unavailable(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, unavailable(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	cat, err := s.decoder.Decode(resp.Body)
	if err != nil {
		return nil, unavailable(err)
	}
	return cat, nil
}
