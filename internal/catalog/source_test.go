package catalog_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/storage"
)

type fakeStorage struct {
	getFunc func(ctx context.Context, key string) (io.ReadCloser, error)
}

func (f *fakeStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return f.getFunc(ctx, key)
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (f *fakeStorage) URL(key string) string {
	return "/static/" + key
}

func TestStorageSource_Load(t *testing.T) {
	t.Run("reads the configured key", func(t *testing.T) {
		var gotKey string
		store := &fakeStorage{getFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			gotKey = key
			return io.NopCloser(strings.NewReader(`{"currency":"EGP","products":[{"id":"a"}]}`)), nil
		}}

		src := catalog.NewStorageSource(store, "data/products.json", catalog.NewDecoder(nil))
		cat, err := src.Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "data/products.json", gotKey)
		assert.Len(t, cat.Products, 1)
	})

	t.Run("storage failure is data unavailable", func(t *testing.T) {
		store := &fakeStorage{getFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return nil, errors.New("file not found")
		}}

		_, err := catalog.NewStorageSource(store, "k", catalog.NewDecoder(nil)).Load(context.Background())

		assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
		assert.Equal(t, "catalog.load", domain.ErrorOp(err))
	})

	t.Run("missing document keeps the unavailable code", func(t *testing.T) {
		store := &fakeStorage{getFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return nil, storage.ErrFileNotFound(key)
		}}

		_, err := catalog.NewStorageSource(store, "data/products.json", catalog.NewDecoder(nil)).Load(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
		assert.True(t, storage.IsNotFound(errors.Unwrap(err)))
	})

	t.Run("parse failure is data unavailable", func(t *testing.T) {
		store := &fakeStorage{getFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(`{"products":`)), nil
		}}

		_, err := catalog.NewStorageSource(store, "k", catalog.NewDecoder(nil)).Load(context.Background())

		assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
	})
}

func TestHTTPSource_Load(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  bool
		wantSize int
	}{
		{"ok", http.StatusOK, `{"products":[{"id":"a"},{"id":"b"}]}`, false, 2},
		{"not found", http.StatusNotFound, `{"products":[]}`, true, 0},
		{"server error", http.StatusInternalServerError, ``, true, 0},
		{"bad json", http.StatusOK, `<html>`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cat, err := catalog.NewHTTPSource(srv.Client(), srv.URL, catalog.NewDecoder(nil)).Load(context.Background())

			if tt.wantErr {
				assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
				assert.Equal(t, domain.ErrDataUnavailable.Message, domain.ErrorMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, cat.Products, tt.wantSize)
		})
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := catalog.NewHTTPSource(nil, url, catalog.NewDecoder(nil)).Load(context.Background())

	assert.True(t, domain.IsCode(err, domain.EUNAVAILABLE))
}
