// Package storage reads storefront assets such as the catalog document from
// the local filesystem or Cloudflare R2.
package storage

import (
	"context"
	"io"

	"github.com/dukerupert/nahl/internal"
)

// Storage defines read access to stored files.
type Storage interface {
	// Get retrieves a file by its key.
	// Returns an io.ReadCloser that must be closed by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if a file exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public URL for accessing a stored file.
	// For local storage this is a path under the static prefix.
	URL(key string) string
}

// NewStorage creates a Storage implementation based on configuration.
// Returns LocalStorage for "local" provider, R2Storage for "r2" provider.
func NewStorage(cfg internal.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "r2":
		return NewR2Storage(R2Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			BucketName:  cfg.R2BucketName,
			PublicURL:   cfg.R2PublicURL,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
