package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage using the local filesystem.
type LocalStorage struct {
	basePath string // Root directory (e.g., "./web/static")
	baseURL  string // URL prefix the directory is served under (e.g., "/static")
}

// NewLocalStorage creates a new local filesystem storage implementation.
// basePath must be an existing directory.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage path is not a directory: %s", basePath)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// resolve maps key to a path inside basePath, rejecting traversal.
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", ErrInvalidKey(key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}

// Get retrieves a file from the local filesystem.
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound(key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// URL returns the public URL for accessing a file.
func (s *LocalStorage) URL(key string) string {
	return s.baseURL + path.Clean("/"+key)
}

// Exists checks if a file exists in the local filesystem.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}

	return true, nil
}
