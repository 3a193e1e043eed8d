package storage

import (
	"github.com/dukerupert/nahl/internal/domain"
)

// Configuration errors returned by NewR2Storage.
var (
	ErrR2AccountIDRequired   = &domain.Error{Code: domain.EINVALID, Op: "storage.r2", Message: "R2 account ID is required"}
	ErrR2CredentialsRequired = &domain.Error{Code: domain.EINVALID, Op: "storage.r2", Message: "R2 credentials are required"}
	ErrR2BucketRequired      = &domain.Error{Code: domain.EINVALID, Op: "storage.r2", Message: "R2 bucket name is required"}
)

// ErrFileNotFound reports a key with no stored file.
func ErrFileNotFound(key string) error {
	return domain.NotFound("storage.get", "file", key)
}

// ErrInvalidKey reports a key that cannot name a file.
func ErrInvalidKey(key string) error {
	return domain.Errorf(domain.EINVALID, "storage.resolve", "invalid key: %q", key)
}

// ErrUnknownProvider reports an unsupported STORAGE_PROVIDER value.
func ErrUnknownProvider(provider string) error {
	return domain.Errorf(domain.EINVALID, "storage.new", "unknown storage provider: %s", provider)
}

// IsNotFound reports whether err means the key has no stored file.
func IsNotFound(err error) bool {
	return domain.IsCode(err, domain.ENOTFOUND)
}
