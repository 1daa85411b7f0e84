// Package storage abstracts the blob store that holds uploaded and generated
// product images.
//
// Two drivers are available:
//   - "local" — local filesystem, for development and tests
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Keys follow the ownership hierarchy:
//
//	users/{uid}/{businessId}/{productId}/{file}
//
// so deleting a product (or business) is a prefix delete.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/adforge/adforge/config"
)

// Store is the blob store driver interface.
type Store interface {
	// Put writes the content of r under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)

	// Get returns the full content stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) bool

	// URL returns the public URL for key without touching the store.
	URL(key string) string

	// Delete removes a single object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every object under prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// New builds the configured driver.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Disk {
	case "s3":
		return newS3Store(cfg)
	case "local", "":
		return newLocalStore(cfg.LocalRoot, cfg.LocalURL), nil
	default:
		return nil, fmt.Errorf("storage: unsupported disk %q (supported: local, s3)", cfg.Disk)
	}
}
