// Package store persists asset payloads and version metadata as opaque
// objects under hierarchical keys.
//
// Keys follow the registry's layout:
//
//	{project}/{branch}/{kind}/{asset_id}/{version}/...
//
// The interface is storage-agnostic. The bundled implementation addresses
// storage through URLs (file://, mem://), so tests run against in-memory
// storage and deployments point at a filesystem root.
package store

import (
	"context"
	"errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no object exists at a key.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey indicates a key that is empty or escapes the root.
	ErrInvalidKey = errors.New("invalid object key")

	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid store configuration")
)

// Store is the interface for object storage operations.
type Store interface {
	// Put writes value at key, overwriting any existing object.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the object stored at key.
	// Returns ErrNotFound if no object exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys of all objects under prefix, sorted. A prefix
	// with no objects yields an empty slice, not an error.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object at key. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Close releases storage resources.
	Close() error
}
