// Package storage provides the record-store boundary: a handful of
// logical records under stable keys, each read and written as a whole
// JSON value. There is no partial-field API; updates are
// read-merge-write at the repository layer.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no value exists under a key.
var ErrNotFound = errors.New("storage: record not found")

// Store persists whole-value records under stable keys.
type Store interface {
	// Read returns the stored value, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write replaces the value under key.
	Write(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
