// Package storage implements the persistence contract the domain stores build
// on: whole-document load/save of JSON blobs against named keys. The default
// engine is a local SQLite file, keeping all data on the device. A single save
// is atomic; there is no cross-process coordination (last write wins).
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no document exists under the key.
var ErrNotFound = errors.New("document not found")

// KV is the load/save contract consumed by the domain stores.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
