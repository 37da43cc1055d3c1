// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (the key directory) with an
// append-only log structure on disk to achieve high throughput. It is
// designed for applications requiring fast read and write operations,
// such as caching, session management, and real-time data processing,
// aiming to provide a simple, efficient, and reliable solution for
// embedded key-value storage in Go applications.
package ignite

import (
	"context"

	"github.com/embeddedkv/ignite/internal/engine"
	"github.com/embeddedkv/ignite/pkg/logger"
	"github.com/embeddedkv/ignite/pkg/options"
)

// Instance represents an instance of the Ignite key/value data store. It
// encapsulates the core engine responsible for data handling and the
// configuration options for this specific database instance.
//
// Instance is the primary entry point for interacting with the Ignite
// store, providing methods for setting, getting, and deleting key-value
// pairs. Keys are fixed-width 32-bit integers; the store imposes no
// structure on values beyond the configured maximum size.
type Instance struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// NewInstance creates and initializes a new Ignite DB instance, running
// recovery against options.DataDir if the directory already holds data.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &resolved})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &resolved}, nil
}

// Put stores a key-value pair in the database. If the key already
// exists, its value is overwritten. Once it returns successfully, the
// write is visible to any subsequent Get and, when SyncOnWrite is set
// (the default), on stable storage.
func (i *Instance) Put(ctx context.Context, key uint32, value []byte) error {
	return i.engine.Put(key, value)
}

// Get retrieves the value associated with the given key.
func (i *Instance) Get(ctx context.Context, key uint32) ([]byte, error) {
	return i.engine.Get(key)
}

// Delete removes a key-value pair from the database. Deleting an absent
// key is not an error.
func (i *Instance) Delete(ctx context.Context, key uint32) error {
	return i.engine.Delete(key)
}

// ListKeys returns a snapshot of every live key, in unspecified order.
func (i *Instance) ListKeys(ctx context.Context) ([]uint32, error) {
	return i.engine.ListKeys()
}

// Sync flushes the active file to stable storage ahead of its next
// automatic sync point.
func (i *Instance) Sync(ctx context.Context) error {
	return i.engine.Sync()
}

// Rotate retires the current active file and begins a new one. Rotation
// is never required for correctness; it bounds how much of the log a
// future open has to replay before consulting hint files.
func (i *Instance) Rotate(ctx context.Context) error {
	return i.engine.Rotate()
}

// Stats reports point-in-time introspection data: live key count, the
// current active file identifier, and the number of immutable files.
func (i *Instance) Stats(ctx context.Context) (engine.Stats, error) {
	return i.engine.Stats()
}

// Close gracefully shuts down the Ignite DB instance, releasing all
// associated resources, flushing any pending writes, and ensuring data
// durability.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
