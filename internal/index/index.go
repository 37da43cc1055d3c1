// Package index implements the key directory: the in-memory hash table
// mapping every live key to the location of its most recent record on
// disk. It is the sole source of truth read operations consult; it is
// never itself persisted and is fully rebuilt from hint and data files at
// open.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/embeddedkv/ignite/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new Index instance configured according to
// the provided parameters. The returned Index is immediately ready for
// concurrent use and includes optimizations like pre-allocated map
// capacity.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		entries: make(map[uint32]Entry, 2046),
	}, nil
}

// Get returns the entry for key, if any, taking the read side of mu.
func (idx *Index) Get(key uint32) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[key]
	return e, ok
}

// Insert records key's current location, overwriting any prior entry for
// key. The signature matches what hint-file import and rebuild both need,
// so callers never have to construct an Entry themselves.
func (idx *Index) Insert(key uint32, fileID uint64, offset int64, valueSize uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[key] = Entry{FileID: fileID, Offset: offset, ValueSize: valueSize}
}

// Remove deletes key's entry. Removing an absent key is a no-op.
func (idx *Index) Remove(key uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, key)
}

// Keys returns a materialized snapshot of every live key, taken under the
// read side of mu. The order is unspecified.
func (idx *Index) Keys() []uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	keys := make([]uint32, 0, len(idx.entries))
	for k := range idx.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Close gracefully shuts down the Index, cleaning up resources and
// ensuring that the index cannot be used after closure.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index system")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.entries)
	idx.entries = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
