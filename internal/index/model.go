package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Entry is the authoritative in-memory pointer to a key's record on disk:
// which file holds it, where within that file, and how large its value
// is. This is the only per-key state the store keeps in memory; values
// themselves always live on disk.
type Entry struct {
	FileID    uint64
	Offset    int64
	ValueSize uint32
}

// Index is the key directory: an in-memory hash table mapping keys to
// their current Entry. get and list_keys take the read side of mu;
// insert, remove, and the bulk rebuild performed at open take the write
// side.
type Index struct {
	dataDir string             // Directory the index's entries point into.
	log     *zap.SugaredLogger // Structured logging.

	mu      sync.RWMutex
	entries map[uint32]Entry

	closed atomic.Bool
}

// Config encapsulates the configuration parameters required to initialize
// an Index.
type Config struct {
	DataDir string             // Directory the index's entries point into.
	Logger  *zap.SugaredLogger // Structured logging for Index operations.
}
