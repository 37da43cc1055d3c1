// Package engine provides the core database engine implementation for the
// Ignite storage system.
//
// The engine is the central coordinator and entry point for all store
// operations. It orchestrates three subsystems:
//   - index: the in-memory key directory used for every lookup
//   - datafile/hintfile/fid: the on-disk data and hint files, and the
//     recovery procedure that rebuilds the index from them at open
//   - compaction: the extension point post-rotation maintenance hooks
//     into, presently a no-op
//
// The engine implements a thread-safe interface with proper lifecycle
// management, ensuring resources are properly initialized and cleaned up.
// It uses atomic operations for state management to provide consistent
// behavior across concurrent operations.
package engine

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/embeddedkv/ignite/internal/codec"
	"github.com/embeddedkv/ignite/internal/compaction"
	"github.com/embeddedkv/ignite/internal/datafile"
	"github.com/embeddedkv/ignite/internal/fid"
	"github.com/embeddedkv/ignite/internal/hintfile"
	"github.com/embeddedkv/ignite/internal/index"
	"github.com/embeddedkv/ignite/pkg/errors"
	"github.com/embeddedkv/ignite/pkg/filesys"
	"github.com/embeddedkv/ignite/pkg/options"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on
	// a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

	// ErrDatabaseLocked is returned by New when another process already
	// holds the directory's exclusive lock.
	ErrDatabaseLocked = stdErrors.New("operation failed: data directory is locked by another process")
)

const lockFileName = "lock"

// Engine represents the main database engine that coordinates all
// subsystems. It acts as the primary interface for database operations
// and manages the lifecycle of all internal components. The engine is
// designed to be thread-safe and supports concurrent operations while
// maintaining data consistency.
type Engine struct {
	dir     string
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	dirLock *flock.Flock

	// activeLock protects the identity of the active file: which
	// *datafile.DataFile new writes land in. Always acquired before
	// index's own lock when both are needed.
	activeLock sync.RWMutex
	active     *datafile.DataFile

	immutableLock sync.RWMutex
	immutable     map[uint64]*datafile.DataFile

	index      *index.Index
	compaction *compaction.Compaction
}

// Config holds all the parameters needed to initialize a new Engine
// instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens the store at config.Options.DataDir, running recovery if
// needed, and returns an Engine ready for use. This implements §4.5.1's
// opening procedure: enumerate, detect orphan hints, backfill missing
// hints, import every hint file in ascending FID order, then create a
// fresh active file above the highest FID seen.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewConfigurationValidationError("config", "Options and Logger are required")
	}
	if config.Options.DataDir == "" {
		return nil, errors.NewConfigurationValidationError("dataDir", "must not be empty")
	}

	dir := config.Options.DataDir
	log := config.Logger

	log.Infow("opening engine", "dataDir", dir)

	if err := filesys.CreateDir(dir, config.Options.DirMode, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dir)
	}

	dirLock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := dirLock.TryLock()
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to acquire directory lock").
			WithPath(dir)
	}
	if !locked {
		return nil, ErrDatabaseLocked
	}

	idx, err := index.New(ctx, &index.Config{DataDir: dir, Logger: log})
	if err != nil {
		dirLock.Unlock()
		return nil, err
	}

	dataIDs, hintIDs, err := fid.Enumerate(dir)
	if err != nil {
		dirLock.Unlock()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to enumerate data directory").
			WithPath(dir)
	}

	if orphans := fid.OrphanHints(dataIDs, hintIDs); len(orphans) > 0 {
		dirLock.Unlock()
		return nil, fmt.Errorf("%w: fids %v", errors.ErrOrphanHint, orphans)
	}

	for _, id := range fid.MissingHints(dataIDs, hintIDs) {
		df, err := datafile.Open(dir, id, false, config.Options.FileMode)
		if err != nil {
			dirLock.Unlock()
			return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open data file for hint generation").
				WithFileName(fmt.Sprintf("%d%s", id, fid.DataExt))
		}
		genErr := hintfile.Generate(dir, df, config.Options.FileMode)
		closeErr := df.Close()
		if genErr != nil {
			dirLock.Unlock()
			return nil, genErr
		}
		if closeErr != nil {
			dirLock.Unlock()
			return nil, closeErr
		}
		log.Infow("generated missing hint file at open", "fid", id)
	}

	for _, id := range dataIDs {
		if err := hintfile.Import(fid.HintPath(dir, id), id, idx); err != nil {
			dirLock.Unlock()
			return nil, err
		}
	}

	maxFID := fid.Max(dataIDs)
	active, err := datafile.Create(dir, maxFID+1, config.Options.FileMode)
	if err != nil {
		dirLock.Unlock()
		return nil, err
	}

	immutable := make(map[uint64]*datafile.DataFile, len(dataIDs))
	for _, id := range dataIDs {
		df, err := datafile.Open(dir, id, false, config.Options.FileMode)
		if err != nil {
			active.Close()
			for _, opened := range immutable {
				opened.Close()
			}
			dirLock.Unlock()
			return nil, err
		}
		immutable[id] = df
	}

	log.Infow("engine opened", "dataDir", dir, "activeFid", maxFID+1, "immutableFiles", len(immutable), "keys", idx.Len())

	return &Engine{
		dir:        dir,
		options:    config.Options,
		log:        log,
		dirLock:    dirLock,
		active:     active,
		immutable:  immutable,
		index:      idx,
		compaction: compaction.New(&compaction.Config{Logger: log}),
	}, nil
}

// Put encodes a PUT record for key, appends it to the active file (and
// syncs it when SyncOnWrite is set, the default), then updates the key
// directory. Any prior entry for key is overwritten.
func (e *Engine) Put(key uint32, value []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if uint32(len(value)) > e.options.MaxValueSize {
		return errors.ErrValueTooLarge
	}

	encoded := codec.EncodeData(codec.DataRecord{
		Key:       key,
		Op:        codec.OpPut,
		ValueSize: uint32(len(value)),
		Value:     value,
	})

	offset, fileID, err := e.appendToActive(encoded)
	if err != nil {
		return err
	}

	e.index.Insert(key, fileID, offset, uint32(len(value)))
	return nil
}

// Delete encodes a DELETE record for key, appends it to the active file
// (and syncs it when SyncOnWrite is set, the default), then removes key
// from the key directory. The tombstone
// is always written, even if key is already absent, so that recovery from
// an older snapshot observes it. Removing an absent key from the
// directory is a no-op, not an error.
func (e *Engine) Delete(key uint32) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	encoded := codec.EncodeData(codec.DataRecord{Key: key, Op: codec.OpDelete, ValueSize: 0})

	if _, _, err := e.appendToActive(encoded); err != nil {
		return err
	}

	e.index.Remove(key)
	return nil
}

// appendToActive appends encoded to the active file under the read side
// of activeLock (the active file's own internal mutex serializes
// concurrent appends), then syncs it if the engine is configured to sync
// on every write.
func (e *Engine) appendToActive(encoded []byte) (offset int64, fileID uint64, err error) {
	e.activeLock.RLock()
	defer e.activeLock.RUnlock()

	df := e.active
	offset, err = df.Append(encoded)
	if err != nil {
		return 0, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record").
			WithFileName(fmt.Sprintf("%d%s", df.FID(), fid.DataExt))
	}

	if e.options.SyncOnWrite {
		if err := df.Sync(); err != nil {
			return 0, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to sync active file").
				WithFileName(fmt.Sprintf("%d%s", df.FID(), fid.DataExt))
		}
	}

	return offset, df.FID(), nil
}

// Get looks up key in the key directory and, if present, reads and
// decodes its value from the owning file.
func (e *Engine) Get(key uint32) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	entry, ok := e.index.Get(key)
	if !ok {
		return nil, errors.NewNotFoundError(key)
	}

	df, err := e.lookupFile(entry.FileID)
	if err != nil {
		return nil, err
	}

	rec, err := df.ReadAt(entry.Offset)
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

// lookupFile resolves a FID to its owning DataFile, checking the active
// file first (the common case for recently written keys) and falling
// back to the immutable set. If a rotation moves the active file into
// the immutable set between a caller's index lookup and this call, the
// lookup still succeeds because FIDs never collide and the handle is the
// same file either way.
func (e *Engine) lookupFile(fileID uint64) (*datafile.DataFile, error) {
	e.activeLock.RLock()
	if e.active.FID() == fileID {
		df := e.active
		e.activeLock.RUnlock()
		return df, nil
	}
	e.activeLock.RUnlock()

	e.immutableLock.RLock()
	df, ok := e.immutable[fileID]
	e.immutableLock.RUnlock()
	if !ok {
		return nil, errors.NewStorageError(nil, errors.ErrorCodeIO, "key directory references unknown file").
			WithFileName(fmt.Sprintf("%d%s", fileID, fid.DataExt))
	}
	return df, nil
}

// ListKeys returns a materialized snapshot of every live key. The order
// is unspecified.
func (e *Engine) ListKeys() ([]uint32, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	return e.index.Keys(), nil
}

// Sync flushes the active file to stable storage.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	e.activeLock.RLock()
	defer e.activeLock.RUnlock()
	return e.active.Sync()
}

// Rotate syncs and retires the current active file into the immutable
// set, then creates a new active file with the next FID. Hint-file
// generation for the retired file is attempted outside the locks;
// failure is logged but does not fail rotation, since a later open will
// regenerate the hint file.
func (e *Engine) Rotate() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.activeLock.Lock()

	if err := e.active.Sync(); err != nil {
		e.activeLock.Unlock()
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to sync active file before rotation")
	}

	retired := e.active
	newActive, err := datafile.Create(e.dir, retired.FID()+1, e.options.FileMode)
	if err != nil {
		e.activeLock.Unlock()
		return err
	}

	// Insert the retired file into the immutable set before swapping it out
	// of e.active, holding both locks across the move. This keeps the file
	// reachable via lookupFile at every instant: a concurrent Get never
	// observes a FID that is neither the active file nor in the immutable
	// set.
	e.immutableLock.Lock()
	e.immutable[retired.FID()] = retired
	e.active = newActive
	e.immutableLock.Unlock()
	e.activeLock.Unlock()

	e.compaction.Hook(retired.FID())

	if err := hintfile.Generate(e.dir, retired, e.options.FileMode); err != nil {
		e.log.Warnw("hint file generation failed after rotation, will regenerate at next open",
			"fid", retired.FID(), "error", err)
	}

	return nil
}

// Close gracefully shuts down the engine: syncs and hints the active
// file, closes every file handle, releases the directory lock, and
// prevents further use. The next open against the same directory will
// see the former active file as an ordinary immutable data file.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.log.Infow("closing engine", "dataDir", e.dir)

	var err error

	e.activeLock.Lock()
	if syncErr := e.active.Sync(); syncErr != nil {
		err = multierr.Append(err, syncErr)
	}
	if hintErr := hintfile.Generate(e.dir, e.active, e.options.FileMode); hintErr != nil {
		err = multierr.Append(err, hintErr)
	}
	if closeErr := e.active.Close(); closeErr != nil {
		err = multierr.Append(err, closeErr)
	}
	e.activeLock.Unlock()

	e.immutableLock.Lock()
	for _, df := range e.immutable {
		if closeErr := df.Close(); closeErr != nil {
			err = multierr.Append(err, closeErr)
		}
	}
	e.immutableLock.Unlock()

	if idxErr := e.index.Close(); idxErr != nil {
		err = multierr.Append(err, idxErr)
	}

	lockPath := e.dirLock.Path()
	if unlockErr := e.dirLock.Unlock(); unlockErr != nil {
		err = multierr.Append(err, unlockErr)
	}
	os.Remove(lockPath)

	e.log.Infow("engine closed", "dataDir", e.dir)
	return err
}

// Stats reports point-in-time introspection data about the engine: how
// many keys are live, which file is currently active, and how many
// immutable files exist. It is purely observational — it establishes no
// new on-disk format or invariant.
type Stats struct {
	KeyCount           int
	ActiveFID          uint64
	ImmutableFileCount int
}

// Stats returns a snapshot of the engine's current state.
func (e *Engine) Stats() (Stats, error) {
	if e.closed.Load() {
		return Stats{}, ErrEngineClosed
	}

	e.activeLock.RLock()
	activeFID := e.active.FID()
	e.activeLock.RUnlock()

	e.immutableLock.RLock()
	immutableCount := len(e.immutable)
	e.immutableLock.RUnlock()

	return Stats{
		KeyCount:           e.index.Len(),
		ActiveFID:          activeFID,
		ImmutableFileCount: immutableCount,
	}, nil
}
