// Package compaction is the engine's extension point for reclaiming space
// in retired data files. No compactor is implemented: the store relies on
// hint files to keep recovery fast, and retired files are kept in full.
// Hook exists so the engine has a single, named place to call into if a
// compactor is added later, instead of a call site appearing ad hoc
// inside rotate.
package compaction

import "go.uber.org/zap"

// Compaction is the engine's handle to post-rotation maintenance. Hook is
// presently a no-op.
type Compaction struct {
	log *zap.SugaredLogger
}

// Config encapsulates the configuration parameters required to initialize
// a Compaction.
type Config struct {
	Logger *zap.SugaredLogger
}

// New creates a Compaction.
func New(config *Config) *Compaction {
	return &Compaction{log: config.Logger}
}

// Hook is called by the engine after a data file is retired from active
// to immutable. retiredFID names the file that just became read-only.
func (c *Compaction) Hook(retiredFID uint64) {
	c.log.Debugw("retired data file available for compaction", "fid", retiredFID)
}
