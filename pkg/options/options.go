// Package options provides data structures and functions for configuring
// the Ignite key-value store. It defines parameters that control
// durability, record size limits, and the filesystem permissions Ignite
// creates its directory and files with.
package options

import (
	"os"
	"strings"
)

// Options defines the configuration parameters for an Ignite engine.
type Options struct {
	// Specifies the base path where data and hint files are stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Bounds the size, in bytes, of any single Put value. Values larger
	// than this are rejected with ValueTooLarge before any record is
	// encoded.
	//
	//  - Default: 4096
	//  - Maximum: 4096
	MaxValueSize uint32 `json:"maxValueSize"`

	// Controls whether Put and Delete fsync the active file before
	// acknowledging. Disabling it trades the engine's durability
	// guarantee for throughput and should only be set false when the
	// caller batches its own fsyncs.
	//
	// Default: true
	SyncOnWrite bool `json:"syncOnWrite"`

	// Permission mode new data and hint files are created with.
	//
	// Default: 0644
	FileMode os.FileMode `json:"fileMode"`

	// Permission mode the data directory is created with; an existing
	// data directory is also set to this mode at open.
	//
	// Default: 0755
	DirMode os.FileMode `json:"dirMode"`
}

// OptionFunc is a function type that modifies the engine's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.MaxValueSize = opts.MaxValueSize
		o.SyncOnWrite = opts.SyncOnWrite
		o.FileMode = opts.FileMode
		o.DirMode = opts.DirMode
	}
}

// WithDataDir sets the directory the engine stores its files in.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithMaxValueSize sets the maximum Put value size. Values outside
// (0, MaxAllowedValueSize] are ignored, leaving the prior setting intact.
func WithMaxValueSize(size uint32) OptionFunc {
	return func(o *Options) {
		if size > 0 && size <= MaxAllowedValueSize {
			o.MaxValueSize = size
		}
	}
}

// WithSyncOnWrite controls whether writes fsync before acknowledging.
func WithSyncOnWrite(sync bool) OptionFunc {
	return func(o *Options) {
		o.SyncOnWrite = sync
	}
}

// WithFileMode sets the permission mode new data and hint files are
// created with.
func WithFileMode(mode os.FileMode) OptionFunc {
	return func(o *Options) {
		o.FileMode = mode
	}
}

// WithDirMode sets the permission mode the data directory is created
// with.
func WithDirMode(mode os.FileMode) OptionFunc {
	return func(o *Options) {
		o.DirMode = mode
	}
}
