package options

const (
	// Specifies the default base directory where Ignite will store its
	// data and hint files. If no other directory is specified during
	// initialization, this path will be used.
	DefaultDataDir = "/var/lib/ignitedb"

	// MaxAllowedValueSize is the hard ceiling on a Put value's size, in
	// bytes. No option can raise MaxValueSize above this.
	MaxAllowedValueSize uint32 = 4096

	// DefaultMaxValueSize is the default Put value size limit.
	DefaultMaxValueSize uint32 = MaxAllowedValueSize

	// DefaultSyncOnWrite is whether writes fsync before acknowledging.
	DefaultSyncOnWrite = true

	// DefaultFileMode is the permission mode new data and hint files are
	// created with.
	DefaultFileMode = 0644

	// DefaultDirMode is the permission mode the data directory is created
	// with.
	DefaultDirMode = 0755
)

// Holds the default configuration settings for an Ignite engine.
var defaultOptions = Options{
	DataDir:      DefaultDataDir,
	MaxValueSize: DefaultMaxValueSize,
	SyncOnWrite:  DefaultSyncOnWrite,
	FileMode:     DefaultFileMode,
	DirMode:      DefaultDirMode,
}

// NewDefaultOptions returns a copy of the engine's default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
