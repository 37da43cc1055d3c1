package errors

import stdErrors "errors"

// Sentinel errors for conditions that carry no structured context of their
// own, in the same vein as the engine's ErrEngineClosed and the index's
// ErrIndexClosed sentinels.
var (
	// ErrOrphanHint is returned by Open when a ".hints" file exists with no
	// matching ".data" file. The engine refuses to start rather than risk
	// silently losing the data that hint once summarized.
	ErrOrphanHint = stdErrors.New("ignite: hint file has no matching data file")

	// ErrValueTooLarge is returned by Put when the value exceeds the
	// configured maximum record payload size.
	ErrValueTooLarge = stdErrors.New("ignite: value exceeds maximum record size")

	// ErrAlreadyExists is returned internally when a data file creation
	// targets a FID some other writer already claimed.
	ErrAlreadyExists = stdErrors.New("ignite: data file already exists")
)
