package errors

import stdErrors "errors"

// NotFoundError reports that a key has no live entry in the key directory.
// It is not exceptional — callers are expected to check for it on every
// Get — but it embeds baseError anyway so it composes with GetErrorCode
// and friends like every other error in this package.
type NotFoundError struct {
	*baseError
	key uint32
}

// NewNotFoundError creates a new missing-key error.
func NewNotFoundError(key uint32) *NotFoundError {
	return &NotFoundError{
		baseError: NewBaseError(nil, ErrorCodeKeyNotFound, "key not found"),
		key:       key,
	}
}

// Key returns the key that was looked up.
func (nfe *NotFoundError) Key() uint32 {
	return nfe.key
}

// IsNotFoundError reports whether err is (or wraps) a NotFoundError.
func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return stdErrors.As(err, &nfe)
}
