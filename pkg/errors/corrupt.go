package errors

// CorruptError reports a single bad on-disk record: a CRC mismatch, a
// truncated tail, or an unrecognized operation tag. It embeds baseError to
// inherit chaining and structured details, then adds the file location
// needed to point an operator (or a test) at the exact offending bytes.
type CorruptError struct {
	*baseError
	fileID uint64 // Which data or hint file the bad record was read from.
	offset int64  // Byte offset within that file where the record starts.
}

// NewCorruptError creates a new record-integrity error.
func NewCorruptError(err error, code ErrorCode, msg string) *CorruptError {
	return &CorruptError{baseError: NewBaseError(err, code, msg)}
}

// WithFileID records which file the bad record came from.
func (ce *CorruptError) WithFileID(fileID uint64) *CorruptError {
	ce.fileID = fileID
	return ce
}

// WithOffset records the byte offset of the bad record.
func (ce *CorruptError) WithOffset(offset int64) *CorruptError {
	ce.offset = offset
	return ce
}

// FileID returns the file the bad record came from.
func (ce *CorruptError) FileID() uint64 {
	return ce.fileID
}

// Offset returns the byte offset of the bad record.
func (ce *CorruptError) Offset() int64 {
	return ce.offset
}
