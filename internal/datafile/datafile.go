// Package datafile owns a single on-disk "<fid>.data" file: positional
// reads, tail-appending writes, and a sequential scanner used during
// recovery and hint generation.
package datafile

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/embeddedkv/ignite/internal/codec"
	"github.com/embeddedkv/ignite/internal/fid"
	ignerrors "github.com/embeddedkv/ignite/pkg/errors"
)

// DataFile serves positional reads and tail appends against one on-disk
// data file. Appends are serialized by mu; reads use pwrite/pread-style
// positional I/O and need no lock since they never touch a shared seek
// cursor.
type DataFile struct {
	path string
	fid  uint64
	file *os.File

	mu   sync.Mutex
	size int64 // current file length; also the offset of the next append
}

// DefaultFileMode is the permission new data files are created with when
// a caller has no more specific preference, matching options.Options'
// own default.
const DefaultFileMode = os.FileMode(0644)

// Create creates a new, empty data file for fid in dir with the given
// permission mode. It fails with ErrAlreadyExists if the file is already
// present.
func Create(dir string, id uint64, mode os.FileMode) (*DataFile, error) {
	path := fid.DataPath(dir, id)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, mode)
	if err != nil {
		if os.IsExist(err) {
			return nil, ignerrors.ErrAlreadyExists
		}
		return nil, ignerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	return &DataFile{path: path, fid: id, file: f}, nil
}

// Open opens the existing data file for fid in dir. forAppend requests a
// read-write handle, used for the single active file; otherwise the
// handle is read-only, suitable for an immutable file. mode is passed
// through to OpenFile for parity with Create; since the file already
// exists it has no effect on an existing file's permissions.
func Open(dir string, id uint64, forAppend bool, mode os.FileMode) (*DataFile, error) {
	path := fid.DataPath(dir, id)

	flag := os.O_RDONLY
	if forAppend {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, mode)
	if err != nil {
		return nil, ignerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ignerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	return &DataFile{path: path, fid: id, file: f, size: info.Size()}, nil
}

// FID returns the file identifier this handle was opened for.
func (d *DataFile) FID() uint64 { return d.fid }

// Path returns the handle's on-disk path.
func (d *DataFile) Path() string { return d.path }

// Size returns the current file length.
func (d *DataFile) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

// Append writes encoded to the tail of the file in a single positional
// write and returns the offset it was written at, i.e. the file length
// immediately before the write. mu is held across the whole write, so
// concurrent appenders are serialized and each receives a distinct,
// non-overlapping offset.
func (d *DataFile) Append(encoded []byte) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset := d.size
	n, err := d.file.WriteAt(encoded, offset)
	if err != nil {
		return 0, err
	}
	d.size += int64(n)
	return offset, nil
}

// ReadAt reads and decodes the data record stored at offset. It reads the
// fixed header first to learn the record's declared value size, then
// reads exactly that many bytes plus alignment padding.
func (d *DataFile) ReadAt(offset int64) (codec.DataRecord, error) {
	header := make([]byte, codec.DataHeaderSize)
	if _, err := d.file.ReadAt(header, offset); err != nil {
		return codec.DataRecord{}, err
	}

	valueSize := binary.LittleEndian.Uint32(header[9:13])
	total := codec.EncodedDataLen(int(valueSize))

	buf := make([]byte, total)
	if _, err := d.file.ReadAt(buf, offset); err != nil {
		return codec.DataRecord{}, err
	}

	rec, _, err := codec.DecodeData(buf)
	if err != nil {
		var ce *ignerrors.CorruptError
		if errors.As(err, &ce) {
			ce.WithFileID(d.fid).WithOffset(offset)
		}
		return codec.DataRecord{}, err
	}
	return rec, nil
}

// Sync flushes the file to stable storage.
func (d *DataFile) Sync() error {
	if err := d.file.Sync(); err != nil {
		d.mu.Lock()
		size := d.size
		d.mu.Unlock()
		return ignerrors.ClassifySyncError(err, filepath.Base(d.path), d.path, int(size))
	}
	return nil
}

// Close releases the underlying file handle.
func (d *DataFile) Close() error {
	return d.file.Close()
}

// Scan opens an independent read handle over the file and returns a
// Scanner positioned at offset 0. Each call to Scan starts a fresh,
// restartable traversal; it does not interact with Append's handle or
// its size bookkeeping.
func (d *DataFile) Scan() (*Scanner, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Scanner{file: f, fid: d.fid, size: info.Size()}, nil
}

// Scanner performs a lazy, sequential, finite traversal of a data file.
type Scanner struct {
	file   *os.File
	fid    uint64
	size   int64
	offset int64

	// tailErr is set when the scan stopped early because of a corrupt or
	// truncated tail record, as opposed to reaching a clean end of file.
	// It is exposed only through TailErr; it is never returned as a scan
	// error.
	tailErr error
}

// Next advances the scan and returns the next record's offset and decoded
// value. ok is false when the scan has reached its end, whether cleanly
// or because of a recoverable tail event (see TailErr). err is non-nil
// only for a fatal mid-file corruption or an I/O failure.
func (s *Scanner) Next() (offset int64, rec codec.DataRecord, ok bool, err error) {
	if s.offset >= s.size {
		return 0, codec.DataRecord{}, false, nil
	}

	header := make([]byte, codec.DataHeaderSize)
	if _, rerr := io.ReadFull(s.file, header); rerr != nil {
		if isEOF(rerr) {
			s.tailErr = ignerrors.NewCorruptError(rerr, ignerrors.ErrorCodeTruncated,
				"data file header truncated at tail").WithFileID(s.fid).WithOffset(s.offset)
			return 0, codec.DataRecord{}, false, nil
		}
		return 0, codec.DataRecord{}, false, rerr
	}

	valueSize := binary.LittleEndian.Uint32(header[9:13])
	total := codec.EncodedDataLen(int(valueSize))
	rest := make([]byte, total-codec.DataHeaderSize)
	if _, rerr := io.ReadFull(s.file, rest); rerr != nil {
		if isEOF(rerr) {
			s.tailErr = ignerrors.NewCorruptError(rerr, ignerrors.ErrorCodeTruncated,
				"data record body truncated at tail").WithFileID(s.fid).WithOffset(s.offset)
			return 0, codec.DataRecord{}, false, nil
		}
		return 0, codec.DataRecord{}, false, rerr
	}

	buf := append(header, rest...)
	recordOffset := s.offset
	d, _, derr := codec.DecodeData(buf)
	s.offset += int64(total)

	if derr != nil {
		var ce *ignerrors.CorruptError
		if errors.As(derr, &ce) {
			ce.WithFileID(s.fid).WithOffset(recordOffset)
		}
		// A short read (EOF mid-header or mid-body, handled above) is the
		// only recoverable tail event: it is what an interrupted append
		// looks like, and it can only ever happen at the tail, since bytes
		// ran out. A record with its full declared length present but a
		// bad CRC or op tag was never torn by a crash; every byte an
		// append would have written is already there, so this is bit-rot
		// or a corrupted write, not a truncated one. That holds regardless
		// of whether other records follow, so it is always fatal to the
		// scan.
		return 0, codec.DataRecord{}, false, derr
	}

	return recordOffset, d, true, nil
}

// TailErr returns the recoverable corruption that ended the scan early,
// or nil if the scan ran to a clean end of file (or hasn't stopped yet).
func (s *Scanner) TailErr() error {
	return s.tailErr
}

// Close releases the scanner's independent file handle.
func (s *Scanner) Close() error {
	return s.file.Close()
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
