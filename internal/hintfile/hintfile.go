// Package hintfile generates and imports "<fid>.hints" files: a compact
// summary of a data file that reproduces its effect on the key directory
// without requiring a full value-carrying scan.
package hintfile

import (
	"bytes"
	"os"
	"slices"

	natomic "github.com/natefinch/atomic"

	"github.com/embeddedkv/ignite/internal/codec"
	"github.com/embeddedkv/ignite/internal/datafile"
	"github.com/embeddedkv/ignite/internal/fid"
	"github.com/embeddedkv/ignite/pkg/filesys"
)

// Generate performs one sequential scan of df and writes the surviving
// per-key hint records, in ascending key order, to df's sibling hint
// file. Within the scan, a DELETE for key k erases any pending PUT for k,
// and a later PUT or DELETE for k supersedes any earlier one: the last
// occurrence for each key wins.
//
// The output is published atomically: written to a sibling temporary
// path, fsynced, then renamed into place, so a reader never observes a
// partially-written hint file. natomic.WriteFile creates its temporary
// file with its own fixed permissions, so the hint file is chmod'd to
// mode after the rename to honor the caller's configured file mode.
func Generate(dir string, df *datafile.DataFile, mode os.FileMode) error {
	sc, err := df.Scan()
	if err != nil {
		return err
	}
	defer sc.Close()

	latest := make(map[uint32]codec.HintRecord)
	for {
		offset, rec, ok, err := sc.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		latest[rec.Key] = codec.HintRecord{
			Key:       rec.Key,
			Op:        rec.Op,
			ValueSize: rec.ValueSize,
			Offset:    uint64(offset),
		}
	}

	keys := make([]uint32, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		buf.Write(codec.EncodeHint(latest[k]))
	}

	hintPath := fid.HintPath(dir, df.FID())
	if err := natomic.WriteFile(hintPath, bytes.NewReader(buf.Bytes())); err != nil {
		return err
	}
	return os.Chmod(hintPath, mode)
}

// KeyDirectory is the subset of the key directory's write surface that
// Import needs: insert a live entry, or remove one on a tombstone.
type KeyDirectory interface {
	Insert(key uint32, fileID uint64, offset int64, valueSize uint32)
	Remove(key uint32)
}

// Import sequentially decodes fileID's hint file and applies each record
// to dir: a PUT overwrites the key's entry, a DELETE removes it if
// present.
func Import(hintPath string, fileID uint64, dir KeyDirectory) error {
	data, err := filesys.ReadFile(hintPath)
	if err != nil {
		return err
	}

	recSize := codec.EncodedHintLen()
	for offset := 0; offset < len(data); offset += recSize {
		rec, _, err := codec.DecodeHint(data[offset:])
		if err != nil {
			return err
		}

		switch rec.Op {
		case codec.OpPut:
			dir.Insert(rec.Key, fileID, int64(rec.Offset), rec.ValueSize)
		case codec.OpDelete:
			dir.Remove(rec.Key)
		}
	}
	return nil
}
