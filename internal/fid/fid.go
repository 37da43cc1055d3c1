// Package fid names and enumerates the data and hint files that make up a
// store's on-disk state. A file identifier (FID) is a strictly positive,
// monotonically increasing integer; the basename of a file is the FID
// itself, with a ".data" or ".hints" extension distinguishing the two
// kinds a given FID may have on disk.
package fid

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/embeddedkv/ignite/pkg/filesys"
)

const (
	// DataExt is the extension for data files.
	DataExt = ".data"

	// HintExt is the extension for hint files.
	HintExt = ".hints"
)

// DataPath returns the path of the data file for id within dir.
func DataPath(dir string, id uint64) string {
	return filepath.Join(dir, strconv.FormatUint(id, 10)+DataExt)
}

// HintPath returns the path of the hint file for id within dir.
func HintPath(dir string, id uint64) string {
	return filepath.Join(dir, strconv.FormatUint(id, 10)+HintExt)
}

// Enumerate scans dir and returns the set of FIDs that have a data file and
// the set that have a hint file, both sorted ascending. Any directory entry
// that doesn't parse as "<digits>.data" or "<digits>.hints" is ignored,
// matching the teacher's glob-then-sort approach to segment discovery.
func Enumerate(dir string) (dataIDs, hintIDs []uint64, err error) {
	dataMatches, err := filesys.ReadDir(filepath.Join(dir, "*"+DataExt))
	if err != nil {
		return nil, nil, err
	}
	hintMatches, err := filesys.ReadDir(filepath.Join(dir, "*"+HintExt))
	if err != nil {
		return nil, nil, err
	}

	dataIDs = parseIDs(dataMatches, DataExt)
	hintIDs = parseIDs(hintMatches, HintExt)

	slices.Sort(dataIDs)
	slices.Sort(hintIDs)
	return dataIDs, hintIDs, nil
}

// parseIDs extracts the numeric FID from each matched path's basename,
// silently skipping names that don't parse. A malformed or foreign file
// sitting in the data directory isn't this package's problem to report.
func parseIDs(paths []string, ext string) []uint64 {
	ids := make([]uint64, 0, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		trimmed := strings.TrimSuffix(base, ext)
		id, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// MissingHints returns the FIDs present in dataIDs but absent from hintIDs,
// i.e. the data files recovery must generate a hint file for. Both inputs
// must be sorted ascending, as returned by Enumerate.
func MissingHints(dataIDs, hintIDs []uint64) []uint64 {
	hintSet := make(map[uint64]struct{}, len(hintIDs))
	for _, id := range hintIDs {
		hintSet[id] = struct{}{}
	}

	missing := make([]uint64, 0)
	for _, id := range dataIDs {
		if _, ok := hintSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// OrphanHints returns the FIDs present in hintIDs but absent from dataIDs,
// i.e. hint files with no backing data file. Both inputs must be sorted
// ascending, as returned by Enumerate.
func OrphanHints(dataIDs, hintIDs []uint64) []uint64 {
	dataSet := make(map[uint64]struct{}, len(dataIDs))
	for _, id := range dataIDs {
		dataSet[id] = struct{}{}
	}

	orphans := make([]uint64, 0)
	for _, id := range hintIDs {
		if _, ok := dataSet[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	return orphans
}

// Max returns the largest id in ids, or 0 if ids is empty.
func Max(ids []uint64) uint64 {
	var max uint64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max
}
