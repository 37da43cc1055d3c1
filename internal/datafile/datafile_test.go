package datafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedkv/ignite/internal/codec"
	ignerrors "github.com/embeddedkv/ignite/pkg/errors"
)

func TestCreateFailsIfAlreadyExists(t *testing.T) {
	dir := t.TempDir()

	df, err := Create(dir, 1, DefaultFileMode)
	require.NoError(t, err)
	require.NoError(t, df.Close())

	_, err = Create(dir, 1, DefaultFileMode)
	assert.ErrorIs(t, err, ignerrors.ErrAlreadyExists)
}

func TestOpenMissingFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir, 1, false, DefaultFileMode)
	assert.Error(t, err)
}

func TestAppendAssignsDistinctOffsets(t *testing.T) {
	dir := t.TempDir()
	df, err := Create(dir, 1, DefaultFileMode)
	require.NoError(t, err)
	defer df.Close()

	rec1 := codec.EncodeData(codec.DataRecord{Key: 1, Op: codec.OpPut, ValueSize: 3, Value: []byte("abc")})
	rec2 := codec.EncodeData(codec.DataRecord{Key: 2, Op: codec.OpPut, ValueSize: 3, Value: []byte("def")})

	off1, err := df.Append(rec1)
	require.NoError(t, err)
	off2, err := df.Append(rec2)
	require.NoError(t, err)

	assert.Equal(t, int64(0), off1)
	assert.Equal(t, int64(len(rec1)), off2)
}

func TestAppendThenReadAt(t *testing.T) {
	dir := t.TempDir()
	df, err := Create(dir, 1, DefaultFileMode)
	require.NoError(t, err)
	defer df.Close()

	want := codec.DataRecord{Key: 7, Op: codec.OpPut, ValueSize: 5, Value: []byte("hello")}
	encoded := codec.EncodeData(want)

	off, err := df.Append(encoded)
	require.NoError(t, err)
	require.NoError(t, df.Sync())

	got, err := df.ReadAt(off)
	require.NoError(t, err)
	assert.Equal(t, want.Key, got.Key)
	assert.Equal(t, want.Value, got.Value)
}

func TestScanVisitsRecordsInOrderAndStopsCleanly(t *testing.T) {
	dir := t.TempDir()
	df, err := Create(dir, 1, DefaultFileMode)
	require.NoError(t, err)
	defer df.Close()

	records := []codec.DataRecord{
		{Key: 1, Op: codec.OpPut, ValueSize: 1, Value: []byte("a")},
		{Key: 2, Op: codec.OpPut, ValueSize: 1, Value: []byte("b")},
		{Key: 1, Op: codec.OpDelete, ValueSize: 0},
	}
	for _, r := range records {
		_, err := df.Append(codec.EncodeData(r))
		require.NoError(t, err)
	}
	require.NoError(t, df.Sync())

	sc, err := df.Scan()
	require.NoError(t, err)
	defer sc.Close()

	var seen []codec.DataRecord
	for {
		_, rec, ok, err := sc.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen = append(seen, rec)
	}

	require.NoError(t, sc.TailErr())
	require.Len(t, seen, 3)
	assert.Equal(t, uint32(2), seen[1].Key)
	assert.Equal(t, codec.OpDelete, seen[2].Op)
}

func TestScanReportsTruncatedTailAsRecoverable(t *testing.T) {
	dir := t.TempDir()
	df, err := Create(dir, 1, DefaultFileMode)
	require.NoError(t, err)

	rec := codec.EncodeData(codec.DataRecord{Key: 1, Op: codec.OpPut, ValueSize: 4, Value: []byte("data")})
	_, err = df.Append(rec[:len(rec)-2]) // truncate the last record mid-write, as a crash would
	require.NoError(t, err)
	require.NoError(t, df.Close())

	df2, err := Open(dir, 1, false, DefaultFileMode)
	require.NoError(t, err)
	defer df2.Close()

	sc, err := df2.Scan()
	require.NoError(t, err)
	defer sc.Close()

	_, _, ok, err := sc.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, sc.TailErr())
}

func TestScanReportsMidFileCorruptionAsFatal(t *testing.T) {
	dir := t.TempDir()
	df, err := Create(dir, 1, DefaultFileMode)
	require.NoError(t, err)

	bad := codec.EncodeData(codec.DataRecord{Key: 1, Op: codec.OpPut, ValueSize: 4, Value: []byte("data")})
	bad[len(bad)-1] ^= 0xFF // corrupt a padding byte so the CRC check fails, keep the record full-length
	good := codec.EncodeData(codec.DataRecord{Key: 2, Op: codec.OpPut, ValueSize: 4, Value: []byte("more")})

	_, err = df.Append(bad)
	require.NoError(t, err)
	_, err = df.Append(good)
	require.NoError(t, err)
	require.NoError(t, df.Close())

	df2, err := Open(dir, 1, false, DefaultFileMode)
	require.NoError(t, err)
	defer df2.Close()

	sc, err := df2.Scan()
	require.NoError(t, err)
	defer sc.Close()

	_, _, ok, err := sc.Next()
	assert.False(t, ok)
	require.Error(t, err)

	var ce *ignerrors.CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ignerrors.ErrorCodeCrcMismatch, ce.Code())
}

// S5: a single-record data file with one bit flipped in its value payload
// is corruption, not a torn write, even though the bad record sits at the
// very end of the file with nothing after it. Only a genuinely truncated
// record (fewer bytes present than declared) is a recoverable tail event;
// a structurally complete record that fails its CRC never is.
func TestScanReportsCompleteCorruptTailRecordAsFatal(t *testing.T) {
	dir := t.TempDir()
	df, err := Create(dir, 1, DefaultFileMode)
	require.NoError(t, err)

	rec := codec.EncodeData(codec.DataRecord{Key: 1, Op: codec.OpPut, ValueSize: 4, Value: []byte("data")})
	rec[codec.DataHeaderSize] ^= 0x01 // flip a bit in the value, keep the record full-length
	_, err = df.Append(rec)
	require.NoError(t, err)
	require.NoError(t, df.Close())

	df2, err := Open(dir, 1, false, DefaultFileMode)
	require.NoError(t, err)
	defer df2.Close()

	sc, err := df2.Scan()
	require.NoError(t, err)
	defer sc.Close()

	_, _, ok, err := sc.Next()
	assert.False(t, ok)
	require.Error(t, err)
	assert.NoError(t, sc.TailErr(), "a complete-but-corrupt record must not be classified as a recoverable tail event")

	var ce *ignerrors.CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ignerrors.ErrorCodeCrcMismatch, ce.Code())
}
