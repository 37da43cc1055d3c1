package codec

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ignerrors "github.com/embeddedkv/ignite/pkg/errors"
)

func TestEncodeDecodeDataRoundTrip(t *testing.T) {
	cases := []DataRecord{
		{Key: 1, Op: OpPut, ValueSize: 5, Value: []byte("hello")},
		{Key: 42, Op: OpDelete, ValueSize: 0, Value: nil},
		{Key: 7, Op: OpPut, ValueSize: 0, Value: []byte{}},
	}

	for _, want := range cases {
		buf := EncodeData(want)
		got, n, err := DecodeData(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, want.Key, got.Key)
		assert.Equal(t, want.Op, got.Op)
		assert.Equal(t, want.ValueSize, got.ValueSize)
		if len(want.Value) == 0 {
			assert.Empty(t, got.Value)
		} else {
			assert.Equal(t, want.Value, got.Value)
		}
	}
}

func TestEncodeDataIsPadded(t *testing.T) {
	buf := EncodeData(DataRecord{Key: 1, Op: OpPut, ValueSize: 1, Value: []byte("x")})
	assert.Equal(t, 0, len(buf)%4, "encoded record must be 4-byte aligned")
	assert.Equal(t, DataHeaderSize+1+2, len(buf))
}

func TestDecodeDataDetectsCrcMismatch(t *testing.T) {
	buf := EncodeData(DataRecord{Key: 1, Op: OpPut, ValueSize: 5, Value: []byte("hello")})
	buf[len(buf)-1] ^= 0xFF

	_, _, err := DecodeData(buf)
	require.Error(t, err)

	var ce *ignerrors.CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ignerrors.ErrorCodeCrcMismatch, ce.Code())
}

func TestDecodeDataDetectsTruncation(t *testing.T) {
	buf := EncodeData(DataRecord{Key: 1, Op: OpPut, ValueSize: 5, Value: []byte("hello")})

	_, _, err := DecodeData(buf[:DataHeaderSize-1])
	require.Error(t, err)
	var ce *ignerrors.CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ignerrors.ErrorCodeTruncated, ce.Code())

	_, _, err = DecodeData(buf[:len(buf)-1])
	require.Error(t, err)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ignerrors.ErrorCodeTruncated, ce.Code())
}

func TestDecodeDataDetectsUnknownOp(t *testing.T) {
	buf := EncodeData(DataRecord{Key: 1, Op: OpPut, ValueSize: 5, Value: []byte("hello")})
	buf[8] = 0x09
	binary.LittleEndian.PutUint32(buf[0:4], crc32.ChecksumIEEE(buf[4:]))

	_, _, err := DecodeData(buf)
	require.Error(t, err)
	var ce *ignerrors.CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ignerrors.ErrorCodeUnknownOp, ce.Code())
}

func TestEncodeDecodeHintRoundTrip(t *testing.T) {
	want := HintRecord{Key: 99, Op: OpPut, ValueSize: 128, Offset: 4096}
	buf := EncodeHint(want)
	assert.Equal(t, EncodedHintLen(), len(buf))

	got, n, err := DecodeHint(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, want, got)
}

func TestDecodeHintDetectsTruncation(t *testing.T) {
	buf := EncodeHint(HintRecord{Key: 1, Op: OpPut, ValueSize: 1, Offset: 1})
	_, _, err := DecodeHint(buf[:HintRecordSize-1])
	require.Error(t, err)
	var ce *ignerrors.CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ignerrors.ErrorCodeTruncated, ce.Code())
}
