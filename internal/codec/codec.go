// Package codec implements the on-disk wire format for data and hint
// records: encoding, decoding, and the CRC-32 integrity check that guards
// every data record against torn or bit-rotted writes.
package codec

import (
	"encoding/binary"
	"hash/crc32"

	ignerrors "github.com/embeddedkv/ignite/pkg/errors"
)

// Op identifies what a record does to a key: write a value or remove it.
type Op uint8

const (
	// OpPut marks a record that associates a key with a value.
	OpPut Op = 0x01

	// OpDelete marks a record that removes a key. The value is empty and
	// ValueSize is always zero.
	OpDelete Op = 0x02
)

// Sizes of the fixed-width fields that make up each record, in bytes.
const (
	crcFieldSize    = 4
	keyFieldSize    = 4
	opFieldSize     = 1
	sizeFieldSize   = 4
	offsetFieldSize = 8

	// DataHeaderSize is the number of bytes preceding the value payload in
	// an on-disk data record: crc + key + op + value_size.
	DataHeaderSize = crcFieldSize + keyFieldSize + opFieldSize + sizeFieldSize

	// HintRecordSize is the number of unpadded bytes in an on-disk hint
	// record: key + op + value_size + offset. Hint records carry no CRC
	// and no value payload.
	HintRecordSize = keyFieldSize + opFieldSize + sizeFieldSize + offsetFieldSize
)

// DataRecord is the decoded form of one data-file record.
type DataRecord struct {
	Key       uint32
	Op        Op
	ValueSize uint32
	Value     []byte
}

// HintRecord is the decoded form of one hint-file record: everything the
// key directory needs to reconstruct an Entry without reading the value.
type HintRecord struct {
	Key       uint32
	Op        Op
	ValueSize uint32
	Offset    uint64
}

// align4 rounds n up to the next multiple of 4.
func align4(n int) int {
	return (n + 3) &^ 3
}

// EncodedDataLen returns the total on-disk length of a data record carrying
// a value of the given size, header plus value plus zero-padding.
func EncodedDataLen(valueSize int) int {
	return align4(DataHeaderSize + valueSize)
}

// EncodedHintLen returns the total on-disk length of a hint record,
// constant regardless of the value it describes.
func EncodedHintLen() int {
	return align4(HintRecordSize)
}

// EncodeData serializes r into its on-disk representation: a 4-byte
// CRC-32 (IEEE) followed by the key, op tag, value size, value bytes, and
// zero-padding out to a 4-byte boundary. The CRC covers every byte after
// the CRC field itself, padding included.
func EncodeData(r DataRecord) []byte {
	total := EncodedDataLen(len(r.Value))
	buf := make([]byte, total)

	binary.LittleEndian.PutUint32(buf[4:8], r.Key)
	buf[8] = byte(r.Op)
	binary.LittleEndian.PutUint32(buf[9:13], r.ValueSize)
	copy(buf[DataHeaderSize:], r.Value)

	crc := crc32.ChecksumIEEE(buf[4:])
	binary.LittleEndian.PutUint32(buf[0:4], crc)

	return buf
}

// DecodeData parses a single data record out of buf, which must contain at
// least the header plus the declared value and padding. It returns the
// decoded record and the total number of bytes consumed.
//
// buf may be longer than one record; only the leading EncodedDataLen bytes
// are examined. Callers reading from a file that might end mid-record
// should treat a short buf as a truncation, not call DecodeData on it.
func DecodeData(buf []byte) (DataRecord, int, error) {
	if len(buf) < DataHeaderSize {
		return DataRecord{}, 0, ignerrors.NewCorruptError(nil, ignerrors.ErrorCodeTruncated,
			"data record header truncated")
	}

	valueSize := binary.LittleEndian.Uint32(buf[9:13])
	total := EncodedDataLen(int(valueSize))
	if len(buf) < total {
		return DataRecord{}, 0, ignerrors.NewCorruptError(nil, ignerrors.ErrorCodeTruncated,
			"data record body truncated")
	}

	storedCRC := binary.LittleEndian.Uint32(buf[0:4])
	gotCRC := crc32.ChecksumIEEE(buf[4:total])
	if storedCRC != gotCRC {
		return DataRecord{}, 0, ignerrors.NewCorruptError(nil, ignerrors.ErrorCodeCrcMismatch,
			"data record crc mismatch")
	}

	op := Op(buf[8])
	if op != OpPut && op != OpDelete {
		return DataRecord{}, 0, ignerrors.NewCorruptError(nil, ignerrors.ErrorCodeUnknownOp,
			"data record has unknown op tag")
	}

	r := DataRecord{
		Key:       binary.LittleEndian.Uint32(buf[4:8]),
		Op:        op,
		ValueSize: valueSize,
	}
	if valueSize > 0 {
		r.Value = append([]byte(nil), buf[DataHeaderSize:DataHeaderSize+int(valueSize)]...)
	}
	return r, total, nil
}

// EncodeHint serializes r into its on-disk hint representation: key, op
// tag, value size, and file offset, zero-padded out to a 4-byte boundary.
// Hint records carry no CRC; their source of truth is the data file they
// were generated from.
func EncodeHint(r HintRecord) []byte {
	total := EncodedHintLen()
	buf := make([]byte, total)

	binary.LittleEndian.PutUint32(buf[0:4], r.Key)
	buf[4] = byte(r.Op)
	binary.LittleEndian.PutUint32(buf[5:9], r.ValueSize)
	binary.LittleEndian.PutUint64(buf[9:17], r.Offset)

	return buf
}

// DecodeHint parses a single hint record out of buf and returns it along
// with the number of bytes consumed (always EncodedHintLen()).
func DecodeHint(buf []byte) (HintRecord, int, error) {
	total := EncodedHintLen()
	if len(buf) < total {
		return HintRecord{}, 0, ignerrors.NewCorruptError(nil, ignerrors.ErrorCodeTruncated,
			"hint record truncated")
	}

	op := Op(buf[4])
	if op != OpPut && op != OpDelete {
		return HintRecord{}, 0, ignerrors.NewCorruptError(nil, ignerrors.ErrorCodeUnknownOp,
			"hint record has unknown op tag")
	}

	r := HintRecord{
		Key:       binary.LittleEndian.Uint32(buf[0:4]),
		Op:        op,
		ValueSize: binary.LittleEndian.Uint32(buf[5:9]),
		Offset:    binary.LittleEndian.Uint64(buf[9:17]),
	}
	return r, total, nil
}
