package segment

import (
	"fmt"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/tdmstype"
)

// IndexKind selects which of the four shapes a raw-index record takes.
type IndexKind int

const (
	IndexAbsent IndexKind = iota
	IndexSameAsPrevious
	IndexFull
	IndexDAQmx
)

// markerNoRawData and markerSameAsPrevious are the two sentinel values
// the leading u32 of a raw-index record can take instead of an index
// length.
const (
	markerNoRawData      uint32 = 0xFFFFFFFF
	markerSameAsPrevious uint32 = 0x00000000
)

// DAQmx scaler-format markers recognized in the leading u32 of a raw-index
// record, taken from the published DAQmx raw-data scaler formats: the
// "format changing scaler" (analog) and "digital line scaler" layouts.
const (
	DAQmxFormatChangingScaler uint32 = 0x00001269
	DAQmxDigitalLineScaler    uint32 = 0x0000126A
)

// RawIndexRecord is the decoded shape of one channel's raw-index entry in
// a segment's meta-data region.
type RawIndexRecord struct {
	Kind IndexKind

	// Populated when Kind == IndexFull.
	DataType       tdmstype.DataType
	Dimension      uint32
	NumberOfValues uint64
	ByteSize       uint64 // stored on disk for variable-width types; NumberOfValues × element size for fixed-width ones

	// DAQmxRaw holds the complete on-disk bytes of a DAQmx raw-index
	// record (marker through the last width entry), preserved verbatim.
	// Populated when Kind == IndexDAQmx.
	DAQmxRaw []byte
}

// NewFullIndex builds a full raw-index record for a fixed-width channel.
func NewFullIndex(dt tdmstype.DataType, numberOfValues uint64) RawIndexRecord {
	size, fixed := dt.FixedSize()
	var byteSize uint64
	if fixed {
		byteSize = numberOfValues * uint64(size) //nolint:gosec
	}

	return RawIndexRecord{
		Kind:           IndexFull,
		DataType:       dt,
		Dimension:      1,
		NumberOfValues: numberOfValues,
		ByteSize:       byteSize,
	}
}

// NewVariableIndex builds a full raw-index record for a variable-width
// channel (currently only String), given the exact total byte size of the
// raw chunk (offsets array plus concatenated bytes).
func NewVariableIndex(dt tdmstype.DataType, numberOfValues, totalBytes uint64) RawIndexRecord {
	return RawIndexRecord{
		Kind:           IndexFull,
		DataType:       dt,
		Dimension:      1,
		NumberOfValues: numberOfValues,
		ByteSize:       totalBytes,
	}
}

// SameShape reports whether two full-index records describe an identical
// raw layout, the test the incremental writer uses to decide whether it
// may encode IndexSameAsPrevious instead of a full record.
func (r RawIndexRecord) SameShape(other RawIndexRecord) bool {
	return r.Kind == IndexFull && other.Kind == IndexFull &&
		r.DataType == other.DataType &&
		r.NumberOfValues == other.NumberOfValues &&
		r.ByteSize == other.ByteSize
}

// Append encodes r to dst using the segment's meta-data endian engine.
func (r RawIndexRecord) Append(dst []byte, s codec.Scalar) []byte {
	switch r.Kind {
	case IndexAbsent:
		return s.AppendU32(dst, markerNoRawData)
	case IndexSameAsPrevious:
		return s.AppendU32(dst, markerSameAsPrevious)
	case IndexDAQmx:
		return append(dst, r.DAQmxRaw...)
	case IndexFull:
		_, fixed := r.DataType.FixedSize()

		indexLen := uint32(16)
		if !fixed {
			indexLen = 24
		}

		dst = s.AppendU32(dst, indexLen)
		dst = s.AppendU32(dst, uint32(r.DataType))
		dst = s.AppendU32(dst, r.Dimension)
		dst = s.AppendU64(dst, r.NumberOfValues)

		if !fixed {
			dst = s.AppendU64(dst, r.ByteSize)
		}

		return dst
	default:
		return dst
	}
}

// DecodeRawIndex reads one raw-index record from the front of src,
// returning the record and the number of bytes consumed.
func DecodeRawIndex(src []byte, s codec.Scalar) (RawIndexRecord, int, error) {
	if len(src) < 4 {
		return RawIndexRecord{}, 0, fmt.Errorf("%w: raw-index marker", errs.ErrIo)
	}

	marker := s.U32(src)

	switch marker {
	case markerNoRawData:
		return RawIndexRecord{Kind: IndexAbsent}, 4, nil
	case markerSameAsPrevious:
		return RawIndexRecord{Kind: IndexSameAsPrevious}, 4, nil
	case DAQmxFormatChangingScaler, DAQmxDigitalLineScaler:
		return decodeDAQmxIndex(src, s, marker)
	default:
		return decodeFullIndex(src, s, marker)
	}
}

func decodeFullIndex(src []byte, s codec.Scalar, indexLen uint32) (RawIndexRecord, int, error) {
	// indexLen counts the bytes following the length field itself.
	if len(src) < 4+int(indexLen) {
		return RawIndexRecord{}, 0, fmt.Errorf("%w: full raw-index", errs.ErrInvalidIndexEntrySize)
	}

	body := src[4:]

	if len(body) < 16 {
		return RawIndexRecord{}, 0, fmt.Errorf("%w: full raw-index body", errs.ErrInvalidIndexEntrySize)
	}

	dt := tdmstype.DataType(s.U32(body))
	dim := s.U32(body[4:])
	numValues := s.U64(body[8:])

	rec := RawIndexRecord{Kind: IndexFull, DataType: dt, Dimension: dim, NumberOfValues: numValues}
	consumed := 4 + 16

	if indexLen == 24 {
		if len(body) < 24 {
			return RawIndexRecord{}, 0, fmt.Errorf("%w: variable raw-index body", errs.ErrInvalidIndexEntrySize)
		}

		rec.ByteSize = s.U64(body[16:])
		consumed = 4 + 24
	} else {
		size, fixed := dt.FixedSize()
		if fixed {
			rec.ByteSize = numValues * uint64(size) //nolint:gosec
		}
	}

	return rec, consumed, nil
}

// decodeDAQmxIndex parses a DAQmx opaque raw-index record: marker, array
// dimension, chunk size, scaler vector, and raw-data-width vector. The
// scaler contents are never interpreted beyond their fixed 20-byte
// stride, only counted, so the record's exact byte length can be
// recovered; the full span is stored verbatim in DAQmxRaw.
func decodeDAQmxIndex(src []byte, s codec.Scalar, marker uint32) (RawIndexRecord, int, error) {
	const scalerSize = 20

	off := 4
	need := func(n int) error {
		if len(src) < off+n {
			return fmt.Errorf("%w: DAQmx raw-index", errs.ErrInvalidIndexEntrySize)
		}

		return nil
	}

	if err := need(4 + 8 + 4); err != nil {
		return RawIndexRecord{}, 0, err
	}

	off += 4 // dimension
	off += 8 // chunk size
	scalerCount := s.U32(src[off:])
	off += 4

	if err := need(int(scalerCount) * scalerSize); err != nil {
		return RawIndexRecord{}, 0, err
	}

	off += int(scalerCount) * scalerSize

	if err := need(4); err != nil {
		return RawIndexRecord{}, 0, err
	}

	widthCount := s.U32(src[off:])
	off += 4

	if err := need(int(widthCount) * 4); err != nil {
		return RawIndexRecord{}, 0, err
	}

	off += int(widthCount) * 4

	return RawIndexRecord{Kind: IndexDAQmx, DAQmxRaw: append([]byte(nil), src[:off]...)}, off, nil
}
