package segment

import (
	"fmt"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
)

// EncodeStringChunk lays out a string channel's chunk as n u32 byte
// offsets (offset[i] is the cumulative byte length of strings before i,
// so offset[0] = 0) followed by the concatenated UTF-8 bytes, with no
// separators.
func EncodeStringChunk(values []string, engine endian.EndianEngine) []byte {
	s := codec.NewScalar(engine)

	var total int
	for _, v := range values {
		total += len(v)
	}

	buf := make([]byte, 0, 4*len(values)+total)

	cumulative := uint32(0)
	for _, v := range values {
		buf = s.AppendU32(buf, cumulative)
		cumulative += uint32(len(v)) //nolint:gosec
	}

	for _, v := range values {
		buf = append(buf, v...)
	}

	return buf
}

// DecodeStringChunk reverses EncodeStringChunk, given the chunk's element
// count (from the channel's raw-index record).
func DecodeStringChunk(src []byte, count int, engine endian.EndianEngine) ([]string, error) {
	s := codec.NewScalar(engine)

	offsetsLen := 4 * count
	if len(src) < offsetsLen {
		return nil, fmt.Errorf("%w: string offset table", errs.ErrTruncatedSegment)
	}

	offsets := make([]uint32, count)
	for i := range count {
		offsets[i] = s.U32(src[i*4:])
	}

	blob := src[offsetsLen:]

	out := make([]string, count)

	for i := range count {
		start := offsets[i]

		var end uint32
		if i+1 < count {
			end = offsets[i+1]
		} else {
			end = uint32(len(blob)) //nolint:gosec
		}

		if int(end) > len(blob) || end < start {
			return nil, fmt.Errorf("%w: string offset out of range", errs.ErrTruncatedSegment)
		}

		out[i] = string(blob[start:end])
	}

	return out, nil
}
