package segment

import (
	"fmt"

	"github.com/arloliu/gotdms/errs"
)

// RawChannelData is one channel's chunk payload, already serialized in
// the segment's target endian. For fixed-width channels Bytes holds
// Count*ElementSize raw bytes; for string channels Bytes already holds
// the u32 offset table followed by the concatenated UTF-8 bytes, per the
// string raw-data layout.
type RawChannelData struct {
	ElementSize int // 0 for variable-width (string) channels
	Count       int
	Bytes       []byte
}

// EncodeRawPayload lays out channels' per-chunk bytes into one segment's
// raw payload, either channel-major (concatenated) or interleaved
// (per-index tuples). Interleaving a variable-width channel is rejected.
func EncodeRawPayload(channels []RawChannelData, interleaved bool) ([]byte, error) {
	if !interleaved {
		var buf []byte
		for _, c := range channels {
			buf = append(buf, c.Bytes...)
		}

		return buf, nil
	}

	return interleaveRaw(channels)
}

func interleaveRaw(channels []RawChannelData) ([]byte, error) {
	if len(channels) == 0 {
		return nil, nil
	}

	n := channels[0].Count

	for _, c := range channels {
		if c.ElementSize == 0 {
			return nil, errs.ErrInterleaveRequiresFixedWidth
		}

		if c.Count != n {
			return nil, fmt.Errorf("%w: channel chunk counts differ (%d vs %d)", errs.ErrInterleaveRequiresFixedWidth, c.Count, n)
		}
	}

	totalElemSize := 0
	for _, c := range channels {
		totalElemSize += c.ElementSize
	}

	buf := make([]byte, 0, n*totalElemSize)

	for i := range n {
		for _, c := range channels {
			start := i * c.ElementSize
			buf = append(buf, c.Bytes[start:start+c.ElementSize]...)
		}
	}

	return buf, nil
}

// RawChannelShape describes, for decoding, the per-chunk shape of one
// channel's raw data: ElementSize (0 for variable-width) and Count, or
// for variable-width channels the exact TotalBytes of the chunk.
type RawChannelShape struct {
	ElementSize int
	Count       int
	TotalBytes  int
}

// DecodeRawPayload splits src into one byte slice per channel, in the
// same channel order and interleave mode used to encode it. Returned
// slices alias src; callers that retain them beyond src's lifetime must
// copy.
func DecodeRawPayload(src []byte, shapes []RawChannelShape, interleaved bool) ([][]byte, error) {
	if !interleaved {
		out := make([][]byte, len(shapes))
		off := 0

		for i, sh := range shapes {
			size := sh.TotalBytes
			if sh.ElementSize > 0 {
				size = sh.Count * sh.ElementSize
			}

			if off+size > len(src) {
				return nil, fmt.Errorf("%w: raw payload shorter than declared chunk", errs.ErrTruncatedSegment)
			}

			out[i] = src[off : off+size]
			off += size
		}

		return out, nil
	}

	if len(shapes) == 0 {
		return nil, nil
	}

	n := shapes[0].Count

	for _, sh := range shapes {
		if sh.ElementSize == 0 {
			return nil, errs.ErrInterleaveRequiresFixedWidth
		}

		if sh.Count != n {
			return nil, fmt.Errorf("%w: channel chunk counts differ", errs.ErrInterleaveRequiresFixedWidth)
		}
	}

	out := make([][]byte, len(shapes))
	for i, sh := range shapes {
		out[i] = make([]byte, 0, n*sh.ElementSize)
	}

	off := 0

	for range n {
		for ci, sh := range shapes {
			if off+sh.ElementSize > len(src) {
				return nil, fmt.Errorf("%w: interleaved raw payload truncated", errs.ErrTruncatedSegment)
			}

			out[ci] = append(out[ci], src[off:off+sh.ElementSize]...)
			off += sh.ElementSize
		}
	}

	return out, nil
}
