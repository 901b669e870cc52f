package segment

import (
	"fmt"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/tdmstype"
)

// Build assembles one complete segment (lead-in, meta, raw) ready to
// append to a file. metaBytes and rawBytes are the already-encoded
// regions; toc must already reflect whether meta/raw/new-object-list/
// interleave/big-endian are present, per spec invariant 9.
func Build(tag [4]byte, toc tdmstype.TocFlags, metaBytes, rawBytes []byte) []byte {
	h := Header{
		Tag:           tag,
		Toc:           toc,
		Version:       VersionCurrent,
		RawDataOffset: uint64(len(metaBytes)),
		NextSegOffset: uint64(len(metaBytes) + len(rawBytes)),
	}

	out := make([]byte, LeadInSize+len(metaBytes)+len(rawBytes))
	h.Encode(out)
	copy(out[LeadInSize:], metaBytes)
	copy(out[LeadInSize+len(metaBytes):], rawBytes)

	return out
}

// Decoded is one fully parsed segment: its header, the meta-data object
// list (if present), and the byte offsets of the raw payload within the
// file so the caller can read it lazily or skip it.
type Decoded struct {
	Header          Header
	Meta            Meta
	HasMeta         bool
	RawPayloadStart int64 // absolute file offset of the first raw byte
	RawPayloadLen   int64
}

// Parse decodes one segment starting at src[0], where src holds at least
// the lead-in and, if present, the full meta-data region. segmentStart is
// the segment's absolute offset in the file, used to compute
// RawPayloadStart. fileSize is the total size of the file being read,
// used to recover a truncated final segment (header.Incomplete()).
func Parse(src []byte, segmentStart, fileSize int64) (Decoded, error) {
	h, err := DecodeHeader(src)
	if err != nil {
		return Decoded{}, err
	}

	engine := engineFor(h)

	d := Decoded{Header: h}

	metaLen := int64(h.RawDataOffset)

	var rawLen int64

	if h.Incomplete() {
		rawLen = fileSize - segmentStart - LeadInSize - metaLen
		if rawLen < 0 {
			rawLen = 0
		}
	} else {
		rawLen = int64(h.NextSegOffset) - metaLen
	}

	d.RawPayloadStart = segmentStart + LeadInSize + metaLen
	d.RawPayloadLen = rawLen

	if h.Toc.HasMetaData() && h.RawDataOffset > 0 {
		if int64(len(src)) < LeadInSize+metaLen {
			return Decoded{}, fmt.Errorf("%w: meta-data region", errs.ErrTruncatedSegment)
		}

		meta, _, err := DecodeMeta(src[LeadInSize:LeadInSize+metaLen], engine)
		if err != nil {
			return Decoded{}, err
		}

		d.Meta = meta
		d.HasMeta = true
	}

	return d, nil
}

func engineFor(h Header) endian.EndianEngine {
	if h.Toc.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}
