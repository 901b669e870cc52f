// Package segment implements the binary codec for one TDMS segment: the
// 28-byte lead-in, the meta-data region (object list, raw-index records,
// properties), and the raw payload. Lead-in scalars and the
// table-of-contents are always little-endian; the meta-data and raw
// regions switch endianness per the lead-in's TocBigEndian bit.
package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/tdmstype"
)

// LeadInSize is the fixed byte size of a segment's lead-in.
const LeadInSize = 28

// TagData and TagIndex are the two recognized 4-byte segment tags: the
// primary .tdms file and its .tdms_index companion, respectively.
var (
	TagData  = [4]byte{'T', 'D', 'S', 'm'}
	TagIndex = [4]byte{'T', 'D', 'S', 'h'}
)

const (
	VersionCurrent = 4713
	VersionLegacy  = 4712
)

// IncompleteMarker is the next_seg_offset sentinel written when a writer
// crashed mid-segment: the segment is the file's last and the reader must
// recover by truncating to the raw data actually present.
const IncompleteMarker uint64 = 0xFFFFFFFFFFFFFFFF

// Header is the decoded 28-byte lead-in of a segment.
type Header struct {
	Tag           [4]byte
	Toc           tdmstype.TocFlags
	Version       uint32
	NextSegOffset uint64
	RawDataOffset uint64
}

// Endian returns the endian engine the meta-data and raw regions of this
// segment are encoded with, derived from the ToC's big-endian bit.
func (h Header) Endian() binary.ByteOrder {
	if h.Toc.IsBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Incomplete reports whether this segment was left truncated by a crash.
func (h Header) Incomplete() bool { return h.NextSegOffset == IncompleteMarker }

// Encode writes the 28-byte lead-in to dst, which must have length ≥
// LeadInSize. Lead-in integers are always little-endian.
func (h Header) Encode(dst []byte) {
	copy(dst[0:4], h.Tag[:])
	binary.LittleEndian.PutUint32(dst[4:8], uint32(h.Toc))
	binary.LittleEndian.PutUint32(dst[8:12], h.Version)
	binary.LittleEndian.PutUint64(dst[12:20], h.NextSegOffset)
	binary.LittleEndian.PutUint64(dst[20:28], h.RawDataOffset)
}

// DecodeHeader parses a 28-byte lead-in from the front of src.
func DecodeHeader(src []byte) (Header, error) {
	if len(src) < LeadInSize {
		return Header{}, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(src), LeadInSize)
	}

	var h Header
	copy(h.Tag[:], src[0:4])

	if h.Tag != TagData && h.Tag != TagIndex {
		return Header{}, fmt.Errorf("%w: %q", errs.ErrInvalidTag, h.Tag[:])
	}

	h.Toc = tdmstype.TocFlags(binary.LittleEndian.Uint32(src[4:8]))
	h.Version = binary.LittleEndian.Uint32(src[8:12])

	if h.Version != VersionCurrent && h.Version != VersionLegacy {
		return Header{}, fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}

	h.NextSegOffset = binary.LittleEndian.Uint64(src[12:20])
	h.RawDataOffset = binary.LittleEndian.Uint64(src[20:28])

	return h, nil
}
