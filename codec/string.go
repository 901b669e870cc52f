package codec

import (
	"fmt"
	"unicode/utf8"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
)

// MaxStringLength caps the declared length of a single UTF-8 string so a
// corrupt or adversarial length prefix cannot trigger an unbounded
// allocation when decoding.
const MaxStringLength = 256 * 1024 * 1024

// StringCodec encodes and decodes the length-prefixed UTF-8 strings used
// throughout TDMS meta-data: object paths, property names and values,
// and string-channel elements.
//
// Wire format: a u32 byte length in the segment's endianness, followed by
// that many raw UTF-8 bytes. No NUL terminator is written; an optional
// trailing NUL included in the declared length is tolerated on decode.
type StringCodec struct {
	engine endian.EndianEngine
}

// NewStringCodec creates a StringCodec bound to the given endian engine.
func NewStringCodec(engine endian.EndianEngine) StringCodec {
	return StringCodec{engine: engine}
}

// AppendString appends the length-prefixed encoding of s to dst.
func (c StringCodec) AppendString(dst []byte, s string) []byte {
	dst = c.engine.AppendUint32(dst, uint32(len(s))) //nolint:gosec
	return append(dst, s...)
}

// Size returns the on-wire byte size of s, including its length prefix.
func (c StringCodec) Size(s string) int {
	return 4 + len(s)
}

// DecodeString reads one length-prefixed string from the front of src,
// returning the decoded string and the number of bytes consumed.
func (c StringCodec) DecodeString(src []byte) (string, int, error) {
	if len(src) < 4 {
		return "", 0, fmt.Errorf("%w: string length prefix", errs.ErrIo)
	}

	length := c.engine.Uint32(src)
	if uint64(length) > MaxStringLength {
		return "", 0, fmt.Errorf("%w: string length %d exceeds limit", errs.ErrLengthOverflow, length)
	}

	total := 4 + int(length)
	if len(src) < total {
		return "", 0, fmt.Errorf("%w: string data", errs.ErrIo)
	}

	raw := src[4:total]
	if n := len(raw); n > 0 && raw[n-1] == 0 {
		raw = raw[:n-1]
	}

	if !utf8.Valid(raw) {
		return "", 0, fmt.Errorf("%w: string value", errs.ErrInvalidUtf8)
	}

	return string(raw), total, nil
}
