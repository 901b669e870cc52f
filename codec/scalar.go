// Package codec provides endian-aware encode/decode primitives for the
// fixed-width scalars, UTF-8 strings, and timestamps that make up TDMS
// meta-data and raw-data records. Every higher-level package builds its
// wire format on top of these primitives.
package codec

import (
	"math"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/tdmstype"
)

// Scalar reads and writes the fixed-width values TDMS meta-data and
// numeric raw-data records are built from, using a single endian engine
// for the lifetime of the segment being processed.
type Scalar struct {
	engine endian.EndianEngine
}

// NewScalar creates a Scalar codec bound to the given endian engine.
func NewScalar(engine endian.EndianEngine) Scalar {
	return Scalar{engine: engine}
}

func (s Scalar) PutU8(dst []byte, v uint8)   { dst[0] = v }
func (s Scalar) PutI8(dst []byte, v int8)    { dst[0] = uint8(v) } //nolint:gosec
func (s Scalar) PutBool(dst []byte, v bool) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
}

func (s Scalar) PutU16(dst []byte, v uint16) { s.engine.PutUint16(dst, v) }
func (s Scalar) PutI16(dst []byte, v int16)  { s.engine.PutUint16(dst, uint16(v)) } //nolint:gosec
func (s Scalar) PutU32(dst []byte, v uint32) { s.engine.PutUint32(dst, v) }
func (s Scalar) PutI32(dst []byte, v int32)  { s.engine.PutUint32(dst, uint32(v)) } //nolint:gosec
func (s Scalar) PutU64(dst []byte, v uint64) { s.engine.PutUint64(dst, v) }
func (s Scalar) PutI64(dst []byte, v int64)  { s.engine.PutUint64(dst, uint64(v)) } //nolint:gosec
func (s Scalar) PutF32(dst []byte, v float32) {
	s.engine.PutUint32(dst, math.Float32bits(v))
}

func (s Scalar) PutF64(dst []byte, v float64) {
	s.engine.PutUint64(dst, math.Float64bits(v))
}

func (s Scalar) PutTimestamp(dst []byte, ts tdmstype.Timestamp) {
	s.engine.PutUint64(dst[0:8], ts.Fractions)
	s.engine.PutUint64(dst[8:16], uint64(ts.Seconds)) //nolint:gosec
}

func (s Scalar) U8(src []byte) uint8   { return src[0] }
func (s Scalar) I8(src []byte) int8    { return int8(src[0]) } //nolint:gosec
func (s Scalar) Bool(src []byte) bool  { return src[0] != 0 }
func (s Scalar) U16(src []byte) uint16 { return s.engine.Uint16(src) }
func (s Scalar) I16(src []byte) int16  { return int16(s.engine.Uint16(src)) } //nolint:gosec
func (s Scalar) U32(src []byte) uint32 { return s.engine.Uint32(src) }
func (s Scalar) I32(src []byte) int32  { return int32(s.engine.Uint32(src)) } //nolint:gosec
func (s Scalar) U64(src []byte) uint64 { return s.engine.Uint64(src) }
func (s Scalar) I64(src []byte) int64  { return int64(s.engine.Uint64(src)) } //nolint:gosec

func (s Scalar) F32(src []byte) float32 {
	return math.Float32frombits(s.engine.Uint32(src))
}

func (s Scalar) F64(src []byte) float64 {
	return math.Float64frombits(s.engine.Uint64(src))
}

func (s Scalar) Timestamp(src []byte) tdmstype.Timestamp {
	fractions := s.engine.Uint64(src[0:8])
	seconds := int64(s.engine.Uint64(src[8:16])) //nolint:gosec

	return tdmstype.Timestamp{Seconds: seconds, Fractions: fractions}
}

// ExtendedFloat decodes a 10-byte 80-bit extended-precision float (64-bit
// explicit-integer-bit mantissa + 16-bit sign/exponent, biased 16383) to
// the nearest float64. This is inherently lossy: float64 has only 52
// mantissa bits against the format's 63, and values outside float64's
// exponent range saturate to +/-Inf.
func (s Scalar) ExtendedFloat(src []byte) float64 {
	mantissa := s.engine.Uint64(src[0:8])
	signExp := s.engine.Uint16(src[8:10])

	sign := signExp&0x8000 != 0
	exponent := int(signExp & 0x7fff)

	var value float64

	switch {
	case exponent == 0 && mantissa == 0:
		value = 0
	case exponent == 0x7fff:
		if mantissa == 1<<63 {
			value = math.Inf(1)
		} else {
			value = math.NaN()
		}
	default:
		// mantissa's bit 63 is the explicit integer bit, so mantissa/2^63
		// is the significand in [1,2) for normalized values.
		value = (float64(mantissa) / (1 << 63)) * math.Ldexp(1, exponent-16383)
	}

	if sign && !math.IsNaN(value) {
		value = -value
	}

	return value
}

// AppendU32 appends a u32 in the codec's endianness, growing dst as needed.
func (s Scalar) AppendU32(dst []byte, v uint32) []byte {
	return s.engine.AppendUint32(dst, v)
}

// AppendU64 appends a u64 in the codec's endianness, growing dst as needed.
func (s Scalar) AppendU64(dst []byte, v uint64) []byte {
	return s.engine.AppendUint64(dst, v)
}
