// Package propvalue implements the tagged property value union carried
// by TDMS meta-data records: one of a handful of fixed-width scalars, a
// UTF-8 string, a boolean, or a timestamp, each keyed by a type code.
package propvalue

import (
	"fmt"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/tdmstype"
)

// Value is a decoded property value. Exactly one of the typed fields is
// meaningful, selected by Type.
type Value struct {
	Type tdmstype.DataType

	I8  int8
	I16 int16
	I32 int32
	I64 int64
	U8  uint8
	U16 uint16
	U32 uint32
	U64 uint64
	F32 float32
	F64 float64
	Str string
	B   bool
	TS  tdmstype.Timestamp
}

// Property is a single named value attached to a File, Group, or Channel.
type Property struct {
	Name  string
	Value Value
}

func I8Value(v int8) Value   { return Value{Type: tdmstype.I8, I8: v} }
func I16Value(v int16) Value { return Value{Type: tdmstype.I16, I16: v} }
func I32Value(v int32) Value { return Value{Type: tdmstype.I32, I32: v} }
func I64Value(v int64) Value { return Value{Type: tdmstype.I64, I64: v} }
func U8Value(v uint8) Value   { return Value{Type: tdmstype.U8, U8: v} }
func U16Value(v uint16) Value { return Value{Type: tdmstype.U16, U16: v} }
func U32Value(v uint32) Value { return Value{Type: tdmstype.U32, U32: v} }
func U64Value(v uint64) Value { return Value{Type: tdmstype.U64, U64: v} }
func F32Value(v float32) Value { return Value{Type: tdmstype.F32, F32: v} }
func F64Value(v float64) Value { return Value{Type: tdmstype.F64, F64: v} }
func StringValue(v string) Value { return Value{Type: tdmstype.String, Str: v} }
func BoolValue(v bool) Value     { return Value{Type: tdmstype.Bool, B: v} }
func TimestampValue(v tdmstype.Timestamp) Value { return Value{Type: tdmstype.TimeStamp, TS: v} }

// Codec encodes and decodes Property values using a single endian engine.
type Codec struct {
	scalar codec.Scalar
	str    codec.StringCodec
}

// NewCodec creates a property value Codec bound to the given endian engine.
func NewCodec(engine endian.EndianEngine) Codec {
	return Codec{scalar: codec.NewScalar(engine), str: codec.NewStringCodec(engine)}
}

// AppendValue appends the u32 type code and the value's wire encoding to dst.
func (c Codec) AppendValue(dst []byte, v Value) ([]byte, error) {
	dst = c.scalar.AppendU32(dst, uint32(v.Type))

	switch v.Type {
	case tdmstype.I8:
		return append(dst, byte(v.I8)), nil //nolint:gosec
	case tdmstype.I16:
		buf := make([]byte, 2)
		c.scalar.PutI16(buf, v.I16)

		return append(dst, buf...), nil
	case tdmstype.I32:
		buf := make([]byte, 4)
		c.scalar.PutI32(buf, v.I32)

		return append(dst, buf...), nil
	case tdmstype.I64:
		buf := make([]byte, 8)
		c.scalar.PutI64(buf, v.I64)

		return append(dst, buf...), nil
	case tdmstype.U8:
		return append(dst, v.U8), nil
	case tdmstype.U16:
		buf := make([]byte, 2)
		c.scalar.PutU16(buf, v.U16)

		return append(dst, buf...), nil
	case tdmstype.U32:
		buf := make([]byte, 4)
		c.scalar.PutU32(buf, v.U32)

		return append(dst, buf...), nil
	case tdmstype.U64:
		buf := make([]byte, 8)
		c.scalar.PutU64(buf, v.U64)

		return append(dst, buf...), nil
	case tdmstype.F32:
		buf := make([]byte, 4)
		c.scalar.PutF32(buf, v.F32)

		return append(dst, buf...), nil
	case tdmstype.F64:
		buf := make([]byte, 8)
		c.scalar.PutF64(buf, v.F64)

		return append(dst, buf...), nil
	case tdmstype.String:
		return c.str.AppendString(dst, v.Str), nil
	case tdmstype.Bool:
		return append(dst, boolByte(v.B)), nil
	case tdmstype.TimeStamp:
		buf := make([]byte, 16)
		c.scalar.PutTimestamp(buf, v.TS)

		return append(dst, buf...), nil
	default:
		return nil, fmt.Errorf("%w: property type %s", errs.ErrTypeMismatch, v.Type)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}

// DecodeValue reads one type-coded value from the front of src, returning
// the value and the number of bytes consumed.
func (c Codec) DecodeValue(src []byte) (Value, int, error) {
	if len(src) < 4 {
		return Value{}, 0, fmt.Errorf("%w: property type code", errs.ErrIo)
	}

	typeCode := tdmstype.DataType(c.scalar.U32(src))
	body := src[4:]

	switch typeCode {
	case tdmstype.I8:
		if len(body) < 1 {
			return Value{}, 0, fmt.Errorf("%w: i8 property", errs.ErrIo)
		}

		return I8Value(c.scalar.I8(body)), 5, nil
	case tdmstype.I16:
		if len(body) < 2 {
			return Value{}, 0, fmt.Errorf("%w: i16 property", errs.ErrIo)
		}

		return I16Value(c.scalar.I16(body)), 6, nil
	case tdmstype.I32:
		if len(body) < 4 {
			return Value{}, 0, fmt.Errorf("%w: i32 property", errs.ErrIo)
		}

		return I32Value(c.scalar.I32(body)), 8, nil
	case tdmstype.I64:
		if len(body) < 8 {
			return Value{}, 0, fmt.Errorf("%w: i64 property", errs.ErrIo)
		}

		return I64Value(c.scalar.I64(body)), 12, nil
	case tdmstype.U8:
		if len(body) < 1 {
			return Value{}, 0, fmt.Errorf("%w: u8 property", errs.ErrIo)
		}

		return U8Value(c.scalar.U8(body)), 5, nil
	case tdmstype.U16:
		if len(body) < 2 {
			return Value{}, 0, fmt.Errorf("%w: u16 property", errs.ErrIo)
		}

		return U16Value(c.scalar.U16(body)), 6, nil
	case tdmstype.U32:
		if len(body) < 4 {
			return Value{}, 0, fmt.Errorf("%w: u32 property", errs.ErrIo)
		}

		return U32Value(c.scalar.U32(body)), 8, nil
	case tdmstype.U64:
		if len(body) < 8 {
			return Value{}, 0, fmt.Errorf("%w: u64 property", errs.ErrIo)
		}

		return U64Value(c.scalar.U64(body)), 12, nil
	case tdmstype.F32:
		if len(body) < 4 {
			return Value{}, 0, fmt.Errorf("%w: f32 property", errs.ErrIo)
		}

		return F32Value(c.scalar.F32(body)), 8, nil
	case tdmstype.F64:
		if len(body) < 8 {
			return Value{}, 0, fmt.Errorf("%w: f64 property", errs.ErrIo)
		}

		return F64Value(c.scalar.F64(body)), 12, nil
	case tdmstype.F32Unit:
		if len(body) < 4 {
			return Value{}, 0, fmt.Errorf("%w: f32_unit property", errs.ErrIo)
		}

		return F32Value(c.scalar.F32(body)), 8, nil
	case tdmstype.F64Unit:
		if len(body) < 8 {
			return Value{}, 0, fmt.Errorf("%w: f64_unit property", errs.ErrIo)
		}

		return F64Value(c.scalar.F64(body)), 12, nil
	case tdmstype.ExtendedFloat:
		if len(body) < 10 {
			return Value{}, 0, fmt.Errorf("%w: extended_float property", errs.ErrIo)
		}

		return F64Value(c.scalar.ExtendedFloat(body)), 14, nil
	case tdmstype.String:
		s, n, err := c.str.DecodeString(body)
		if err != nil {
			return Value{}, 0, err
		}

		return StringValue(s), 4 + n, nil
	case tdmstype.Bool:
		if len(body) < 1 {
			return Value{}, 0, fmt.Errorf("%w: bool property", errs.ErrIo)
		}

		return BoolValue(c.scalar.Bool(body)), 5, nil
	case tdmstype.TimeStamp:
		if len(body) < 16 {
			return Value{}, 0, fmt.Errorf("%w: timestamp property", errs.ErrIo)
		}

		return TimestampValue(c.scalar.Timestamp(body)), 20, nil
	default:
		return Value{}, 0, fmt.Errorf("%w: property type code 0x%x", errs.ErrUnknownTypeCode, uint32(typeCode))
	}
}

// DecodeUnitValue reports whether typeCode is F32Unit/F64Unit and, if so,
// the base numeric type DecodeValue already stores the value under (F32
// or F64). Callers use this to detect when a decoded property needs a
// synthesized UnitStringPropertyName sibling, since the *Unit type codes
// carry only the bare float on the wire, never the unit text itself.
func DecodeUnitValue(typeCode tdmstype.DataType) (tdmstype.DataType, bool) {
	switch typeCode {
	case tdmstype.F32Unit:
		return tdmstype.F32, true
	case tdmstype.F64Unit:
		return tdmstype.F64, true
	default:
		return tdmstype.Void, false
	}
}

// UnitStringPropertyName is the synthesised property name attached to a
// channel or property when decoding an F32Unit/F64Unit value.
const UnitStringPropertyName = "unit_string"
