// Package tdmstype defines the shared vocabulary of the TDMS 2.0 format:
// data type codes, the table-of-contents flag bits, and the 2⁻⁶⁴-fraction
// timestamp representation. Every other package builds on these.
package tdmstype

// DataType identifies the binary layout of a channel's raw values or a
// property's value, per the TDMS type-code table.
type DataType uint32

const (
	Void    DataType = 0
	I8      DataType = 1
	I16     DataType = 2
	I32     DataType = 3
	I64     DataType = 4
	U8      DataType = 5
	U16     DataType = 6
	U32     DataType = 7
	U64     DataType = 8
	F32     DataType = 9
	F64     DataType = 10
	// ExtendedFloat is the 80-bit extended-precision float. Decoding is
	// best-effort to F64; encoding is unsupported (spec Non-goal).
	ExtendedFloat DataType = 0x0B
	F32Unit       DataType = 0x19
	F64Unit       DataType = 0x1A
	String        DataType = 0x20
	Bool          DataType = 0x21
	TimeStamp     DataType = 0x44
	ComplexF32    DataType = 0x0008000C
	ComplexF64    DataType = 0x0010000D
	DAQmxRaw      DataType = 0xFFFFFFFF
)

// FixedSize returns the on-disk size in bytes of one value of this type,
// or (0, false) for variable-width types (String, DAQmxRaw).
func (d DataType) FixedSize() (int, bool) {
	switch d {
	case Void:
		return 0, true
	case I8, U8, Bool:
		return 1, true
	case I16, U16:
		return 2, true
	case I32, U32, F32, F32Unit:
		return 4, true
	case I64, U64, F64, F64Unit, ComplexF32:
		return 8, true
	case TimeStamp, ComplexF64:
		return 16, true
	case ExtendedFloat:
		return 10, true
	case String, DAQmxRaw:
		return 0, false
	default:
		return 0, false
	}
}

// IsNumeric reports whether this type is a fixed-width integer or float.
func (d DataType) IsNumeric() bool {
	switch d {
	case I8, I16, I32, I64, U8, U16, U32, U64, F32, F64, F32Unit, F64Unit:
		return true
	default:
		return false
	}
}

// IsVariableWidth reports whether values of this type vary in byte length
// (currently only String).
func (d DataType) IsVariableWidth() bool {
	return d == String
}

// String returns a short human-readable name, used in error messages.
func (d DataType) String() string {
	switch d {
	case Void:
		return "void"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case ExtendedFloat:
		return "extended_float"
	case F32Unit:
		return "f32_unit"
	case F64Unit:
		return "f64_unit"
	case String:
		return "string"
	case Bool:
		return "bool"
	case TimeStamp:
		return "timestamp"
	case ComplexF32:
		return "complex_f32"
	case ComplexF64:
		return "complex_f64"
	case DAQmxRaw:
		return "daqmx_raw"
	default:
		return "unknown"
	}
}

// DataTypeFromDAQmx maps a DAQmx internal raw scaler type code to the
// closest TDMS DataType. Used only to label opaque DAQmx blobs for
// diagnostics; never to reinterpret or rewrite their bytes.
func DataTypeFromDAQmx(code uint32) (DataType, bool) {
	switch code {
	case 0:
		return U8, true
	case 1:
		return I8, true
	case 2:
		return U16, true
	case 3:
		return I16, true
	case 4:
		return U32, true
	case 5:
		return I32, true
	case 6:
		return U64, true
	case 7:
		return I64, true
	case 8:
		return F32, true
	case 9:
		return F64, true
	default:
		return Void, false
	}
}
