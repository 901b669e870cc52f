package writer

import (
	"fmt"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/tdmstype"
)

// Numeric is the set of Go types that map directly onto one of the TDMS
// fixed-width numeric data types.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// WriteNumeric stages values as a raw chunk for (group, channel), inferring
// the TDMS data type from T. Writer methods cannot themselves carry a type
// parameter, so this is a free function, matching the package's other
// generic helpers (model.Ordered).
func WriteNumeric[T Numeric](w *Writer, group, channel string, values []T) error {
	if len(values) == 0 {
		return nil
	}

	dt := numericDataType[T]()
	if dt == tdmstype.Void {
		return fmt.Errorf("%w: unsupported numeric type for %s/%s", errs.ErrTypeMismatch, group, channel)
	}

	s := codec.NewScalar(w.engine)

	size, _ := dt.FixedSize()
	buf := make([]byte, 0, len(values)*size)
	tmp := make([]byte, size)

	for _, v := range values {
		buf = appendScalar(s, buf, tmp, v)
	}

	return w.stageBytes(group, channel, dt, len(values), buf)
}

func numericDataType[T Numeric]() tdmstype.DataType {
	var zero T

	switch any(zero).(type) {
	case int8:
		return tdmstype.I8
	case int16:
		return tdmstype.I16
	case int32:
		return tdmstype.I32
	case int64:
		return tdmstype.I64
	case uint8:
		return tdmstype.U8
	case uint16:
		return tdmstype.U16
	case uint32:
		return tdmstype.U32
	case uint64:
		return tdmstype.U64
	case float32:
		return tdmstype.F32
	case float64:
		return tdmstype.F64
	default:
		return tdmstype.Void
	}
}

func appendScalar[T Numeric](s codec.Scalar, buf, tmp []byte, v T) []byte {
	switch x := any(v).(type) {
	case int8:
		return append(buf, uint8(x)) //nolint:gosec
	case int16:
		s.PutI16(tmp, x)
		return append(buf, tmp...)
	case int32:
		s.PutI32(tmp, x)
		return append(buf, tmp...)
	case int64:
		s.PutI64(tmp, x)
		return append(buf, tmp...)
	case uint8:
		return append(buf, x)
	case uint16:
		s.PutU16(tmp, x)
		return append(buf, tmp...)
	case uint32:
		s.PutU32(tmp, x)
		return append(buf, tmp...)
	case uint64:
		s.PutU64(tmp, x)
		return append(buf, tmp...)
	case float32:
		s.PutF32(tmp, x)
		return append(buf, tmp...)
	case float64:
		s.PutF64(tmp, x)
		return append(buf, tmp...)
	default:
		return buf
	}
}
