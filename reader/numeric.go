package reader

import (
	"fmt"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/internal/pool"
	"github.com/arloliu/gotdms/tdmstype"
)

// Numeric lists the fixed-width scalar types ReadNumeric/ReadNumericRange
// can decode directly.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
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

func decodeScalar[T Numeric](s codec.Scalar, buf []byte) T {
	var zero T

	switch any(zero).(type) {
	case int8:
		return any(s.I8(buf)).(T) //nolint:forcetypeassert
	case int16:
		return any(s.I16(buf)).(T) //nolint:forcetypeassert
	case int32:
		return any(s.I32(buf)).(T) //nolint:forcetypeassert
	case int64:
		return any(s.I64(buf)).(T) //nolint:forcetypeassert
	case uint8:
		return any(s.U8(buf)).(T) //nolint:forcetypeassert
	case uint16:
		return any(s.U16(buf)).(T) //nolint:forcetypeassert
	case uint32:
		return any(s.U32(buf)).(T) //nolint:forcetypeassert
	case uint64:
		return any(s.U64(buf)).(T) //nolint:forcetypeassert
	case float32:
		return any(s.F32(buf)).(T) //nolint:forcetypeassert
	case float64:
		return any(s.F64(buf)).(T) //nolint:forcetypeassert
	default:
		return zero
	}
}

// ReadNumeric decodes every value of a fixed-width numeric channel.
func ReadNumeric[T Numeric](r *Reader, group, channel string) ([]T, error) {
	path, refs, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return nil, err
	}

	want := numericDataType[T]()
	if info.DataType != want {
		return nil, fmt.Errorf("%w: %s is %s, not %s", errs.ErrTypeMismatch, path, info.DataType, want)
	}

	out := make([]T, 0, channelValueCount(refs))

	for _, ref := range refs {
		s := codec.NewScalar(ref.Engine)

		buf, err := r.readStrided(ref)
		if err != nil {
			return nil, err
		}

		scratch, release := pool.GetSlice[T](ref.Count)

		for i := range ref.Count {
			scratch[i] = decodeScalar[T](s, buf[i*ref.ElementSize:(i+1)*ref.ElementSize])
		}

		out = append(out, scratch...)
		release()
	}

	return out, nil
}

// ReadNumericRange decodes the half-open value range [start, end) of a
// fixed-width numeric channel, walking only the chunks that overlap it.
func ReadNumericRange[T Numeric](r *Reader, group, channel string, start, end int) ([]T, error) {
	path, refs, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return nil, err
	}

	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: invalid range [%d, %d)", errs.ErrLengthOverflow, start, end)
	}

	want := numericDataType[T]()
	if info.DataType != want {
		return nil, fmt.Errorf("%w: %s is %s, not %s", errs.ErrTypeMismatch, path, info.DataType, want)
	}

	out := make([]T, 0, end-start)

	cursor := 0

	for _, ref := range refs {
		chunkStart := cursor
		chunkEnd := cursor + ref.Count
		cursor = chunkEnd

		if chunkEnd <= start || chunkStart >= end {
			continue
		}

		lo := max(start, chunkStart)
		hi := min(end, chunkEnd)

		s := codec.NewScalar(ref.Engine)

		buf, err := r.readStrided(ref)
		if err != nil {
			return nil, err
		}

		n := hi - lo
		scratch, release := pool.GetSlice[T](n)

		for i := lo - chunkStart; i < hi-chunkStart; i++ {
			scratch[i-(lo-chunkStart)] = decodeScalar[T](s, buf[i*ref.ElementSize:(i+1)*ref.ElementSize])
		}

		out = append(out, scratch...)
		release()

		if cursor >= end {
			break
		}
	}

	return out, nil
}
