package propvalue

import (
	"testing"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/tdmstype"
	"github.com/stretchr/testify/require"
)

func TestValueRoundTrip(t *testing.T) {
	require := require.New(t)

	c := NewCodec(endian.GetLittleEndianEngine())

	values := []Value{
		I32Value(-7),
		U64Value(0xfeedface),
		F64Value(2.71828),
		StringValue("volts"),
		BoolValue(true),
		TimestampValue(tdmstype.Timestamp{Seconds: 3786835200, Fractions: 42}),
	}

	var buf []byte
	offsets := make([]int, len(values)+1)

	for i, v := range values {
		var err error
		buf, err = c.AppendValue(buf, v)
		require.NoError(err)
		offsets[i+1] = len(buf)
	}

	for i, want := range values {
		got, n, err := c.DecodeValue(buf[offsets[i]:])
		require.NoError(err)
		require.Equal(offsets[i+1]-offsets[i], n)
		require.Equal(want, got)
	}
}

func TestDecodeUnitValue(t *testing.T) {
	require := require.New(t)

	base, ok := DecodeUnitValue(tdmstype.F64Unit)
	require.True(ok)
	require.Equal(tdmstype.F64, base)

	_, ok = DecodeUnitValue(tdmstype.I32)
	require.False(ok)
}

func TestDecodeValueExtendedFloat(t *testing.T) {
	require := require.New(t)

	c := NewCodec(endian.GetLittleEndianEngine())

	buf := c.scalar.AppendU32(nil, uint32(tdmstype.ExtendedFloat))
	body := make([]byte, 10)
	c.scalar.PutU64(body[0:8], 1<<63) // explicit integer bit set, significand 1.0
	c.scalar.PutU16(body[8:10], 16383) // bias-16383 exponent 0, sign 0

	buf = append(buf, body...)

	got, n, err := c.DecodeValue(buf)
	require.NoError(err)
	require.Equal(14, n)
	require.Equal(tdmstype.F64, got.Type)
	require.InDelta(1.0, got.F64, 1e-9)
}

func TestAppendValueRefusesExtendedFloat(t *testing.T) {
	require := require.New(t)

	c := NewCodec(endian.GetLittleEndianEngine())

	_, err := c.AppendValue(nil, Value{Type: tdmstype.ExtendedFloat, F64: 1.0})
	require.Error(err)
}

func TestDecodeValueUnknownType(t *testing.T) {
	require := require.New(t)

	c := NewCodec(endian.GetLittleEndianEngine())

	buf := c.scalar.AppendU32(nil, 0xABCD1234)
	_, _, err := c.DecodeValue(buf)
	require.Error(err)
}
