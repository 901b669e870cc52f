package segment

import (
	"testing"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/tdmstype"
	"github.com/stretchr/testify/require"
)

func TestRawIndexRoundTripAbsentAndSamePrevious(t *testing.T) {
	require := require.New(t)

	s := codec.NewScalar(endian.GetLittleEndianEngine())

	for _, rec := range []RawIndexRecord{{Kind: IndexAbsent}, {Kind: IndexSameAsPrevious}} {
		buf := rec.Append(nil, s)
		got, n, err := DecodeRawIndex(buf, s)
		require.NoError(err)
		require.Equal(4, n)
		require.Equal(rec.Kind, got.Kind)
	}
}

func TestRawIndexRoundTripFullFixedWidth(t *testing.T) {
	require := require.New(t)

	s := codec.NewScalar(endian.GetLittleEndianEngine())

	rec := NewFullIndex(tdmstype.F64, 3)
	buf := rec.Append(nil, s)

	got, n, err := DecodeRawIndex(buf, s)
	require.NoError(err)
	require.Equal(len(buf), n)
	require.Equal(IndexFull, got.Kind)
	require.Equal(tdmstype.F64, got.DataType)
	require.Equal(uint64(3), got.NumberOfValues)
	require.Equal(uint64(24), got.ByteSize)
}

func TestRawIndexRoundTripVariableWidth(t *testing.T) {
	require := require.New(t)

	s := codec.NewScalar(endian.GetLittleEndianEngine())

	rec := NewVariableIndex(tdmstype.String, 3, 14)
	buf := rec.Append(nil, s)

	got, n, err := DecodeRawIndex(buf, s)
	require.NoError(err)
	require.Equal(len(buf), n)
	require.Equal(uint64(14), got.ByteSize)
}

func TestRawIndexSameShape(t *testing.T) {
	require := require.New(t)

	a := NewFullIndex(tdmstype.I32, 10)
	b := NewFullIndex(tdmstype.I32, 10)
	c := NewFullIndex(tdmstype.I32, 11)

	require.True(a.SameShape(b))
	require.False(a.SameShape(c))
}

func TestRawIndexDAQmxOpaqueRoundTrip(t *testing.T) {
	require := require.New(t)

	s := codec.NewScalar(endian.GetLittleEndianEngine())

	var raw []byte
	raw = s.AppendU32(raw, DAQmxFormatChangingScaler)
	raw = s.AppendU32(raw, 1)  // dimension
	raw = s.AppendU64(raw, 8) // chunk size
	raw = s.AppendU32(raw, 1) // scaler count

	// one 20-byte scaler record
	raw = s.AppendU32(raw, 9) // data type code (F64)
	raw = s.AppendU32(raw, 0) // raw buffer index
	raw = s.AppendU32(raw, 0) // raw byte offset
	raw = s.AppendU32(raw, 0) // sample format bitmap
	raw = s.AppendU32(raw, 0) // scale id

	raw = s.AppendU32(raw, 1) // width count
	raw = s.AppendU32(raw, 8) // width

	rec, n, err := DecodeRawIndex(raw, s)
	require.NoError(err)
	require.Equal(IndexDAQmx, rec.Kind)
	require.Equal(len(raw), n)
	require.Equal(raw, rec.DAQmxRaw)

	// Re-encoding an opaque record must reproduce the exact bytes.
	out := rec.Append(nil, s)
	require.Equal(raw, out)
}
