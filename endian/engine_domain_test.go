package endian_test

import (
	"testing"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/tdmstype"
	"github.com/stretchr/testify/require"
)

// These exercise the two engines the way the rest of gotdms actually uses
// them: as the byte-order choice behind codec.Scalar, selected per segment
// by the TocBigEndian flag rather than by host endianness.

func TestEnginesDriveScalarLeadInTag(t *testing.T) {
	require := require.New(t)

	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		s := codec.NewScalar(engine)

		buf := s.AppendU32(nil, 0x54445366) // the bytes of "TDSf" read as a big-endian u32
		require.Len(buf, 4)

		got := s.U32(buf)
		require.Equal(uint32(0x54445366), got)
	}
}

func TestEnginesProduceDistinctByteOrderForSegmentOffsets(t *testing.T) {
	require := require.New(t)

	little := codec.NewScalar(endian.GetLittleEndianEngine())
	big := codec.NewScalar(endian.GetBigEndianEngine())

	var nextSegOffset uint64 = 0x1122334455667788

	lb := little.AppendU64(nil, nextSegOffset)
	bb := big.AppendU64(nil, nextSegOffset)

	require.NotEqual(lb, bb)
	require.Equal(nextSegOffset, little.U64(lb))
	require.Equal(nextSegOffset, big.U64(bb))
}

func TestEnginesRoundTripTimestampBothWays(t *testing.T) {
	require := require.New(t)

	ts := tdmstype.Timestamp{Seconds: 3_661_000_000, Fractions: 1 << 63}

	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		s := codec.NewScalar(engine)

		buf := make([]byte, 16)
		s.PutTimestamp(buf, ts)

		require.Equal(ts, s.Timestamp(buf))
	}
}

func TestCompareNativeEndianMatchesExactlyOneEngine(t *testing.T) {
	require := require.New(t)

	little := endian.CompareNativeEndian(endian.GetLittleEndianEngine())
	big := endian.CompareNativeEndian(endian.GetBigEndianEngine())

	require.NotEqual(little, big, "exactly one engine must match host native order")
}
