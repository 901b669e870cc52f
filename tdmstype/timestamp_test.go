package tdmstype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	require := require.New(t)

	in := time.Date(2024, 3, 15, 12, 30, 0, 500_000_000, time.UTC)
	ts := FromTime(in)
	out := ts.Time()

	require.WithinDuration(in, out, time.Millisecond)
}

func TestTimestampEpochOffset(t *testing.T) {
	require := require.New(t)

	unixEpoch := time.Unix(0, 0).UTC()
	ts := FromTime(unixEpoch)

	require.Equal(epochOffsetSeconds, ts.Seconds)
	require.Equal(uint64(0), ts.Fractions)
}

func TestDataTypeFixedSize(t *testing.T) {
	require := require.New(t)

	size, ok := F64.FixedSize()
	require.True(ok)
	require.Equal(8, size)

	_, ok = String.FixedSize()
	require.False(ok)
}

func TestDataTypeFromDAQmx(t *testing.T) {
	require := require.New(t)

	dt, ok := DataTypeFromDAQmx(9)
	require.True(ok)
	require.Equal(F64, dt)

	_, ok = DataTypeFromDAQmx(0xFF)
	require.False(ok)
}
