package segment

import (
	"testing"

	"github.com/arloliu/gotdms/endian"
	"github.com/stretchr/testify/require"
)

func TestStringChunkRoundTrip(t *testing.T) {
	require := require.New(t)

	values := []string{"Hello", "World", "TDMS"}
	engine := endian.GetLittleEndianEngine()

	buf := EncodeStringChunk(values, engine)
	require.Equal([]byte{0, 0, 0, 0, 5, 0, 0, 0, 10, 0, 0, 0}, buf[:12])
	require.Equal("HelloWorldTDMS", string(buf[12:]))

	got, err := DecodeStringChunk(buf, len(values), engine)
	require.NoError(err)
	require.Equal(values, got)
}

func TestStringChunkEmptyStrings(t *testing.T) {
	require := require.New(t)

	values := []string{"", "a", ""}
	engine := endian.GetLittleEndianEngine()

	buf := EncodeStringChunk(values, engine)
	got, err := DecodeStringChunk(buf, len(values), engine)
	require.NoError(err)
	require.Equal(values, got)
}
