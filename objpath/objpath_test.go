package objpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatRoot(t *testing.T) {
	require.Equal(t, "/", Format(Root))
}

func TestFormatGroup(t *testing.T) {
	require.Equal(t, "/'Measured Data'", Format(NewGroup("Measured Data")))
}

func TestFormatChannel(t *testing.T) {
	require.Equal(t, "/'G'/'C'", Format(NewChannel("G", "C")))
}

func TestFormatEscapesQuotes(t *testing.T) {
	require.Equal(t, "/'It''s a group'", Format(NewGroup("It's a group")))
}

func TestParseRoundTrip(t *testing.T) {
	require := require.New(t)

	cases := []Path{
		Root,
		NewGroup("Measured Data"),
		NewGroup("It's a group"),
		NewChannel("G", "C"),
		NewChannel("It's", "a ''channel''"),
	}

	for _, p := range cases {
		formatted := Format(p)
		got, err := Parse(formatted)
		require.NoError(err)
		require.Equal(p, got)
	}
}

func TestParseMalformed(t *testing.T) {
	require := require.New(t)

	_, err := Parse("/'unterminated")
	require.Error(err)

	_, err = Parse("not-a-path")
	require.Error(err)
}
