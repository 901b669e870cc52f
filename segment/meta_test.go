package segment

import (
	"testing"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/tdmstype"
	"github.com/stretchr/testify/require"
)

func TestMetaRoundTrip(t *testing.T) {
	require := require.New(t)

	m := Meta{
		Objects: []ObjectRecord{
			{
				Path:     "/'G'",
				RawIndex: RawIndexRecord{Kind: IndexAbsent},
				Properties: []propvalue.Property{
					{Name: "purpose", Value: propvalue.StringValue("testing")},
				},
			},
			{
				Path:     "/'G'/'C'",
				RawIndex: NewFullIndex(tdmstype.I32, 3),
				Properties: []propvalue.Property{
					{Name: "unit_string", Value: propvalue.StringValue("V")},
					{Name: "scale", Value: propvalue.F64Value(2.5)},
				},
			},
		},
	}

	engine := endian.GetLittleEndianEngine()

	buf, err := EncodeMeta(m, engine)
	require.NoError(err)

	got, n, err := DecodeMeta(buf, engine)
	require.NoError(err)
	require.Equal(len(buf), n)
	require.Equal(m, got)
}

func TestMetaRoundTripEmpty(t *testing.T) {
	require := require.New(t)

	engine := endian.GetLittleEndianEngine()

	buf, err := EncodeMeta(Meta{}, engine)
	require.NoError(err)

	got, n, err := DecodeMeta(buf, engine)
	require.NoError(err)
	require.Equal(len(buf), n)
	require.Empty(got.Objects)
}
