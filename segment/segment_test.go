package segment

import (
	"testing"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/tdmstype"
	"github.com/stretchr/testify/require"
)

func buildMinimalSegment(t *testing.T) []byte {
	t.Helper()

	m := Meta{Objects: []ObjectRecord{
		{
			Path:     "/'G'/'C'",
			RawIndex: NewFullIndex(tdmstype.F64, 3),
		},
	}}

	metaBytes, err := EncodeMeta(m, endian.GetLittleEndianEngine())
	require.NoError(t, err)

	rawBytes, err := EncodeRawPayload([]RawChannelData{
		{ElementSize: 8, Count: 3, Bytes: make([]byte, 24)},
	}, false)
	require.NoError(t, err)

	toc := tdmstype.TocMetaData | tdmstype.TocRawData | tdmstype.TocNewObjList

	return Build(TagData, toc, metaBytes, rawBytes)
}

func TestBuildParseRoundTrip(t *testing.T) {
	require := require.New(t)

	buf := buildMinimalSegment(t)

	d, err := Parse(buf, 0, int64(len(buf)))
	require.NoError(err)
	require.True(d.HasMeta)
	require.Len(d.Meta.Objects, 1)
	require.Equal("/'G'/'C'", d.Meta.Objects[0].Path)
	require.EqualValues(len(buf)-24, d.RawPayloadStart)
	require.EqualValues(24, d.RawPayloadLen)
}

func TestParseTruncatedTail(t *testing.T) {
	require := require.New(t)

	buf := buildMinimalSegment(t)

	// Simulate a crash mid-segment: next_seg_offset becomes the
	// incomplete marker and the raw payload is cut short.
	h, err := DecodeHeader(buf)
	require.NoError(err)

	h.NextSegOffset = IncompleteMarker
	h.Encode(buf)

	truncated := buf[:len(buf)-8] // drop the last whole value's worth of bytes

	d, err := Parse(truncated, 0, int64(len(truncated)))
	require.NoError(err)
	require.True(d.Header.Incomplete())
	require.EqualValues(int64(len(truncated))-d.RawPayloadStart, d.RawPayloadLen)
}

func TestMetaRoundTripWithUnitProperty(t *testing.T) {
	require := require.New(t)

	m := Meta{Objects: []ObjectRecord{
		{
			Path:     "/'G'/'C'",
			RawIndex: RawIndexRecord{Kind: IndexAbsent},
			Properties: []propvalue.Property{
				{Name: propvalue.UnitStringPropertyName, Value: propvalue.StringValue("Pa")},
			},
		},
	}}

	buf, err := EncodeMeta(m, endian.GetBigEndianEngine())
	require.NoError(err)

	got, _, err := DecodeMeta(buf, endian.GetBigEndianEngine())
	require.NoError(err)
	require.Equal(m, got)
}

// buildUnitPropertyMeta hand-encodes a one-object, one-property meta-data
// region carrying a raw F32Unit/F64Unit-coded property value, the way an
// external TDMS writer would, without a sibling unit_string property.
func buildUnitPropertyMeta(t *testing.T, typeCode tdmstype.DataType, value float64) []byte {
	t.Helper()

	engine := endian.GetLittleEndianEngine()
	s := codec.NewScalar(engine)
	str := codec.NewStringCodec(engine)

	buf := s.AppendU32(nil, 1) // object count
	buf = str.AppendString(buf, "/'G'/'C'")
	buf = RawIndexRecord{Kind: IndexAbsent}.Append(buf, s)
	buf = s.AppendU32(buf, 1) // property count
	buf = str.AppendString(buf, "unit")
	buf = s.AppendU32(buf, uint32(typeCode))

	switch typeCode {
	case tdmstype.F32Unit:
		tmp := make([]byte, 4)
		s.PutF32(tmp, float32(value))
		buf = append(buf, tmp...)
	case tdmstype.F64Unit:
		tmp := make([]byte, 8)
		s.PutF64(tmp, value)
		buf = append(buf, tmp...)
	default:
		t.Fatalf("unexpected type code %v", typeCode)
	}

	return buf
}

func TestDecodeMetaSynthesizesUnitStringForF32Unit(t *testing.T) {
	require := require.New(t)

	buf := buildUnitPropertyMeta(t, tdmstype.F32Unit, 12.5)

	got, _, err := DecodeMeta(buf, endian.GetLittleEndianEngine())
	require.NoError(err)
	require.Len(got.Objects, 1)

	props := got.Objects[0].Properties
	require.Len(props, 2)

	require.Equal("unit", props[0].Name)
	require.Equal(tdmstype.F32, props[0].Value.Type)
	require.InDelta(float32(12.5), props[0].Value.F32, 0)

	require.Equal(propvalue.UnitStringPropertyName, props[1].Name)
	require.Equal("", props[1].Value.Str)
}

func TestDecodeMetaDoesNotDuplicateExistingUnitString(t *testing.T) {
	require := require.New(t)

	engine := endian.GetLittleEndianEngine()
	s := codec.NewScalar(engine)
	str := codec.NewStringCodec(engine)

	buf := s.AppendU32(nil, 1)
	buf = str.AppendString(buf, "/'G'/'C'")
	buf = RawIndexRecord{Kind: IndexAbsent}.Append(buf, s)
	buf = s.AppendU32(buf, 2)
	buf = str.AppendString(buf, "unit")
	buf = s.AppendU32(buf, uint32(tdmstype.F64Unit))
	tmp := make([]byte, 8)
	s.PutF64(tmp, 9.5)
	buf = append(buf, tmp...)
	buf = str.AppendString(buf, propvalue.UnitStringPropertyName)
	buf = s.AppendU32(buf, uint32(tdmstype.String))
	buf = str.AppendString(buf, "Pa")

	got, _, err := DecodeMeta(buf, engine)
	require.NoError(err)
	require.Len(got.Objects, 1)

	props := got.Objects[0].Properties
	require.Len(props, 2)
	require.Equal(propvalue.UnitStringPropertyName, props[1].Name)
	require.Equal("Pa", props[1].Value.Str)
}
