package defrag

import (
	"path/filepath"
	"testing"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/reader"
	"github.com/arloliu/gotdms/segment"
	"github.com/arloliu/gotdms/tdmstype"
	"github.com/arloliu/gotdms/writer"
	"github.com/stretchr/testify/require"
)

// buildDaqmxRawIndex hand-encodes a fully self-describing DAQmx opaque
// raw-index blob (marker + dimension + chunk_size + scaler_count + one
// 20-byte scaler + width_count + widths), matching the on-disk layout
// decodeDAQmxIndex (segment/rawindex.go) actually parses.
func buildDaqmxRawIndex(dataTypeCode uint32, chunkSize uint64, width uint32) []byte {
	s := codec.NewScalar(endian.GetLittleEndianEngine())

	raw := s.AppendU32(nil, segment.DAQmxFormatChangingScaler)
	raw = s.AppendU32(raw, 1)         // dimension
	raw = s.AppendU64(raw, chunkSize) // chunk size
	raw = s.AppendU32(raw, 1)         // scaler count

	raw = s.AppendU32(raw, dataTypeCode) // scaler data type code
	raw = s.AppendU32(raw, 0)            // raw buffer index
	raw = s.AppendU32(raw, 0)            // raw byte offset
	raw = s.AppendU32(raw, 0)            // sample format bitmap
	raw = s.AppendU32(raw, 0)            // scale id

	raw = s.AppendU32(raw, 1)     // width count
	raw = s.AppendU32(raw, width) // width

	return raw
}

func TestDefragmentCoalescesMultipleSegments(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "fragmented.tdms")
	dst := filepath.Join(dir, "defragmented.tdms")

	w, err := writer.Create(src)
	require.NoError(err)
	require.NoError(w.SetFileProperty("title", propvalue.StringValue("demo")))
	require.NoError(w.SetChannelProperty("G", "C", "unit_string", propvalue.StringValue("volts")))
	require.NoError(writer.WriteNumeric(w, "G", "C", []int32{1, 2}))
	require.NoError(w.Flush())
	require.NoError(writer.WriteNumeric(w, "G", "C", []int32{3, 4}))
	require.NoError(writer.WriteNumeric(w, "G", "D", []float64{9.5}))
	require.NoError(w.Close())

	require.NoError(Defragment(src, dst))

	r, err := reader.Open(dst)
	require.NoError(err)
	defer r.Close()

	require.Equal(1, r.Segments())

	c, err := reader.ReadNumeric[int32](r, "G", "C")
	require.NoError(err)
	require.Equal([]int32{1, 2, 3, 4}, c)

	d, err := reader.ReadNumeric[float64](r, "G", "D")
	require.NoError(err)
	require.Equal([]float64{9.5}, d)

	title, ok := r.FileProperty("title")
	require.True(ok)
	require.Equal("demo", title.Str)

	unit, ok, err := r.ChannelProperty("G", "C", "unit_string")
	require.NoError(err)
	require.True(ok)
	require.Equal("volts", unit.Str)
}

func TestDefragmentPreservesDaqmxVerbatim(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "daqmx_src.tdms")
	dst := filepath.Join(dir, "daqmx_dst.tdms")

	w, err := writer.Create(src)
	require.NoError(err)

	rec := segment.RawIndexRecord{
		Kind:           segment.IndexDAQmx,
		DataType:       tdmstype.I32,
		NumberOfValues: 2,
		DAQmxRaw:       buildDaqmxRawIndex(uint32(tdmstype.I32), 8, 4),
	}
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	require.NoError(w.WriteRawChunk("G", "C", rec, raw))
	require.NoError(w.Close())

	require.NoError(Defragment(src, dst))

	r, err := reader.Open(dst)
	require.NoError(err)
	defer r.Close()

	gotRec, gotRaw, err := r.RawChunk("G", "C")
	require.NoError(err)
	require.Equal(segment.IndexDAQmx, gotRec.Kind)
	require.Equal(rec.DAQmxRaw, gotRec.DAQmxRaw)
	require.Equal(raw, gotRaw)
}

func TestDefragmentPreservesBigEndian(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "be_src.tdms")
	dst := filepath.Join(dir, "be_dst.tdms")

	w, err := writer.Create(src, writer.WithBigEndian())
	require.NoError(err)
	require.NoError(writer.WriteNumeric(w, "G", "C", []float32{1.5, -2.5}))
	require.NoError(w.Close())

	require.NoError(Defragment(src, dst))

	r, err := reader.Open(dst)
	require.NoError(err)
	defer r.Close()

	got, err := reader.ReadNumeric[float32](r, "G", "C")
	require.NoError(err)
	require.Equal([]float32{1.5, -2.5}, got)
}

func TestDefragmentStringsAndBool(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "mixed_src.tdms")
	dst := filepath.Join(dir, "mixed_dst.tdms")

	w, err := writer.Create(src)
	require.NoError(err)
	require.NoError(w.WriteBool("G", "Flags", []bool{true, false}))
	require.NoError(w.WriteStrings("G", "Names", []string{"a", "bb", "ccc"}))
	require.NoError(w.Close())

	require.NoError(Defragment(src, dst))

	r, err := reader.Open(dst)
	require.NoError(err)
	defer r.Close()

	bools, err := r.ReadBool("G", "Flags")
	require.NoError(err)
	require.Equal([]bool{true, false}, bools)

	strs, err := r.ReadStrings("G", "Names")
	require.NoError(err)
	require.Equal([]string{"a", "bb", "ccc"}, strs)
}
