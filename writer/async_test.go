package writer

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/segment"
	"github.com/arloliu/gotdms/tdmstype"
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

func TestAsyncWriterBasicRoundTrip(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "async.tdms")

	aw, err := CreateAsync(path, 8)
	require.NoError(err)

	require.NoError(aw.SetChannelProperty("G", "C", "unit_string", propvalue.StringValue("V")))
	require.NoError(WriteNumericAsync(aw, "G", "C", []float64{1.0, 2.0, 3.0}))
	require.NoError(aw.Flush())
	require.NoError(aw.Close())

	segs := readAllSegments(t, path)
	require.Len(segs, 1)
	require.True(segs[0].HasMeta)
}

func TestAsyncWriterConcurrentSubmitAcceptsEveryWrite(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "async_concurrent.tdms")

	aw, err := CreateAsync(path, 16)
	require.NoError(err)

	var wg sync.WaitGroup

	errsCh := make(chan error, 5)

	for i := range 5 {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			errsCh <- WriteNumericAsync(aw, "G", "C", []int32{int32(n)}) //nolint:gosec
		}(i)
	}

	wg.Wait()
	close(errsCh)

	for err := range errsCh {
		require.NoError(err)
	}

	require.NoError(aw.Close())

	segs := readAllSegments(t, path)
	require.Len(segs, 1)
	require.EqualValues(20, segs[0].RawPayloadLen)
}

func TestAsyncWriterClosedRejectsFurtherSubmits(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "async_closed.tdms")

	aw, err := CreateAsync(path, 4)
	require.NoError(err)
	require.NoError(aw.Close())

	err = aw.WriteBool("G", "C", []bool{true})
	require.ErrorIs(err, errs.ErrWriterClosed)
}

func TestAsyncWriterRawChunkCarriesDAQmxVerbatim(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "async_daqmx.tdms")

	aw, err := CreateAsync(path, 4)
	require.NoError(err)

	rec := segment.RawIndexRecord{
		Kind:           segment.IndexDAQmx,
		DataType:       tdmstype.I32,
		NumberOfValues: 2,
		DAQmxRaw:       buildDaqmxRawIndex(uint32(tdmstype.I32), 8, 4),
	}
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	require.NoError(aw.WriteRawChunk("G", "C", rec, raw))
	require.NoError(aw.Close())

	segs := readAllSegments(t, path)
	require.Len(segs, 1)
	require.EqualValues(8, segs[0].RawPayloadLen)

	found := false

	for _, obj := range segs[0].Meta.Objects {
		if obj.Path == "/'G'/'C'" {
			require.Equal(segment.IndexDAQmx, obj.RawIndex.Kind)
			require.Equal(rec.DAQmxRaw, obj.RawIndex.DAQmxRaw)

			found = true
		}
	}

	require.True(found)
}
