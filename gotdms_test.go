package gotdms

import (
	"path/filepath"
	"testing"

	"github.com/arloliu/gotdms/reader"
	"github.com/arloliu/gotdms/writer"
	"github.com/stretchr/testify/require"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "round_trip.tdms")

	w, err := Create(path)
	require.NoError(err)
	require.NoError(writer.WriteNumeric(w, "Group1", "Voltage", []float64{1.1, 2.2, 3.3}))
	require.NoError(w.Close())

	r, err := Open(path)
	require.NoError(err)
	defer r.Close()

	got, err := reader.ReadNumeric[float64](r, "Group1", "Voltage")
	require.NoError(err)
	require.Equal([]float64{1.1, 2.2, 3.3}, got)
}

func TestDefragmentFacade(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "fragmented.tdms")
	dst := filepath.Join(dir, "defragmented.tdms")

	w, err := Create(src)
	require.NoError(err)
	require.NoError(writer.WriteNumeric(w, "G", "C", []int32{1, 2}))
	require.NoError(w.Flush())
	require.NoError(writer.WriteNumeric(w, "G", "C", []int32{3, 4}))
	require.NoError(w.Close())

	require.NoError(Defragment(src, dst))

	r, err := Open(dst)
	require.NoError(err)
	defer r.Close()

	require.Equal(1, r.Segments())

	got, err := reader.ReadNumeric[int32](r, "G", "C")
	require.NoError(err)
	require.Equal([]int32{1, 2, 3, 4}, got)
}
