package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSliceSizedExactly(t *testing.T) {
	require := require.New(t)

	s, release := GetSlice[int64](5)
	require.Len(s, 5)
	release()
}

func TestGetSliceReusesBackingArray(t *testing.T) {
	require := require.New(t)

	s, release := GetSlice[float64](4)
	s[0] = 42
	ptr := &s[0]
	release()

	s2, release2 := GetSlice[float64](4)
	defer release2()

	require.Same(ptr, &s2[0], "pool should hand back the same backing array")
}

func TestGetSliceGrowsPastCapacity(t *testing.T) {
	require := require.New(t)

	s, release := GetSlice[string](2)
	release()

	s2, release2 := GetSlice[string](16)
	defer release2()

	require.Len(s2, 16)
	require.NotEqual(len(s), len(s2))
}

func TestGetSliceSeparatesPoolsByType(t *testing.T) {
	require := require.New(t)

	ints, releaseInts := GetSlice[int32](3)
	floats, releaseFloats := GetSlice[float32](3)
	defer releaseInts()
	defer releaseFloats()

	require.Len(ints, 3)
	require.Len(floats, 3)
}
