package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tumalloc/memutils"
	"github.com/vkngwrapper/tumalloc/memutils/arena"
)

func TestSliceSourceGrow(t *testing.T) {
	source := arena.NewSliceSource(0)
	require.Equal(t, 0, source.Len())

	prev, err := source.Grow(100)
	require.NoError(t, err)
	require.Equal(t, 0, prev)
	require.Equal(t, 100, source.Len())
	require.Len(t, source.Bytes(), 100)

	source.Bytes()[99] = 0xAB

	prev, err = source.Grow(50)
	require.NoError(t, err)
	require.Equal(t, 100, prev)
	require.Equal(t, 150, source.Len())

	// Existing contents survive growth, new bytes are zeroed
	require.Equal(t, byte(0xAB), source.Bytes()[99])
	require.Equal(t, make([]byte, 50), source.Bytes()[100:])
}

func TestSliceSourceLimit(t *testing.T) {
	source := arena.NewSliceSource(128)

	_, err := source.Grow(100)
	require.NoError(t, err)

	_, err = source.Grow(29)
	require.ErrorIs(t, err, memutils.ErrOutOfMemory)
	require.Equal(t, 100, source.Len())

	prev, err := source.Grow(28)
	require.NoError(t, err)
	require.Equal(t, 100, prev)
	require.Equal(t, 128, source.Len())
}

func TestSliceSourceNegativeGrow(t *testing.T) {
	source := arena.NewSliceSource(0)

	_, err := source.Grow(-1)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)
	require.Equal(t, 0, source.Len())
}

func TestSliceSourceZeroGrow(t *testing.T) {
	source := arena.NewSliceSource(0)

	_, err := source.Grow(10)
	require.NoError(t, err)

	prev, err := source.Grow(0)
	require.NoError(t, err)
	require.Equal(t, 10, prev)
	require.Equal(t, 10, source.Len())
}
