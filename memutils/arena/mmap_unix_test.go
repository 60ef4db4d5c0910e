//go:build linux || darwin

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tumalloc/memutils"
	"github.com/vkngwrapper/tumalloc/memutils/arena"
)

func TestMmapSourceGrow(t *testing.T) {
	source, err := arena.NewMmapSource(1 << 20)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, source.Close())
	}()

	require.GreaterOrEqual(t, source.Reserved(), 1<<20)
	require.Equal(t, 0, source.Len())

	prev, err := source.Grow(10)
	require.NoError(t, err)
	require.Equal(t, 0, prev)

	data := source.Bytes()
	require.Len(t, data, 10)
	for i := range data {
		data[i] = byte(i)
	}

	// Cross at least one page boundary
	prev, err = source.Grow(3 * 4096)
	require.NoError(t, err)
	require.Equal(t, 10, prev)

	grown := source.Bytes()
	require.Len(t, grown, 10+3*4096)
	require.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, grown[:10])

	// The region never moves, so the earlier view still aliases the heap
	grown[0] = 0xFF
	require.Equal(t, byte(0xFF), data[0])

	grown[len(grown)-1] = 0x7F
	require.Equal(t, byte(0x7F), source.Bytes()[len(grown)-1])
}

func TestMmapSourceExhaustion(t *testing.T) {
	source, err := arena.NewMmapSource(4096)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, source.Close())
	}()

	_, err = source.Grow(source.Reserved())
	require.NoError(t, err)

	_, err = source.Grow(1)
	require.ErrorIs(t, err, memutils.ErrOutOfMemory)
	require.Equal(t, source.Reserved(), source.Len())
}

func TestMmapSourceInvalidReservation(t *testing.T) {
	_, err := arena.NewMmapSource(0)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)
}

func TestMmapSourceClosed(t *testing.T) {
	source, err := arena.NewMmapSource(4096)
	require.NoError(t, err)
	require.NoError(t, source.Close())
	require.NoError(t, source.Close())

	_, err = source.Grow(1)
	require.Error(t, err)
}
