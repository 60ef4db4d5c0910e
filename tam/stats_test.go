package tam

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tumalloc/memutils"
)

func TestCalculateDetailedStatistics(t *testing.T) {
	heap := readyHeap(t, CreateOptions{})

	first := heap.Allocate(100)
	heap.Allocate(10)
	heap.Allocate(30)
	heap.Release(first)

	var stats memutils.DetailedStatistics
	stats.Clear()
	require.NoError(t, heap.CalculateDetailedStatistics(&stats))

	require.Equal(t, 3, stats.BlockCount)
	require.Equal(t, 2, stats.AllocationCount)
	require.Equal(t, 1, stats.UnusedRangeCount)
	require.Equal(t, heap.source.Len(), stats.HeapBytes)
	require.Equal(t, 40, stats.AllocationBytes)
	require.Equal(t, 104, stats.FreeBytes)
	require.Equal(t, 10, stats.AllocationSizeMin)
	require.Equal(t, 30, stats.AllocationSizeMax)
	require.Equal(t, stats.HeapBytes, stats.AllocationBytes+stats.FreeBytes+stats.OverheadBytes)
}

func TestValidateCatchesCountMismatch(t *testing.T) {
	heap := readyHeap(t, CreateOptions{})

	heap.Allocate(10)
	require.NoError(t, heap.Validate())

	heap.allocationCount++
	require.Error(t, heap.Validate())
}

func TestBuildStatsString(t *testing.T) {
	heap := readyHeap(t, CreateOptions{Flags: HeapCreateSplitOnly})

	first := heap.Allocate(100)
	heap.Allocate(10)
	heap.Release(first)

	type block struct {
		Offset  int
		Size    int
		Type    string
		Pointer int
	}

	var parsed struct {
		General struct {
			Flags           string
			FitStrategy     string
			LiveAllocations int
		}
		Total struct {
			BlockCount      int
			AllocationCount int
			HeapBytes       int
		}
		Heap *struct {
			TotalBytes int
			Blocks     []block
		}
	}

	require.NoError(t, json.Unmarshal([]byte(heap.BuildStatsString(false)), &parsed))
	require.Equal(t, "HeapCreateSplitOnly", parsed.General.Flags)
	require.Equal(t, "FitSplitOnly", parsed.General.FitStrategy)
	require.Equal(t, 1, parsed.General.LiveAllocations)
	require.Equal(t, 2, parsed.Total.BlockCount)
	require.Equal(t, 1, parsed.Total.AllocationCount)
	require.Equal(t, heap.source.Len(), parsed.Total.HeapBytes)
	require.Nil(t, parsed.Heap)

	require.NoError(t, json.Unmarshal([]byte(heap.BuildStatsString(true)), &parsed))
	require.NotNil(t, parsed.Heap)
	require.Equal(t, heap.source.Len(), parsed.Heap.TotalBytes)
	require.Equal(t, []block{
		{Offset: 0, Size: 104, Type: "FREE"},
		{Offset: 120, Size: 10, Type: "ALLOCATED", Pointer: 136},
	}, parsed.Heap.Blocks)
}
