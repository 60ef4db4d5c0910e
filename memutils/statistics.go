package memutils

import "math"

// Statistics sums up the physical layout of a heap
type Statistics struct {
	BlockCount      int
	AllocationCount int
	HeapBytes       int
	AllocationBytes int
	FreeBytes       int
	OverheadBytes   int
}

func (s *Statistics) Clear() {
	*s = Statistics{}
}

// AddBlock records a single block with a payload of size bytes. Overhead is the number of bytes the
// block occupies beyond its payload.
func (s *Statistics) AddBlock(size, overhead int, free bool) {
	s.BlockCount++
	s.OverheadBytes += overhead

	if free {
		s.FreeBytes += size
	} else {
		s.AllocationCount++
		s.AllocationBytes += size
	}
}

// AccountedBytes returns the number of heap bytes covered by the blocks that were added. For a complete
// walk of a healthy heap, it is equal to HeapBytes.
func (s *Statistics) AccountedBytes() int {
	return s.AllocationBytes + s.FreeBytes + s.OverheadBytes
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.HeapBytes += other.HeapBytes
	s.AllocationBytes += other.AllocationBytes
	s.FreeBytes += other.FreeBytes
	s.OverheadBytes += other.OverheadBytes
}

// DetailedStatistics extends Statistics with the size range of allocated and free blocks. It must be
// cleared before use.
type DetailedStatistics struct {
	Statistics
	UnusedRangeCount   int
	AllocationSizeMin  int
	AllocationSizeMax  int
	UnusedRangeSizeMin int
	UnusedRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	*s = DetailedStatistics{
		AllocationSizeMin:  math.MaxInt,
		UnusedRangeSizeMin: math.MaxInt,
	}
}

func (s *DetailedStatistics) AddBlock(size, overhead int, free bool) {
	s.Statistics.AddBlock(size, overhead, free)

	if free {
		s.UnusedRangeCount++
		s.UnusedRangeSizeMin = minimum(s.UnusedRangeSizeMin, size)
		s.UnusedRangeSizeMax = maximum(s.UnusedRangeSizeMax, size)
	} else {
		s.AllocationSizeMin = minimum(s.AllocationSizeMin, size)
		s.AllocationSizeMax = maximum(s.AllocationSizeMax, size)
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.UnusedRangeCount += other.UnusedRangeCount
	s.UnusedRangeSizeMin = minimum(s.UnusedRangeSizeMin, other.UnusedRangeSizeMin)
	s.UnusedRangeSizeMax = maximum(s.UnusedRangeSizeMax, other.UnusedRangeSizeMax)
	s.AllocationSizeMin = minimum(s.AllocationSizeMin, other.AllocationSizeMin)
	s.AllocationSizeMax = maximum(s.AllocationSizeMax, other.AllocationSizeMax)
}

func minimum[T Number](left, right T) T {
	if right < left {
		return right
	}
	return left
}

func maximum[T Number](left, right T) T {
	if right > left {
		return right
	}
	return left
}
