package metadata

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Memory is the heap region that a FreeList threads its blocks through. Bytes may return a
// different slice after the region grows, so the free list never holds on to it.
type Memory interface {
	Bytes() []byte
}

// BlockExtent returns the number of heap bytes covered by a block with the provided payload size.
// Allocated blocks carry a trailing guard value that free blocks have absorbed into their payload.
func BlockExtent(size int, free bool) int {
	if free {
		return HeaderSize + size
	}

	return HeaderSize + size + guardSize
}

// BlockJsonData populates a json object with summary information about a heap region
func BlockJsonData(json *jwriter.ObjectState, totalBytes, unusedBytes, allocationCount, unusedRangeCount int) {
	json.Name("TotalBytes").Int(totalBytes)
	json.Name("UnusedBytes").Int(unusedBytes)
	json.Name("Allocations").Int(allocationCount)
	json.Name("UnusedRanges").Int(unusedRangeCount)
}
