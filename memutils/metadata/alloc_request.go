package metadata

// AllocationRequestType is an enum that indicates how a free block will be consumed. It is returned
// in AllocationRequest from CreateAllocationRequest
type AllocationRequestType uint32

const (
	// AllocationRequestSplit indicates that the free block will be split, with the front of the block
	// allocated and the remainder left in the free list in its place
	AllocationRequestSplit AllocationRequestType = iota
	// AllocationRequestWhole indicates that the entire free block will be removed from the free list
	// and allocated
	AllocationRequestWhole
)

var allocationRequestMapping = map[AllocationRequestType]string{
	AllocationRequestSplit: "Split",
	AllocationRequestWhole: "Whole",
}

func (t AllocationRequestType) String() string {
	return allocationRequestMapping[t]
}

// AllocationRequest is a type returned from FreeList.CreateAllocationRequest which indicates which free
// block the free list intends to hand out and how. It can be committed with FreeList.Alloc
type AllocationRequest struct {
	// Offset is the header offset of the chosen free block
	Offset int
	// PrevFree is the header offset of the block before the chosen block in the free list, or NoBlock
	// if the chosen block is the head of the list
	PrevFree int
	// Size is the payload size the allocated block will record. It may be larger than what was
	// originally requested for AllocationRequestWhole
	Size int
	// Type identifies how the chosen block will be consumed
	Type AllocationRequestType
}
