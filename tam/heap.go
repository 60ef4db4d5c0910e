// Package tam is a first-fit free list heap allocator that serves allocations from a single region
// which only ever grows.
package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tumalloc/memutils"
	"github.com/vkngwrapper/tumalloc/memutils/arena"
	"github.com/vkngwrapper/tumalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Pointer is the offset of an allocation's payload from the start of the heap region
type Pointer int

// Null is never the address of an allocation. The first block header in a heap occupies offset 0,
// so no payload can begin there.
const Null Pointer = 0

// Heap serves variably-sized allocations from a single region that only ever grows. Freed blocks are
// kept in a first-fit free list threaded through the region itself and merged with their free
// physical neighbors as soon as they are released.
//
// A Heap is not safe for concurrent use.
type Heap struct {
	logger *slog.Logger
	source arena.HeapSource

	freeList     *metadata.FreeList
	strategy     metadata.FitStrategy
	createFlags  CreateFlags
	onCorruption func(err error)

	allocationCount int
}

var _ memutils.Validatable = &Heap{}

// Allocate returns a Pointer to a payload of at least size bytes, or Null if the heap could not be
// extended to hold it. A size of 0 is a valid request.
func (h *Heap) Allocate(size int) Pointer {
	h.logger.Debug("Heap::Allocate", slog.Int("Size", size))

	ptr, err := h.allocate(size)
	if err != nil {
		h.logger.Error("allocation failed", slog.Int("Size", size), slog.Any("error", err))
		return Null
	}

	return ptr
}

// TryAllocate behaves like Allocate but returns the reason for a failure instead of logging it
func (h *Heap) TryAllocate(size int) (Pointer, error) {
	h.logger.Debug("Heap::TryAllocate", slog.Int("Size", size))

	return h.allocate(size)
}

func (h *Heap) allocate(size int) (Pointer, error) {
	if size < 0 {
		return Null, errors.Wrapf(memutils.ErrInvalidSize, "cannot allocate %d bytes", size)
	}

	success, allocRequest, err := h.freeList.CreateAllocationRequest(size, h.strategy)
	if err != nil {
		return Null, err
	}

	var offset int
	if success {
		err = h.freeList.Alloc(allocRequest)
		if err != nil {
			return Null, errors.Wrapf(err, "failed to allocate %d bytes from the free list", size)
		}

		offset = allocRequest.Offset
		size = allocRequest.Size
	} else {
		offset, err = h.extend(size)
		if err != nil {
			return Null, err
		}
	}

	memutils.WriteMagicValue(h.source.Bytes(), offset+metadata.HeaderSize+size)
	h.allocationCount++

	h.debugValidate()
	return Pointer(offset + metadata.HeaderSize), nil
}

// extend carves a new allocated block holding size bytes off of the end of the heap and returns
// its header offset. The block is not placed in the free list.
func (h *Heap) extend(size int) (int, error) {
	extent, ok := memutils.CheckedAdd(size, metadata.HeaderSize+memutils.SentinelSize)
	if !ok {
		return metadata.NoBlock, errors.Wrapf(arena.ErrOutOfMemory, "a block holding %d bytes is too large to address", size)
	}

	offset, err := h.source.Grow(extent)
	if err != nil {
		return metadata.NoBlock, errors.Wrapf(err, "failed to extend the heap by %d bytes", extent)
	}

	h.logger.Debug("    Heap::extend", slog.Int("Offset", offset), slog.Int("Bytes", extent))

	metadata.WriteHeader(h.source.Bytes(), offset, metadata.Header{Size: size, Next: metadata.NoBlock})
	return offset, nil
}

// AllocateZeroed allocates room for count elements of elemSize bytes each and zeroes the payload. It
// returns Null if either value is negative, if their product does not fit in an int, or if the heap
// could not be extended.
func (h *Heap) AllocateZeroed(count, elemSize int) Pointer {
	h.logger.Debug("Heap::AllocateZeroed", slog.Int("Count", count), slog.Int("ElementSize", elemSize))

	if count < 0 || elemSize < 0 {
		h.logger.Error("zeroed allocation failed", slog.Any("error",
			errors.Wrapf(memutils.ErrInvalidSize, "cannot allocate %d elements of %d bytes", count, elemSize)))
		return Null
	}

	size, ok := memutils.CheckedMul(count, elemSize)
	if !ok {
		h.logger.Error("zeroed allocation failed", slog.Any("error",
			errors.Wrapf(memutils.ErrSizeOverflow, "%d elements of %d bytes", count, elemSize)))
		return Null
	}

	ptr := h.Allocate(size)
	if ptr == Null {
		return Null
	}

	payload := h.Bytes(ptr)
	for i := range payload {
		payload[i] = 0
	}

	return ptr
}

// Reallocate returns a Pointer to a payload of at least size bytes that begins with the contents of
// the payload at ptr. If the existing payload is already large enough, ptr is returned unchanged. Otherwise
// a new payload is allocated, the old contents are copied into it, and the old payload is released.
// If the new payload cannot be allocated, Null is returned and the old payload is left untouched.
//
// Passing Null for ptr behaves like Allocate. If ptr is not a live allocation with an intact guard value,
// the heap's corruption handler is called and Null is returned.
func (h *Heap) Reallocate(ptr Pointer, size int) Pointer {
	h.logger.Debug("Heap::Reallocate", slog.Int("Pointer", int(ptr)), slog.Int("Size", size))

	if ptr == Null {
		return h.Allocate(size)
	}

	if size < 0 {
		h.logger.Error("reallocation failed", slog.Any("error",
			errors.Wrapf(memutils.ErrInvalidSize, "cannot reallocate pointer %d to %d bytes", ptr, size)))
		return Null
	}

	offset, err := h.checkAllocation(ptr)
	if err != nil {
		h.reportCorruption(err)
		return Null
	}

	header := metadata.ReadHeader(h.source.Bytes(), offset)
	if header.Size >= size {
		return ptr
	}

	newPtr := h.Allocate(size)
	if newPtr == Null {
		return Null
	}

	// The heap may have moved during allocation
	data := h.source.Bytes()
	copy(data[newPtr:int(newPtr)+header.Size], data[ptr:int(ptr)+header.Size])

	h.Release(ptr)
	return newPtr
}

// Release returns the payload at ptr to the heap. Passing Null is a no-op.
//
// If the guard value after the payload has been overwritten, or ptr does not belong to a live
// allocation, the heap's corruption handler is called. By default, this terminates the process.
func (h *Heap) Release(ptr Pointer) {
	h.logger.Debug("Heap::Release", slog.Int("Pointer", int(ptr)))

	if ptr == Null {
		return
	}

	offset, err := h.checkAllocation(ptr)
	if err != nil {
		h.reportCorruption(err)
		return
	}

	h.freeList.Free(offset)
	h.allocationCount--

	h.debugValidate()
}

// Bytes returns the payload at ptr. The slice is only valid until the next call that allocates, since
// growing the heap may move it. Bytes returns nil for Null or a Pointer that lies outside of the heap.
func (h *Heap) Bytes(ptr Pointer) []byte {
	if ptr == Null {
		return nil
	}

	_, header, err := h.blockHeader(ptr)
	if err != nil {
		return nil
	}

	end := int(ptr) + header.Size
	return h.source.Bytes()[ptr:end:end]
}

// UsableSize returns the number of payload bytes available at ptr, which may be more than were
// requested. It returns 0 for Null or a Pointer that lies outside of the heap.
func (h *Heap) UsableSize(ptr Pointer) int {
	if ptr == Null {
		return 0
	}

	_, header, err := h.blockHeader(ptr)
	if err != nil {
		return 0
	}

	return header.Size
}

// Close releases the heap's source. No Pointer from this heap may be used afterward.
func (h *Heap) Close() error {
	h.logger.Debug("Heap::Close")

	if h.allocationCount > 0 {
		h.logger.Warn("heap closed with live allocations", slog.Int("AllocationCount", h.allocationCount))
	}

	return h.source.Close()
}

func (h *Heap) debugValidate() {
	memutils.DebugValidate(h)

	if h.createFlags&HeapCreateValidateEveryCall != 0 {
		memutils.MustValidate(h)
	}
}
