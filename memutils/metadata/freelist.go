package metadata

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/tumalloc/memutils"
)

const guardSize = memutils.SentinelSize

// FreeList is an unordered, singly linked list of free blocks threaded through the headers of
// the blocks themselves. Links are offsets into Memory rather than pointers. The list has no
// opinion about list order: physical adjacency is always derived from block offsets and sizes.
type FreeList struct {
	memory Memory

	head      int
	count     int
	freeBytes int
}

var _ memutils.Validatable = &FreeList{}

func NewFreeList(memory Memory) *FreeList {
	return &FreeList{
		memory: memory,
		head:   NoBlock,
	}
}

// Head returns the offset of the most recently freed block, or NoBlock if the list is empty
func (l *FreeList) Head() int {
	return l.head
}

// Len returns the number of blocks in the list
func (l *FreeList) Len() int {
	return l.count
}

// SumFreeSize returns the total payload bytes of every block in the list
func (l *FreeList) SumFreeSize() int {
	return l.freeBytes
}

// BlockSize returns the payload size recorded in the header at offset
func (l *FreeList) BlockSize(offset int) int {
	return readSize(l.memory.Bytes(), offset)
}

// Next returns the list successor of the block at offset
func (l *FreeList) Next(offset int) int {
	return readNext(l.memory.Bytes(), offset)
}

// Contains reports whether the block at offset is currently linked into the list
func (l *FreeList) Contains(offset int) bool {
	data := l.memory.Bytes()
	for current := l.head; current != NoBlock; current = readNext(data, current) {
		if current == offset {
			return true
		}
	}

	return false
}

// Push links the block at offset onto the front of the list
func (l *FreeList) Push(offset int) {
	data := l.memory.Bytes()
	writeNext(data, offset, l.head)
	l.head = offset
	l.count++
	l.freeBytes += readSize(data, offset)
}

// Remove unlinks the block at offset from the list. It returns false if the block
// was not in the list.
func (l *FreeList) Remove(offset int) bool {
	data := l.memory.Bytes()
	if !l.unlink(data, offset) {
		return false
	}

	l.count--
	l.freeBytes -= readSize(data, offset)
	return true
}

func (l *FreeList) unlink(data []byte, offset int) bool {
	if offset == NoBlock || l.head == NoBlock {
		return false
	}

	if l.head == offset {
		l.head = readNext(data, offset)
		return true
	}

	for current := l.head; current != NoBlock; current = readNext(data, current) {
		if readNext(data, current) == offset {
			writeNext(data, current, readNext(data, offset))
			return true
		}
	}

	return false
}

// relink points the list link owned by prev (or the list head if prev is NoBlock) at next
func (l *FreeList) relink(data []byte, prev, next int) {
	if prev == NoBlock {
		l.head = next
		return
	}

	writeNext(data, prev, next)
}

// FindPrevPhysical returns the free block that ends exactly where the block at offset begins,
// or NoBlock if the block before it is allocated or it is the first block in the heap
func (l *FreeList) FindPrevPhysical(offset int) int {
	data := l.memory.Bytes()
	for current := l.head; current != NoBlock; current = readNext(data, current) {
		if current+HeaderSize+readSize(data, current) == offset {
			return current
		}
	}

	return NoBlock
}

// FindNextPhysical returns the free block that begins exactly where the free block at offset
// ends, or NoBlock if there isn't one
func (l *FreeList) FindNextPhysical(offset int) int {
	data := l.memory.Bytes()
	end := offset + HeaderSize + readSize(data, offset)
	for current := l.head; current != NoBlock; current = readNext(data, current) {
		if current == end {
			return current
		}
	}

	return NoBlock
}

// split carves the listed free block at offset into a block with a payload of exactly size bytes
// (plus room for its guard value) and a free remainder directly after it. The remainder takes
// over the original block's list link and the original block links to the remainder. The list
// cannot be walked until the caller unlinks the front block. The offset of the remainder is returned.
func (l *FreeList) split(offset int, size int) (int, error) {
	data := l.memory.Bytes()
	blockSize := readSize(data, offset)

	required, ok := memutils.CheckedAdd(size, guardSize+HeaderSize)
	if size < 0 || !ok || blockSize < required {
		return NoBlock, errors.Wrapf(memutils.ErrSplitTooSmall, "block at offset %d holds %d bytes but splitting off %d bytes requires %d", offset, blockSize, size, required)
	}

	remainder := offset + HeaderSize + size + guardSize
	writeSize(data, remainder, blockSize-required)
	writeNext(data, remainder, readNext(data, offset))

	writeSize(data, offset, size)
	writeNext(data, offset, remainder)

	l.count++
	l.freeBytes -= guardSize + HeaderSize

	return remainder, nil
}

// CreateAllocationRequest performs a first-fit search of the list for a block that can hold a payload of
// size bytes followed by its guard value. It returns false if no block in the list is suitable.
func (l *FreeList) CreateAllocationRequest(size int, strategy FitStrategy) (bool, AllocationRequest, error) {
	var allocRequest AllocationRequest

	if size < 0 {
		return false, allocRequest, errors.Wrapf(memutils.ErrInvalidSize, "invalid allocSize: %d", size)
	}

	memutils.DebugValidate(l)

	required, ok := memutils.CheckedAdd(size, guardSize)
	if !ok || required > l.freeBytes {
		return false, allocRequest, nil
	}

	data := l.memory.Bytes()
	prev := NoBlock
	for current := l.head; current != NoBlock; prev, current = current, readNext(data, current) {
		blockSize := readSize(data, current)
		if blockSize < required {
			continue
		}

		excess := blockSize - required
		if excess >= HeaderSize {
			allocRequest.Offset = current
			allocRequest.PrevFree = prev
			allocRequest.Size = size
			allocRequest.Type = AllocationRequestSplit
			return true, allocRequest, nil
		}

		if strategy == FitExactReuse {
			allocRequest.Offset = current
			allocRequest.PrevFree = prev
			allocRequest.Size = blockSize - guardSize
			allocRequest.Type = AllocationRequestWhole
			return true, allocRequest, nil
		}
	}

	return false, allocRequest, nil
}

// Alloc commits an AllocationRequest, removing the allocated block from the list. The block's header
// records the request's size when this returns successfully. Writing the guard value is left to the caller.
func (l *FreeList) Alloc(req AllocationRequest) error {
	data := l.memory.Bytes()

	linked := l.head
	if req.PrevFree != NoBlock {
		linked = readNext(data, req.PrevFree)
	}
	if req.Offset == NoBlock || linked != req.Offset {
		return errors.Errorf("allocation request for the block at offset %d no longer matches the free list", req.Offset)
	}

	switch req.Type {
	case AllocationRequestSplit:
		remainder, err := l.split(req.Offset, req.Size)
		if err != nil {
			return err
		}

		// The remainder replaces the original block in place
		l.relink(data, req.PrevFree, remainder)
		l.count--
		l.freeBytes -= req.Size
	case AllocationRequestWhole:
		blockSize := readSize(data, req.Offset)
		if blockSize != req.Size+guardSize {
			return errors.Errorf("allocation request expected a block of %d bytes at offset %d, but found %d bytes", req.Size+guardSize, req.Offset, blockSize)
		}

		l.relink(data, req.PrevFree, readNext(data, req.Offset))
		l.count--
		l.freeBytes -= blockSize
		writeSize(data, req.Offset, req.Size)
	default:
		return errors.Errorf("allocation request had an unknown type: %s", req.Type)
	}

	writeNext(data, req.Offset, NoBlock)
	return nil
}

// Free returns the allocated block at offset to the front of the list, absorbing its guard value into
// its payload, and coalesces it with its physical neighbors. The offset of the resulting free block is
// returned. The caller is responsible for checking the guard value first.
func (l *FreeList) Free(offset int) int {
	data := l.memory.Bytes()
	writeSize(data, offset, readSize(data, offset)+guardSize)

	l.Push(offset)
	return l.Coalesce(offset)
}

// Coalesce merges the listed free block at offset with the free blocks physically before and
// after it, if any. It returns the offset of the surviving block.
func (l *FreeList) Coalesce(offset int) int {
	data := l.memory.Bytes()
	block := offset

	prev := l.FindPrevPhysical(block)
	if prev != NoBlock {
		l.mergeBlock(data, prev, block)
		block = prev
	}

	next := l.FindNextPhysical(block)
	if next != NoBlock {
		l.mergeBlock(data, block, next)
	}

	return block
}

func (l *FreeList) mergeBlock(data []byte, block int, absorbed int) {
	if block+HeaderSize+readSize(data, block) != absorbed {
		panic(fmt.Sprintf("cannot merge separate physical regions at offsets %d and %d", block, absorbed))
	}
	if !l.unlink(data, absorbed) {
		panic(fmt.Sprintf("block at offset %d was merged but is not in the free list", absorbed))
	}

	writeSize(data, block, readSize(data, block)+HeaderSize+readSize(data, absorbed))
	l.count--
	l.freeBytes += HeaderSize
}

func (l *FreeList) freeSet() (*swiss.Map[int, int], error) {
	data := l.memory.Bytes()
	end := len(data)

	set := swiss.NewMap[int, int](uint32(l.count) + 1)
	for current := l.head; current != NoBlock; current = readNext(data, current) {
		if current < 0 || current+HeaderSize > end {
			return nil, errors.Errorf("free list entry at offset %d lies outside of the heap", current)
		}
		if set.Has(current) {
			return nil, errors.Errorf("block at offset %d appears in the free list more than once", current)
		}

		set.Put(current, readSize(data, current))
	}

	return set, nil
}

func (l *FreeList) walkPhysical(free *swiss.Map[int, int], visit func(offset int, size int, free bool) error) error {
	data := l.memory.Bytes()
	end := len(data)

	for offset := 0; offset < end; {
		if offset+HeaderSize > end {
			return errors.Errorf("block header at offset %d runs past the end of the heap at %d", offset, end)
		}

		size := readSize(data, offset)
		_, isFree := free.Get(offset)
		if size < 0 || size > end-offset {
			return errors.Errorf("block at offset %d has an invalid size of %d", offset, size)
		}

		extent := BlockExtent(size, isFree)
		if offset+extent > end {
			return errors.Errorf("block at offset %d with size %d runs past the end of the heap at %d", offset, size, end)
		}

		err := visit(offset, size, isFree)
		if err != nil {
			return err
		}

		offset += extent
	}

	return nil
}

// VisitAllRegions will call the provided callback once for each block in the heap, in physical order.
// It is expensive and should generally be used for diagnostics only.
func (l *FreeList) VisitAllRegions(handleBlock func(offset int, size int, free bool) error) error {
	free, err := l.freeSet()
	if err != nil {
		return err
	}

	return l.walkPhysical(free, handleBlock)
}

// Validate performs internal consistency checks on the free list and the heap layout. When the
// allocator is functioning correctly, it should not be possible for this method to return an error.
func (l *FreeList) Validate() error {
	free, err := l.freeSet()
	if err != nil {
		return err
	}

	var listBytes int
	free.Iter(func(offset int, size int) bool {
		listBytes += size
		return false
	})

	if free.Count() != l.count {
		return errors.Errorf("the free list holds %d blocks, but its count is %d", free.Count(), l.count)
	}

	if listBytes != l.freeBytes {
		return errors.Errorf("the free size of the list is %d, but the free blocks only added up to %d", l.freeBytes, listBytes)
	}

	var physicalFree int
	prevFree := false
	err = l.walkPhysical(free, func(offset int, size int, isFree bool) error {
		if isFree {
			if prevFree {
				return errors.Errorf("free block at offset %d directly follows another free block", offset)
			}
			physicalFree++
		}

		prevFree = isFree
		return nil
	})
	if err != nil {
		return err
	}

	if physicalFree != l.count {
		return errors.Errorf("the free list holds %d blocks, but only %d of them lie on block boundaries", l.count, physicalFree)
	}

	return nil
}

func (l *FreeList) AddStatistics(stats *memutils.Statistics) error {
	stats.HeapBytes += len(l.memory.Bytes())

	return l.VisitAllRegions(func(offset int, size int, free bool) error {
		stats.AddBlock(size, BlockExtent(0, free), free)
		return nil
	})
}

func (l *FreeList) AddDetailedStatistics(stats *memutils.DetailedStatistics) error {
	stats.HeapBytes += len(l.memory.Bytes())

	return l.VisitAllRegions(func(offset int, size int, free bool) error {
		stats.AddBlock(size, BlockExtent(0, free), free)
		return nil
	})
}
