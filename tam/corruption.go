package tam

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tumalloc/memutils"
	"github.com/vkngwrapper/tumalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CorruptionExitCode is the process exit status used by the default corruption handler. It matches
// the status of a process killed by SIGABRT.
const CorruptionExitCode int = 134

// CorruptionError describes a block whose bookkeeping can no longer be trusted. It is always
// reported as memutils.ErrHeapCorruption by errors.Is.
type CorruptionError struct {
	// Pointer is the payload address of the damaged block
	Pointer Pointer
	// Size is the payload size recorded in the damaged block's header, or -1 if it could not be read
	Size int
	// Found is the value discovered in the block's guard slot
	Found uint32
	// Reason describes what was wrong with the block
	Reason string
}

func (e *CorruptionError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("heap corruption at pointer %d: %s", e.Pointer, e.Reason)
	}

	return fmt.Sprintf("heap corruption at pointer %d with size %d: %s (guard slot holds %#08x)", e.Pointer, e.Size, e.Reason, e.Found)
}

func (e *CorruptionError) Unwrap() error {
	return memutils.ErrHeapCorruption
}

func abortOnCorruption(err error) {
	fmt.Fprintf(os.Stderr, "MEMORY CORRUPTION DETECTED: %v\n", err)
	os.Exit(CorruptionExitCode)
}

func (h *Heap) reportCorruption(err error) {
	h.logger.Error("MEMORY CORRUPTION DETECTED", slog.Any("error", err))
	h.onCorruption(err)
}

// blockHeader locates and decodes the header for the payload at ptr, verifying that the block it
// describes lies within the heap
func (h *Heap) blockHeader(ptr Pointer) (int, metadata.Header, error) {
	data := h.source.Bytes()
	offset := int(ptr) - metadata.HeaderSize

	if offset < 0 || int(ptr) > len(data) {
		return metadata.NoBlock, metadata.Header{}, &CorruptionError{
			Pointer: ptr,
			Size:    -1,
			Reason:  fmt.Sprintf("pointer lies outside of the %d byte heap", len(data)),
		}
	}

	header := metadata.ReadHeader(data, offset)
	if header.Size < 0 || header.Size > len(data)-int(ptr) {
		return metadata.NoBlock, metadata.Header{}, &CorruptionError{
			Pointer: ptr,
			Size:    -1,
			Reason:  fmt.Sprintf("block header records a size of %d, which runs past the end of the heap", header.Size),
		}
	}

	return offset, header, nil
}

// checkAllocation verifies that ptr is a live allocation with an intact guard value and returns the
// offset of its header
func (h *Heap) checkAllocation(ptr Pointer) (int, error) {
	offset, header, err := h.blockHeader(ptr)
	if err != nil {
		return metadata.NoBlock, err
	}

	if h.freeList.Contains(offset) {
		return metadata.NoBlock, &CorruptionError{
			Pointer: ptr,
			Size:    header.Size,
			Reason:  "block has already been released",
		}
	}

	return offset, h.checkGuard(ptr, header.Size)
}

func (h *Heap) checkGuard(ptr Pointer, size int) error {
	data := h.source.Bytes()
	guard := int(ptr) + size

	if memutils.ValidateMagicValue(data, guard) {
		return nil
	}

	var found uint32
	if guard+memutils.SentinelSize <= len(data) {
		found = memutils.ReadMagicValue(data, guard)
	}

	return &CorruptionError{
		Pointer: ptr,
		Size:    size,
		Found:   found,
		Reason:  "guard value after the allocation was overwritten",
	}
}

// CheckCorruption walks every block in the heap and verifies the guard value after each live
// allocation. It returns the first damaged block it finds as a *CorruptionError. Unlike Release, it never
// calls the heap's corruption handler. Damage to the block layout itself is reported with a Null Pointer.
func (h *Heap) CheckCorruption() error {
	h.logger.Debug("Heap::CheckCorruption")

	err := h.freeList.VisitAllRegions(func(offset int, size int, free bool) error {
		if free {
			return nil
		}

		return h.checkGuard(Pointer(offset+metadata.HeaderSize), size)
	})
	var corruption *CorruptionError
	if err != nil && !errors.As(err, &corruption) {
		return &CorruptionError{
			Pointer: Null,
			Size:    -1,
			Reason:  "the heap layout is damaged: " + err.Error(),
		}
	}

	return err
}
