package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

var (
	// ErrOutOfMemory is returned when a heap source refuses to extend the heap any further
	ErrOutOfMemory error = errors.New("heap source is out of memory")
	// ErrInvalidSize is returned when a negative or otherwise unusable size is requested
	ErrInvalidSize error = errors.New("invalid size")
	// ErrSizeOverflow is returned when a size computation does not fit in an int
	ErrSizeOverflow error = errors.New("size computation overflowed")
	// ErrSplitTooSmall is returned when a free block is split without enough excess to hold
	// a well-formed remainder block
	ErrSplitTooSmall error = errors.New("free block is too small to split")
	// ErrHeapCorruption is the error kind carried by every heap corruption report
	ErrHeapCorruption error = errors.New("heap corruption detected")
)
