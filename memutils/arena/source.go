// Package arena provides the heap-growth primitives that back a heap. A HeapSource behaves like
// sbrk(2): the region only ever grows at its break, and growth reports the previous break.
package arena

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tumalloc/memutils"
)

//go:generate mockgen -source source.go -destination ./mocks/source.go -package mocks

// HeapSource is a contiguous region of memory that can be extended at its end. Offsets into
// Bytes() remain valid for the life of the source, but the slice itself may be replaced by
// growth, so consumers should always reacquire it after calling Grow.
type HeapSource interface {
	// Grow extends the region by n bytes and returns the previous break, which is the offset of
	// the first new byte. When the source cannot extend the region, it returns an error wrapping
	// memutils.ErrOutOfMemory and the break is left unchanged.
	Grow(n int) (int, error)
	// Bytes returns the region from offset 0 up to the current break
	Bytes() []byte
	// Len returns the current break
	Len() int
	// Close releases any resources held by the source. The region must not be used afterward.
	Close() error
}

// ErrOutOfMemory is returned (wrapped) by HeapSource.Grow when the region cannot be extended
var ErrOutOfMemory = memutils.ErrOutOfMemory

// ErrUnsupported is returned by NewMmapSource on platforms without anonymous mmap support
var ErrUnsupported = errors.New("mmap heap sources are not supported on this platform")
