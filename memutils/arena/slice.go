package arena

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tumalloc/memutils"
	"golang.org/x/exp/slices"
)

// SliceSource is a HeapSource backed by a Go byte slice. Growth may move the slice, but never
// shrinks it.
type SliceSource struct {
	data  []byte
	limit int
}

var _ HeapSource = &SliceSource{}

// NewSliceSource creates a SliceSource that refuses to grow past limit bytes. A limit of 0 or
// less leaves the source unbounded.
func NewSliceSource(limit int) *SliceSource {
	return &SliceSource{limit: limit}
}

func (s *SliceSource) Grow(n int) (int, error) {
	if n < 0 {
		return -1, errors.Wrapf(memutils.ErrInvalidSize, "cannot grow a heap by %d bytes", n)
	}

	prev := len(s.data)
	newBreak, ok := memutils.CheckedAdd(prev, n)
	if !ok {
		return -1, errors.Wrapf(memutils.ErrOutOfMemory, "growing the heap by %d bytes overflows", n)
	}

	if s.limit > 0 && newBreak > s.limit {
		return -1, errors.Wrapf(memutils.ErrOutOfMemory, "growing the heap to %d bytes would exceed the %d byte limit", newBreak, s.limit)
	}

	s.data = slices.Grow(s.data, n)[:newBreak]
	return prev, nil
}

func (s *SliceSource) Bytes() []byte {
	return s.data
}

func (s *SliceSource) Len() int {
	return len(s.data)
}

func (s *SliceSource) Limit() int {
	return s.limit
}

func (s *SliceSource) Close() error {
	s.data = nil
	return nil
}
