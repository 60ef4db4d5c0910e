//go:build linux || darwin

package arena

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tumalloc/memutils"
	"golang.org/x/sys/unix"
)

// MmapSource is a HeapSource that reserves a fixed span of address space up front and commits
// it page by page as the break advances. The region never moves, so slices returned by Bytes
// stay valid across growth.
type MmapSource struct {
	region    []byte
	brk       int
	committed int
	pageSize  int
}

var _ HeapSource = &MmapSource{}

// NewMmapSource reserves reserve bytes (rounded up to the page size) of inaccessible anonymous
// memory. Nothing is committed until Grow is called.
func NewMmapSource(reserve int) (*MmapSource, error) {
	if reserve <= 0 {
		return nil, errors.Wrapf(memutils.ErrInvalidSize, "reservation of %d bytes", reserve)
	}

	pageSize := unix.Getpagesize()
	err := memutils.CheckPow2(pageSize, "pageSize")
	if err != nil {
		return nil, err
	}

	reserve = memutils.AlignUp(reserve, uint(pageSize))
	region, err := unix.Mmap(-1, 0, reserve, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reserve %d bytes of address space", reserve)
	}

	return &MmapSource{
		region:   region,
		pageSize: pageSize,
	}, nil
}

func (s *MmapSource) Grow(n int) (int, error) {
	if s.region == nil {
		return -1, errors.New("attempted to grow a closed heap source")
	}
	if n < 0 {
		return -1, errors.Wrapf(memutils.ErrInvalidSize, "cannot grow a heap by %d bytes", n)
	}

	newBreak, ok := memutils.CheckedAdd(s.brk, n)
	if !ok || newBreak > len(s.region) {
		return -1, errors.Wrapf(memutils.ErrOutOfMemory, "growing the heap by %d bytes would exceed the %d byte reservation", n, len(s.region))
	}

	if newBreak > s.committed {
		commit := memutils.AlignUp(newBreak, uint(s.pageSize))
		err := unix.Mprotect(s.region[s.committed:commit], unix.PROT_READ|unix.PROT_WRITE)
		if err != nil {
			return -1, errors.Wrapf(memutils.ErrOutOfMemory, "failed to commit pages: %v", err)
		}
		s.committed = commit
	}

	prev := s.brk
	s.brk = newBreak
	return prev, nil
}

func (s *MmapSource) Bytes() []byte {
	return s.region[:s.brk:s.brk]
}

func (s *MmapSource) Len() int {
	return s.brk
}

// Reserved returns the number of bytes of address space held by the source
func (s *MmapSource) Reserved() int {
	return len(s.region)
}

func (s *MmapSource) Close() error {
	if s.region == nil {
		return nil
	}

	err := unix.Munmap(s.region)
	s.region = nil
	s.brk = 0
	s.committed = 0
	return err
}
