//go:build !(linux || darwin)

package arena

// MmapSource is unavailable on this platform
type MmapSource struct {
	SliceSource
}

func NewMmapSource(reserve int) (*MmapSource, error) {
	return nil, ErrUnsupported
}

func (s *MmapSource) Reserved() int {
	return 0
}
