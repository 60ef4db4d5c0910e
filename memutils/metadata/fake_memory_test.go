package metadata_test

import (
	"github.com/vkngwrapper/tumalloc/memutils"
	"github.com/vkngwrapper/tumalloc/memutils/metadata"
)

// testMemory is a heap region that tests grow by hand
type testMemory struct {
	data []byte
}

func (m *testMemory) Bytes() []byte {
	return m.data
}

// carve appends a freshly allocated block with a guard value to the end of the region and returns
// its header offset
func (m *testMemory) carve(size int) int {
	offset := len(m.data)
	m.data = append(m.data, make([]byte, metadata.BlockExtent(size, false))...)
	metadata.WriteHeader(m.data, offset, metadata.Header{Size: size, Next: metadata.NoBlock})
	memutils.WriteMagicValue(m.data, offset+metadata.HeaderSize+size)
	return offset
}

func (m *testMemory) guard(offset int) {
	size := metadata.ReadHeader(m.data, offset).Size
	memutils.WriteMagicValue(m.data, offset+metadata.HeaderSize+size)
}
