package metadata

import "encoding/binary"

const (
	// HeaderSize is the number of bytes prefixed to every block, free or allocated: an 8-byte
	// payload size followed by an 8-byte free list link
	HeaderSize int = 16
	// NoBlock is the offset used to indicate the absence of a block, such as the end of the free list
	NoBlock int = -1

	sizeFieldOffset = 0
	nextFieldOffset = 8
)

// Header is the decoded form of the bytes at the start of every block
type Header struct {
	// Size is the number of payload bytes available to the holder of the block. For allocated blocks
	// it does not include the trailing guard value.
	Size int
	// Next is the offset of the next block in the free list, or NoBlock. It is only meaningful while
	// the block is free.
	Next int
}

// ReadHeader decodes the block header at offset
func ReadHeader(data []byte, offset int) Header {
	return Header{
		Size: readSize(data, offset),
		Next: readNext(data, offset),
	}
}

// WriteHeader encodes header into the block header at offset
func WriteHeader(data []byte, offset int, header Header) {
	writeSize(data, offset, header.Size)
	writeNext(data, offset, header.Next)
}

func readSize(data []byte, offset int) int {
	return int(binary.LittleEndian.Uint64(data[offset+sizeFieldOffset:]))
}

func writeSize(data []byte, offset int, size int) {
	binary.LittleEndian.PutUint64(data[offset+sizeFieldOffset:], uint64(size))
}

func readNext(data []byte, offset int) int {
	return int(int64(binary.LittleEndian.Uint64(data[offset+nextFieldOffset:])))
}

func writeNext(data []byte, offset int, next int) {
	binary.LittleEndian.PutUint64(data[offset+nextFieldOffset:], uint64(int64(next)))
}
