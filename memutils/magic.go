package memutils

import "encoding/binary"

const (
	// SentinelSize is the number of bytes of guard data written immediately after every allocated payload
	SentinelSize int = 4
	// corruptionDetectionMagicValue is the 4-byte pattern written into the guard slot after an allocation
	corruptionDetectionMagicValue uint32 = 0x01234567
)

// WriteMagicValue writes the easy-to-identify marker across SentinelSize bytes at the provided offset.
func WriteMagicValue(data []byte, offset int) {
	binary.LittleEndian.PutUint32(data[offset:offset+SentinelSize], corruptionDetectionMagicValue)
}

// ValidateMagicValue verifies that the easy-to-identify marker written by WriteMagicValue is still present.
// It returns true if the value is still present and false otherwise. An offset whose guard slot would
// fall outside of data is never valid.
func ValidateMagicValue(data []byte, offset int) bool {
	if offset < 0 || offset+SentinelSize > len(data) {
		return false
	}

	return ReadMagicValue(data, offset) == corruptionDetectionMagicValue
}

// ReadMagicValue returns whatever is currently stored in the guard slot at offset
func ReadMagicValue(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset : offset+SentinelSize])
}
