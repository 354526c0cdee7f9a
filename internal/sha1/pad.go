package sha1

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMessageTooLong is returned when a message's bit length does not fit
// the 64-bit length field.
var ErrMessageTooLong = errors.New("message too long for SHA1 length field")

// maxMessageLen is the largest byte count whose bit length fits in 64 bits.
const maxMessageLen = math.MaxUint64 / 8

// BitLength returns n*8 as the 64-bit length field, or ErrMessageTooLong.
func BitLength(n int) (uint64, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative message length %d", n)
	}
	if uint64(n) > maxMessageLen {
		return 0, fmt.Errorf("%w: %d bytes", ErrMessageTooLong, n)
	}
	return uint64(n) << 3, nil
}

// Pad returns a new buffer holding message followed by the 0x80 marker,
// zero fill and the big-endian bit length, a positive multiple of
// BlockSize long. message is not modified.
func Pad(message []byte) ([]byte, error) {
	bitLen, err := BitLength(len(message))
	if err != nil {
		return nil, err
	}

	zeros := (BlockSize - (len(message)+1+8)%BlockSize) % BlockSize
	padded := make([]byte, len(message), len(message)+1+zeros+8)
	copy(padded, message)

	padded = append(padded, 0x80)
	padded = append(padded, make([]byte, zeros)...)
	padded = binary.BigEndian.AppendUint64(padded, bitLen)
	return padded, nil
}
