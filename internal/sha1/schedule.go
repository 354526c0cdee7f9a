package sha1

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math/bits"
)

// Schedule is the message schedule of one block: 16 words read from the
// block followed by 64 words from the expansion recurrence.
type Schedule [ScheduleLen]uint32

// Expand builds the schedule of a single 64-byte block.
// It panics if block is not exactly BlockSize bytes.
func Expand(block []byte) Schedule {
	if len(block) != BlockSize {
		panic(fmt.Sprintf("sha1: block of %d bytes, want %d", len(block), BlockSize))
	}

	var w Schedule
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < ScheduleLen; i++ {
		w[i] = bits.RotateLeft32(w[i-3]^w[i-8]^w[i-14]^w[i-16], 1)
	}
	return w
}

// Blocks yields the schedule of every 64-byte window of padded, in order.
//
// padded must come from Pad. A length that is not a multiple of BlockSize
// means the padding is broken and Blocks panics before yielding anything.
func Blocks(padded []byte) iter.Seq[Schedule] {
	if len(padded)%BlockSize != 0 {
		panic(fmt.Sprintf("sha1: padded length %d is not a multiple of %d", len(padded), BlockSize))
	}
	return func(yield func(Schedule) bool) {
		for off := 0; off < len(padded); off += BlockSize {
			if !yield(Expand(padded[off : off+BlockSize])) {
				return
			}
		}
	}
}
