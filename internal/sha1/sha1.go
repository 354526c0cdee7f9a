// Package sha1 implements the SHA-1 digest as an explicit pipeline:
// padding, block scheduling and compression folded over the blocks.
//
// Every function is pure. Nothing is shared between calls, so independent
// digests can be computed concurrently without coordination.
package sha1

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// size of a SHA1 checksum in bytes
const Size = 20

// size of a SHA1 block in bytes
const BlockSize = 64

// ScheduleLen is the number of words in a block's message schedule,
// one per compression round.
const ScheduleLen = 80

// State holds the five working words a, b, c, d and e.
type State [5]uint32

// Initial returns the state the fold starts from before the first block.
func Initial() State {
	return State{0x67452301, 0xEFCDAB89, 0x98BADCFE, 0x10325476, 0xC3D2E1F0}
}

// Digest is a SHA1 checksum, the final state words in big-endian order.
type Digest [Size]byte

// Digest serializes s as a||b||c||d||e.
func (s State) Digest() Digest {
	var d Digest
	for i, w := range s {
		binary.BigEndian.PutUint32(d[i*4:], w)
	}
	return d
}

// Words returns the five 32-bit words the digest was assembled from.
func (d Digest) Words() [5]uint32 {
	var w [5]uint32
	for i := range w {
		w[i] = binary.BigEndian.Uint32(d[i*4:])
	}
	return w
}

// String returns the 40 character lowercase hex form.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses the hex form produced by String. Upper case is accepted.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) != hex.EncodedLen(Size) {
		return d, fmt.Errorf("invalid digest length %d, want %d", len(s), hex.EncodedLen(Size))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	return d, nil
}

// Sum returns the SHA1 checksum of message.
func Sum(message []byte) (Digest, error) {
	padded, err := Pad(message)
	if err != nil {
		return Digest{}, err
	}
	return Fold(Blocks(padded)).Digest(), nil
}

// SumWords is Sum returning the five state words instead of bytes.
func SumWords(message []byte) ([5]uint32, error) {
	d, err := Sum(message)
	if err != nil {
		return [5]uint32{}, err
	}
	return d.Words(), nil
}

// MustSum is like Sum but panics if message is too long to be padded.
func MustSum(message []byte) Digest {
	d, err := Sum(message)
	if err != nil {
		panic(err)
	}
	return d
}
