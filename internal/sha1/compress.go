package sha1

import (
	"iter"
	"math/bits"
)

const (
	_K0 = 0x5A827999
	_K1 = 0x6ED9EBA1
	_K2 = 0x8F1BBCDC
	_K3 = 0xCA62C1D6
)

// Compress runs the 80 rounds over w starting from s and returns s plus
// the final working registers, word by word modulo 2^32.
func Compress(w *Schedule, s State) State {
	return Trace(w, s, nil)
}

// Trace is Compress, calling fn with the working registers after every
// round when fn is not nil.
func Trace(w *Schedule, s State, fn func(round int, r State)) State {
	a, b, c, d, e := s[0], s[1], s[2], s[3], s[4]

	for i := 0; i < ScheduleLen; i++ {
		var f, k uint32
		switch {
		case i < 20:
			f = b&c | ^b&d
			k = _K0
		case i < 40:
			f = b ^ c ^ d
			k = _K1
		case i < 60:
			f = b&c | b&d | c&d
			k = _K2
		default:
			f = b ^ c ^ d
			k = _K3
		}

		t := bits.RotateLeft32(a, 5) + f + e + k + w[i]
		a, b, c, d, e = t, a, bits.RotateLeft32(b, 30), c, d

		if fn != nil {
			fn(i, State{a, b, c, d, e})
		}
	}

	return State{s[0] + a, s[1] + b, s[2] + c, s[3] + d, s[4] + e}
}

// Fold compresses every schedule in order, each starting from the state
// the previous one produced. The first starts from Initial.
func Fold(blocks iter.Seq[Schedule]) State {
	s := Initial()
	for w := range blocks {
		s = Compress(&w, s)
	}
	return s
}
