package sha1

import (
	"slices"
	"testing"
)

func TestCompressSingleBlock(t *testing.T) {
	padded, err := Pad([]byte("abc"))
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	w := Expand(padded)

	in := Initial()
	got := Compress(&w, in)

	want := State{0xa9993e36, 0x4706816a, 0xba3e2571, 0x7850c26c, 0x9cd0d89d}
	if got != want {
		t.Errorf("Compress = %08x, want %08x", got, want)
	}
	if in != Initial() {
		t.Errorf("input state modified: %08x", in)
	}
}

func TestCompressAddsToIncomingState(t *testing.T) {
	var w Schedule
	zero := Compress(&w, State{})

	// the rounds are not linear in the state, so only the final addition
	// can be checked by going through Trace
	var last State
	got := Trace(&w, State{}, func(_ int, r State) { last = r })
	if got != zero {
		t.Fatalf("Trace = %08x, Compress = %08x", got, zero)
	}
	if got != last {
		t.Errorf("from zero state, result %08x should equal last registers %08x", got, last)
	}
}

func TestCompressWraps(t *testing.T) {
	var w Schedule
	s := State{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff}

	var last State
	got := Trace(&w, s, func(_ int, r State) { last = r })
	for i := range got {
		if got[i] != s[i]+last[i] {
			t.Errorf("word %d = %08x, want %08x", i, got[i], s[i]+last[i])
		}
	}
}

func TestTraceRounds(t *testing.T) {
	padded, err := Pad([]byte("abc"))
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	w := Expand(padded)

	var rounds []int
	var regs []State
	Trace(&w, Initial(), func(round int, r State) {
		rounds = append(rounds, round)
		regs = append(regs, r)
	})

	if len(rounds) != ScheduleLen {
		t.Fatalf("fn called %d times, want %d", len(rounds), ScheduleLen)
	}
	for i, r := range rounds {
		if r != i {
			t.Fatalf("call %d reported round %d", i, r)
		}
	}

	// FIPS 180 appendix A, "abc", t = 0 and t = 79
	first := State{0x0116fc33, 0x67452301, 0x7bf36ae2, 0x98badcfe, 0x10325476}
	if regs[0] != first {
		t.Errorf("round 0 = %08x, want %08x", regs[0], first)
	}
	lastWant := State{0x42541b35, 0x5738d5e1, 0x21834873, 0x681e6df6, 0xd8fdf6ad}
	if regs[79] != lastWant {
		t.Errorf("round 79 = %08x, want %08x", regs[79], lastWant)
	}
}

func TestFold(t *testing.T) {
	if got := Fold(slices.Values([]Schedule(nil))); got != Initial() {
		t.Errorf("Fold(empty) = %08x, want Initial", got)
	}

	padded, err := Pad([]byte("abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq"))
	if err != nil {
		t.Fatalf("Pad failed: %v", err)
	}
	w1 := Expand(padded[:BlockSize])
	w2 := Expand(padded[BlockSize:])

	inOrder := Fold(slices.Values([]Schedule{w1, w2}))
	if inOrder != Compress(&w2, Compress(&w1, Initial())) {
		t.Errorf("Fold does not thread state through blocks in order")
	}

	swapped := Fold(slices.Values([]Schedule{w2, w1}))
	if swapped == inOrder {
		t.Errorf("reordering blocks did not change the result")
	}
}
