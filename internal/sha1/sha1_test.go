package sha1

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"math/bits"
	"math/rand"
	"strings"
	"testing"
)

func TestSHA1(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"The quick brown fox jumps over the lazy dog", "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "84983e441c3bd26ebaae4aa1f95129e5e54670f1"},
		{
			"abcdefghbcdefghicdefghijdefghijkefghijklfghijklmghijklmnhijklmnoijklmnopjklmnopqklmnopqrlmnopqrsmnopqrstnopqrstu",
			"a49b2446a02c645bf419f995b67091253a04a259",
		},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("test-%d", i), func(t *testing.T) {
			d, err := Sum([]byte(tt.input))
			if err != nil {
				t.Fatalf("Sum(%q) failed: %v", tt.input, err)
			}
			got := d.String()
			if got != tt.want {
				t.Errorf("SHA1(%q) = %q, want %q", tt.input, got, tt.want)
			}

			// Compare with standard library
			want := fmt.Sprintf("%x", sha1.Sum([]byte(tt.input)))
			if got != want {
				t.Errorf("SHA1(%q) = %q, want %q (standard library)", tt.input, got, want)
			}
		})
	}
}

func TestSHA1Long(t *testing.T) {
	// Test with a long input to ensure block processing works correctly
	input := bytes.Repeat([]byte("a"), 1000000)

	got := MustSum(input).String()
	if want := "34aa973cd4c4daa4f61eeb2bdbad27316534016f"; got != want {
		t.Errorf("SHA1(1M 'a's) = %q, want %q", got, want)
	}
}

func TestSHA1MatchesStandardLibrary(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n <= 300; n++ {
		input := make([]byte, n)
		rng.Read(input)

		got := MustSum(input)
		want := sha1.Sum(input)
		if got != Digest(want) {
			t.Fatalf("length %d: got %s, want %x", n, got, want)
		}
	}
}

func TestSumDeterministic(t *testing.T) {
	input := []byte(strings.Repeat("déterministe ", 37))
	first := MustSum(input)
	for i := 0; i < 10; i++ {
		if got := MustSum(input); got != first {
			t.Fatalf("call %d: got %s, want %s", i, got, first)
		}
	}
}

func TestSumDoesNotModifyInput(t *testing.T) {
	input := []byte("abc")
	buf := make([]byte, len(input), 64)
	copy(buf, input)

	MustSum(buf)
	if !bytes.Equal(buf, input) {
		t.Errorf("input modified: %q", buf)
	}
	if extra := buf[:4]; extra[3] != 0 {
		t.Errorf("spare capacity written: %x", extra[3])
	}
}

// TestTwoBlockByHand checks the 56 byte message, where the length field no
// longer fits the first block, against an explicit two block computation.
func TestTwoBlockByHand(t *testing.T) {
	msg := []byte("abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq")
	if len(msg) != 56 {
		t.Fatalf("message length %d, want 56", len(msg))
	}

	var first, second [BlockSize]byte
	copy(first[:], msg)
	first[56] = 0x80
	second[62] = 0x01 // 448 bits
	second[63] = 0xc0

	w1 := Expand(first[:])
	w2 := Expand(second[:])
	s := Compress(&w2, Compress(&w1, Initial()))

	want := State{0x84983e44, 0x1c3bd26e, 0xbaae4aa1, 0xf95129e5, 0xe54670f1}
	if s != want {
		t.Fatalf("by hand = %08x, want %08x", s, want)
	}

	words, err := SumWords(msg)
	if err != nil {
		t.Fatalf("SumWords failed: %v", err)
	}
	if State(words) != s {
		t.Errorf("SumWords = %08x, by hand %08x", words, s)
	}
}

func TestAvalanche(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const trials = 500

	total := 0
	for i := 0; i < trials; i++ {
		msg := make([]byte, 1+rng.Intn(200))
		rng.Read(msg)
		before := MustSum(msg)

		bit := rng.Intn(len(msg) * 8)
		msg[bit/8] ^= 1 << (bit % 8)
		after := MustSum(msg)

		for j := range before {
			total += bits.OnesCount8(before[j] ^ after[j])
		}
	}

	// 80 of 160 bits flip on average, the band is loose on purpose
	avg := float64(total) / trials
	if avg < 75 || avg > 85 {
		t.Errorf("average flipped bits = %.2f, want about 80", avg)
	}
}

func TestNoCollisions(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"abc",
		"abd",
		"The quick brown fox jumps over the lazy dog",
		"The quick brown fox jumps over the lazy cog",
		strings.Repeat("a", 55),
		strings.Repeat("a", 56),
		strings.Repeat("a", 63),
		strings.Repeat("a", 64),
		strings.Repeat("a", 65),
		"\x00",
		"\x00\x00",
	}

	seen := make(map[Digest]string)
	for _, in := range inputs {
		d := MustSum([]byte(in))
		if prev, ok := seen[d]; ok {
			t.Fatalf("%q and %q both hash to %s", prev, in, d)
		}
		seen[d] = in
	}
}

func TestInitialReturnsFreshState(t *testing.T) {
	s := Initial()
	s[0] = 0

	if got := Initial(); got[0] != 0x67452301 {
		t.Fatalf("Initial()[0] = %08x after modifying a copy, want 67452301", got[0])
	}
	if got, want := MustSum([]byte("abc")).String(), "a9993e364706816aba3e25717850c26c9cd0d89d"; got != want {
		t.Errorf("Sum(abc) = %s after modifying a copy of Initial, want %s", got, want)
	}
}

func TestDigestWords(t *testing.T) {
	d := MustSum([]byte("abc"))
	want := [5]uint32{0xa9993e36, 0x4706816a, 0xba3e2571, 0x7850c26c, 0x9cd0d89d}
	if got := d.Words(); got != want {
		t.Errorf("Words() = %08x, want %08x", got, want)
	}
	if got := State(want).Digest(); got != d {
		t.Errorf("State.Digest() = %s, want %s", got, d)
	}
}

func TestParseDigest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lower", input: "a9993e364706816aba3e25717850c26c9cd0d89d", want: "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{name: "upper", input: "A9993E364706816ABA3E25717850C26C9CD0D89D", want: "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{name: "short", input: "a9993e36", wantErr: true},
		{name: "not hex", input: "z9993e364706816aba3e25717850c26c9cd0d89d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDigest(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDigest(%q) = %s, want error", tt.input, d)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDigest(%q) failed: %v", tt.input, err)
			}
			if d.String() != tt.want {
				t.Errorf("ParseDigest(%q) = %s, want %s", tt.input, d, tt.want)
			}
		})
	}
}

func BenchmarkSHA1(b *testing.B) {
	sizes := []int{64, 1024, 8192, 1048576} // 64B, 1KB, 8KB, 1MB

	for _, size := range sizes {
		input := bytes.Repeat([]byte("a"), size)

		b.Run(fmt.Sprintf("pipeline-%d", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				MustSum(input)
			}
		})

		b.Run(fmt.Sprintf("standard-%d", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				sha1.Sum(input)
			}
		})
	}
}
