package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/autobrr/shabrr/internal/bench"
	"github.com/autobrr/shabrr/internal/checksum"
	"github.com/autobrr/shabrr/internal/hasher"
	"github.com/autobrr/shabrr/internal/sha1"
)

func newTestDisplay(t *testing.T, verbose bool) (*Display, *bytes.Buffer) {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var buf bytes.Buffer
	d := NewDisplay(NewFormatter(verbose))
	d.SetOutput(&buf)
	return d, &buf
}

func TestShowCheckEntries(t *testing.T) {
	res := &checksum.VerificationResult{
		Entries: []checksum.EntryResult{
			{Entry: checksum.Entry{Name: "good"}, Status: checksum.StatusOK},
			{Entry: checksum.Entry{Name: "bad"}, Status: checksum.StatusFailed},
			{Entry: checksum.Entry{Name: "gone"}, Status: checksum.StatusReadError, Err: errors.New("no such file")},
		},
		OK: 1, Failed: 1, ReadErrors: 1,
	}

	t.Run("normal", func(t *testing.T) {
		d, buf := newTestDisplay(t, false)
		d.ShowCheckEntries(res)

		want := "good: OK\nbad: FAILED\ngone: FAILED open or read\n"
		if buf.String() != want {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
	})

	t.Run("quiet", func(t *testing.T) {
		d, buf := newTestDisplay(t, false)
		d.SetQuiet(true)
		d.ShowCheckEntries(res)

		if strings.Contains(buf.String(), "good") {
			t.Errorf("quiet output lists passing entry: %q", buf.String())
		}
		if !strings.Contains(buf.String(), "bad: FAILED") {
			t.Errorf("quiet output misses failure: %q", buf.String())
		}
	})

	t.Run("verbose result", func(t *testing.T) {
		d, buf := newTestDisplay(t, true)
		d.ShowCheckResult(res, false, 10*time.Millisecond)

		out := buf.String()
		for _, want := range []string{"did NOT match", "could not be read", "Verification results:", "10ms"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestShowCheckEntriesEscapesNames(t *testing.T) {
	d, buf := newTestDisplay(t, false)
	d.ShowCheckEntries(&checksum.VerificationResult{
		Entries: []checksum.EntryResult{
			{Entry: checksum.Entry{Name: "two\nlines"}, Status: checksum.StatusOK},
		},
		OK: 1,
	})

	if want := "\\two\\nlines: OK\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestProgressOutput(t *testing.T) {
	d, buf := newTestDisplay(t, false)
	var bar bytes.Buffer
	d.SetProgressOutput(&bar)
	d.SetProgress(true)

	d.ShowProgress(2)
	d.UpdateProgress(2, 0)
	d.FinishProgress()

	if !strings.Contains(bar.String(), "Hashing files") {
		t.Errorf("progress output = %q, want the bar", bar.String())
	}
	if buf.Len() != 0 {
		t.Errorf("progress leaked into regular output: %q", buf.String())
	}
}

func TestShowSumSummary(t *testing.T) {
	d, buf := newTestDisplay(t, false)
	d.ShowSumSummary([]hasher.Result{
		{Size: 1024},
		{Size: 1024},
		{Err: errors.New("boom")},
	}, 2*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"Hashed:", "2", "Failed:", "2.0 KiB", "2ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowInspect(t *testing.T) {
	d, buf := newTestDisplay(t, false)

	digest := sha1.MustSum([]byte("abc"))
	d.ShowPadding(PaddingInfo{MessageLen: 3, BitLen: 24, ZeroBytes: 52, PaddedLen: 64, Blocks: 1})
	d.ShowBlockStates([]BlockState{{Index: 0, In: sha1.Initial(), Out: sha1.State(digest.Words())}})
	d.ShowDigest(digest)

	out := buf.String()
	for _, want := range []string{"52 zero byte(s)", "67452301", "a9993e36", digest.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowBenchResults(t *testing.T) {
	d, buf := newTestDisplay(t, false)
	d.ShowBenchResults(bench.CPUInfo{Brand: "Test CPU", Arch: "amd64", HardwareSHA1: true}, []bench.Result{
		{Impl: bench.Pipeline, Size: 1024, Iterations: 1000, Elapsed: time.Second},
	})

	out := buf.String()
	for _, want := range []string{"Test CPU", "yes", "pipeline", "1,000", "1000 KiB/s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
