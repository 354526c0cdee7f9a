package checksum

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/autobrr/shabrr/internal/hasher"
)

// Status is the outcome of checking one entry.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusReadError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusReadError:
		return "FAILED open or read"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// VerifyOptions holds options for the verification process
type VerifyOptions struct {
	ChecksumPath string
	Strict       bool
	Workers      int
	Display      hasher.Displayer
	Stdin        io.Reader
}

// EntryResult is the outcome for one checksum line.
type EntryResult struct {
	Entry  Entry
	Status Status
	Err    error
}

// VerificationResult summarizes a checksum file check.
type VerificationResult struct {
	Entries        []EntryResult
	OK             int
	Failed         int
	ReadErrors     int
	MalformedLines []int
}

// Passed reports whether every entry matched.
func (r *VerificationResult) Passed() bool {
	return r.Failed == 0 && r.ReadErrors == 0
}

// Parse reads checksum lines from r. Blank lines and lines starting with
// '#' are skipped; other unparseable lines are returned by number.
func Parse(r io.Reader) ([]Entry, []int, error) {
	var entries []Entry
	var malformed []int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		e, err := ParseLine(line)
		if err != nil {
			if errors.Is(err, ErrMalformedLine) {
				malformed = append(malformed, n)
				continue
			}
			return nil, nil, err
		}
		e.Line = n
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("could not read checksum lines: %w", err)
	}
	return entries, malformed, nil
}

// Verify re-digests every file listed in the checksum file and compares
// the results. Names are resolved against the current directory, as
// sha1sum does. "-" reads the checksum lines from Stdin.
func Verify(ctx context.Context, opts VerifyOptions) (*VerificationResult, error) {
	entries, malformed, err := readChecksumFile(opts)
	if err != nil {
		return nil, err
	}

	if opts.Strict && len(malformed) > 0 {
		return nil, fmt.Errorf("%w: %d improperly formatted line(s) in %s, first on line %d",
			ErrMalformedLine, len(malformed), opts.ChecksumPath, malformed[0])
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no properly formatted SHA1 checksum lines found in %s", opts.ChecksumPath)
	}

	jobs := make([]hasher.Job, len(entries))
	for i, e := range entries {
		jobs[i] = hasher.Job{Name: e.Name, Path: filepath.FromSlash(e.Name)}
	}

	stdin := opts.Stdin
	if opts.ChecksumPath == hasher.Stdin {
		// standard input already held the checksum lines
		stdin = strings.NewReader("")
	}

	h := hasher.New(jobs, opts.Display)
	if stdin != nil {
		h.SetStdin(stdin)
	}
	results, err := h.Run(ctx, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}

	res := &VerificationResult{
		Entries:        make([]EntryResult, len(entries)),
		MalformedLines: malformed,
	}
	for i, r := range results {
		er := EntryResult{Entry: entries[i]}
		switch {
		case r.Err != nil:
			er.Status = StatusReadError
			er.Err = r.Err
			res.ReadErrors++
		case r.Digest != entries[i].Digest:
			er.Status = StatusFailed
			res.Failed++
		default:
			er.Status = StatusOK
			res.OK++
		}
		res.Entries[i] = er
	}
	return res, nil
}

func readChecksumFile(opts VerifyOptions) ([]Entry, []int, error) {
	if opts.ChecksumPath == hasher.Stdin {
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		return Parse(in)
	}

	f, err := os.Open(opts.ChecksumPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open checksum file %q: %w", opts.ChecksumPath, err)
	}
	defer f.Close()

	entries, malformed, err := Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse checksum file %q: %w", opts.ChecksumPath, err)
	}
	return entries, malformed, nil
}
