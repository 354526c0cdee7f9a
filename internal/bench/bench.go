package bench

import (
	"bytes"
	"context"
	stdsha1 "crypto/sha1"
	"fmt"
	"runtime"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/autobrr/shabrr/internal/sha1"
)

// DefaultSizes are the input sizes measured when none are given: one
// block, a few blocks and two larger buffers.
var DefaultSizes = []int{64, 1 << 10, 8 << 10, 1 << 20}

// Implementation names a SHA1 implementation under test.
type Implementation string

const (
	Pipeline Implementation = "pipeline"
	Standard Implementation = "crypto/sha1"
)

// Result is one measurement.
type Result struct {
	Impl       Implementation
	Size       int
	Iterations int
	Elapsed    time.Duration
}

// Throughput returns bytes hashed per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Size) * float64(r.Iterations) / r.Elapsed.Seconds()
}

// CPUInfo describes the machine the benchmark ran on.
type CPUInfo struct {
	Brand         string
	Arch          string
	PhysicalCores int
	LogicalCores  int
	// HardwareSHA1 is set when the CPU has SHA1 instructions the standard
	// library can use.
	HardwareSHA1 bool
}

// DetectCPU reports the CPU and whether it has SHA1 acceleration.
func DetectCPU() CPUInfo {
	info := CPUInfo{
		Brand:         cpuid.CPU.BrandName,
		Arch:          runtime.GOARCH,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
	}

	// Only amd64 and arm64 have hardware paths in crypto/sha1
	switch runtime.GOARCH {
	case "amd64":
		info.HardwareSHA1 = cpuid.CPU.Has(cpuid.SHA)
	case "arm64":
		info.HardwareSHA1 = cpuid.CPU.Has(cpuid.SHA1)
	}
	return info
}

// Options controls a benchmark run.
type Options struct {
	Sizes []int
	// MinDuration is how long each size is hashed per implementation.
	MinDuration time.Duration
	// Progress is called after every measurement when not nil.
	Progress func(done, total int)
}

// Run measures both implementations on every size. Before timing a size it
// checks that the two agree on the digest.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	if opts.MinDuration <= 0 {
		opts.MinDuration = 200 * time.Millisecond
	}

	impls := []struct {
		name Implementation
		sum  func([]byte) [sha1.Size]byte
	}{
		{Pipeline, func(b []byte) [sha1.Size]byte { return sha1.MustSum(b) }},
		{Standard, stdsha1.Sum},
	}

	total := len(sizes) * len(impls)
	results := make([]Result, 0, total)
	for _, size := range sizes {
		if size < 0 {
			return nil, fmt.Errorf("invalid benchmark size %d", size)
		}
		input := bytes.Repeat([]byte{0x5a}, size)

		if got, want := sha1.MustSum(input), stdsha1.Sum(input); got != want {
			return nil, fmt.Errorf("digest mismatch at %d bytes: pipeline %s, crypto/sha1 %x", size, got, want)
		}

		for _, impl := range impls {
			if err := ctx.Err(); err != nil {
				return results, err
			}

			r := Result{Impl: impl.name, Size: size}
			start := time.Now()
			for r.Elapsed < opts.MinDuration {
				impl.sum(input)
				r.Iterations++
				r.Elapsed = time.Since(start)
			}
			results = append(results, r)

			if opts.Progress != nil {
				opts.Progress(len(results), total)
			}
		}
	}
	return results, nil
}
