package hasher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/autobrr/shabrr/internal/sha1"
)

// Stdin is the job path that reads standard input.
const Stdin = "-"

// Job is one input to digest. When Data is non-nil, or Path is empty, Data
// is digested as is.
type Job struct {
	Name string
	Path string
	Data []byte
}

// Result holds the outcome of a single job. A failed job carries Err and a
// zero Digest.
type Result struct {
	Job    Job
	Digest sha1.Digest
	Size   int64
	Err    error
}

// Displayer receives progress while jobs are being hashed.
type Displayer interface {
	ShowProgress(total int)
	UpdateProgress(completed int, hashrate float64)
	FinishProgress()
}

type nopDisplay struct{}

func (nopDisplay) ShowProgress(int)            {}
func (nopDisplay) UpdateProgress(int, float64) {}
func (nopDisplay) FinishProgress()             {}

// Hasher digests a set of jobs on a bounded pool of workers. Each job is an
// independent digest, so workers share nothing but the job queue and the
// progress counters.
type Hasher struct {
	jobs    []Job
	results []Result
	display Displayer
	stdin   io.Reader

	completed   atomicCounter
	bytesHashed atomicCounter
	startTime   time.Time
}

// New returns a Hasher for jobs. display may be nil.
func New(jobs []Job, display Displayer) *Hasher {
	if display == nil {
		display = nopDisplay{}
	}
	return &Hasher{
		jobs:    slices.Clone(jobs),
		results: make([]Result, len(jobs)),
		display: display,
		stdin:   os.Stdin,
	}
}

// SetStdin replaces the reader used for Stdin jobs.
func (h *Hasher) SetStdin(r io.Reader) {
	h.stdin = r
}

// optimizeForWorkload picks the number of workers from the job count and
// sizes. Every worker holds a whole input plus its padded copy in memory,
// so large inputs get fewer workers.
func (h *Hasher) optimizeForWorkload() int {
	if len(h.jobs) == 0 {
		return 0
	}

	var totalSize int64
	for _, j := range h.jobs {
		totalSize += jobSize(j)
	}
	avgSize := totalSize / int64(len(h.jobs))

	var numWorkers int
	switch {
	case len(h.jobs) == 1:
		numWorkers = 1
	case avgSize < 1<<20:
		numWorkers = min(8, runtime.NumCPU())
	case avgSize < 10<<20:
		numWorkers = min(4, runtime.NumCPU())
	default:
		numWorkers = min(2, runtime.NumCPU())
	}

	// ensure we don't create more workers than jobs to process
	return min(numWorkers, len(h.jobs))
}

func jobSize(j Job) int64 {
	if j.Data != nil || j.Path == "" {
		return int64(len(j.Data))
	}
	if j.Path == Stdin {
		return 0
	}
	fi, err := os.Stat(j.Path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// Run hashes every job and returns the results in job order. numWorkers of
// zero or less picks a count from the workload. Failures of single jobs are
// reported in their Result; Run itself only fails when ctx is done, in
// which case the unfinished jobs carry the context error.
func (h *Hasher) Run(ctx context.Context, numWorkers int) ([]Result, error) {
	if numWorkers <= 0 {
		numWorkers = h.optimizeForWorkload()
	}
	numWorkers = min(numWorkers, len(h.jobs))

	if numWorkers == 0 {
		// no workers needed, nothing to hash
		h.display.ShowProgress(0)
		h.display.FinishProgress()
		return h.results, nil
	}

	if err := h.readStdin(); err != nil {
		return nil, err
	}

	h.startTime = time.Now()
	h.display.ShowProgress(len(h.jobs))

	queue := make(chan int)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				h.results[idx] = h.hashJob(h.jobs[idx])
				h.completed.Add(1)
			}
		}()
	}

	var monitor sync.WaitGroup
	monitor.Add(1)
	go func() {
		defer monitor.Done()
		h.monitorProgress(done)
	}()

	ctxErr := h.feed(ctx, queue)
	close(queue)
	wg.Wait()
	close(done)
	monitor.Wait()

	h.display.UpdateProgress(int(h.completed.Load()), h.hashrate())
	h.display.FinishProgress()

	return h.results, ctxErr
}

// feed queues every job until ctx is done. Jobs that were never queued
// get the context error as their result.
func (h *Hasher) feed(ctx context.Context, queue chan<- int) error {
	for idx := range h.jobs {
		err := ctx.Err()
		if err == nil {
			select {
			case queue <- idx:
				continue
			case <-ctx.Done():
				err = ctx.Err()
			}
		}
		for j := idx; j < len(h.jobs); j++ {
			h.results[j] = Result{Job: h.jobs[j], Err: err}
		}
		return err
	}
	return nil
}

// readStdin reads standard input once and hands the bytes to every job
// that asked for it.
func (h *Hasher) readStdin() error {
	var data []byte
	read := false
	for i := range h.jobs {
		if h.jobs[i].Data != nil || h.jobs[i].Path != Stdin {
			continue
		}
		if !read {
			var err error
			if data, err = io.ReadAll(h.stdin); err != nil {
				return fmt.Errorf("could not read standard input: %w", err)
			}
			if data == nil {
				data = []byte{}
			}
			read = true
		}
		h.jobs[i].Data = data
	}
	return nil
}

func (h *Hasher) hashJob(j Job) Result {
	res := Result{Job: j}

	data := j.Data
	if data == nil && j.Path != "" {
		var err error
		data, err = os.ReadFile(j.Path)
		if err != nil {
			res.Err = fmt.Errorf("could not read %q: %w", j.Path, err)
			return res
		}
	}

	res.Size = int64(len(data))
	res.Digest, res.Err = sha1.Sum(data)
	if res.Err == nil {
		h.bytesHashed.Add(uint64(len(data)))
	}
	return res
}

func (h *Hasher) monitorProgress(done <-chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.display.UpdateProgress(int(h.completed.Load()), h.hashrate())
		}
	}
}

func (h *Hasher) hashrate() float64 {
	elapsed := time.Since(h.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(h.bytesHashed.Load()) / elapsed
}

// Failed reports whether any result carries an error.
func Failed(results []Result) bool {
	return slices.ContainsFunc(results, func(r Result) bool { return r.Err != nil })
}

// IsNotExist reports whether a result failed because its file is missing.
func IsNotExist(r Result) bool {
	return r.Err != nil && errors.Is(r.Err, os.ErrNotExist)
}
