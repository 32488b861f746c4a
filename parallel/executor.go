// Package parallel fans a batch of lines out across a fixed pool of
// worker goroutines, each with its own Arena and Redactor, and joins
// before returning.
//
// Grounded in original_source/src/parallel.c (parallel_create,
// worker_func, parallel_process): workers are long-lived, matching the
// original's persistent pthread pool, and wait for work rather than being
// spawned per batch. The barrier is a sync.WaitGroup rather than
// pthread_barrier_t; per-call work is divided into contiguous
// per_thread-sized chunks exactly as parallel_process does.
package parallel

import (
	"errors"
	"runtime"
	"sync"

	"github.com/plumbr-go/plumbr/arena"
	"github.com/plumbr-go/plumbr/pattern"
	"github.com/plumbr-go/plumbr/redact"
)

// MaxWorkers caps the worker count the same way the original capped
// sysconf(_SC_NPROCESSORS_ONLN) at 12 for its target hardware.
const MaxWorkers = 12

// WorkerArenaSize is the size of each worker's private scratch arena.
const WorkerArenaSize = 1 << 20

// ErrClosed is returned by Process after Close.
var ErrClosed = errors.New("parallel: executor is closed")

// ErrMismatchedBatch is returned when inputs and outputs have different
// lengths, or the batch is empty.
var ErrMismatchedBatch = errors.New("parallel: inputs and outputs must be equal length and non-empty")

// ErrNilPatternSet is returned by NewExecutor when patterns is nil or not
// built.
var ErrNilPatternSet = errors.New("parallel: pattern set is nil or not built")

type job struct {
	inputs  [][]byte
	outputs [][]byte
	lens    []int
	start   int
	end     int
	wg      *sync.WaitGroup
}

type worker struct {
	id     int
	ar     *arena.Arena
	redact *redact.Redactor
	jobs   chan *job
	done   chan struct{}

	patternsMatched uint64
	linesModified   uint64
}

func (w *worker) run() {
	for j := range w.jobs {
		w.processRange(j)
		j.wg.Done()
	}
	close(w.done)
}

func (w *worker) processRange(j *job) {
	for i := j.start; i < j.end; i++ {
		line := j.inputs[i]
		out, err := w.redact.Process(line)

		var te *redact.TruncatedError
		switch {
		case errors.As(err, &te):
			// Fail closed: out already holds a safe, truncated prefix.
		case err != nil:
			// ErrLineTooLarge or similar: nothing safe to emit for this
			// line, matching the original's "Sanity check... continue".
			j.lens[i] = 0
			continue
		}

		n := copy(j.outputs[i], out)
		j.lens[i] = n
	}

	stats := w.redact.Stats()
	w.patternsMatched += stats.PatternsMatched
	w.linesModified += stats.LinesModified
	w.redact.ResetStats()
}

// Executor runs a built pattern.Set over batches of lines using a fixed
// pool of worker goroutines, each with private Arena-backed scratch
// state so no worker ever touches another's memory or the Go heap on the
// hot path.
type Executor struct {
	workers []*worker

	mu     sync.Mutex
	closed bool

	totalPatternsMatched uint64
	totalLinesModified   uint64
}

// NewExecutor creates an Executor with numWorkers persistent workers (if
// numWorkers <= 0, runtime.NumCPU is used, capped at MaxWorkers), each
// holding its own redact.Redactor over patterns. patterns must already be
// built.
func NewExecutor(numWorkers int, patterns *pattern.Set, maxLineSize int) (*Executor, error) {
	if patterns == nil || !patterns.Built() {
		return nil, ErrNilPatternSet
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
		if numWorkers <= 0 {
			numWorkers = 1
		}
		if numWorkers > MaxWorkers {
			numWorkers = MaxWorkers
		}
	}

	e := &Executor{workers: make([]*worker, numWorkers)}
	for i := 0; i < numWorkers; i++ {
		ar, err := arena.New(WorkerArenaSize)
		if err != nil {
			e.closeWorkers(i)
			return nil, err
		}
		rd, err := redact.NewRedactor(ar, patterns, maxLineSize)
		if err != nil {
			ar.Close()
			e.closeWorkers(i)
			return nil, err
		}
		w := &worker{id: i, ar: ar, redact: rd, jobs: make(chan *job), done: make(chan struct{})}
		e.workers[i] = w
		go w.run()
	}
	return e, nil
}

func (e *Executor) closeWorkers(n int) {
	for i := 0; i < n; i++ {
		w := e.workers[i]
		close(w.jobs)
		<-w.done
		w.ar.Close()
	}
}

// Process redacts every line in inputs, writing into the caller-provided
// outputs buffers, and returns the number of bytes written to each
// outputs[i]. inputs and outputs must have equal, non-zero length; each
// outputs[i] must have enough capacity for the expected redacted line
// (a TruncatedError from the underlying Redactor only shortens that
// line's output, it never fails the whole batch). Work is split into
// contiguous per-worker chunks, matching parallel_process's static
// division of labor.
func (e *Executor) Process(inputs [][]byte, outputs [][]byte) ([]int, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	count := len(inputs)
	if count == 0 || count != len(outputs) {
		return nil, ErrMismatchedBatch
	}

	lens := make([]int, count)
	numWorkers := len(e.workers)
	perWorker := (count + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	dispatched := 0
	for _, w := range e.workers {
		start := dispatched
		end := start + perWorker
		if end > count {
			end = count
		}
		if start > count {
			start = count
		}
		dispatched = end
		if start >= end {
			continue
		}
		wg.Add(1)
		w.jobs <- &job{inputs: inputs, outputs: outputs, lens: lens, start: start, end: end, wg: &wg}
	}
	wg.Wait()

	return lens, nil
}

// Stats holds the aggregate pattern-match and line-modification counts
// across every worker since the Executor was created.
type Stats struct {
	PatternsMatched uint64
	LinesModified   uint64
}

// Stats sums each worker's counters. Each worker folds its Redactor's
// counters into its own running totals and resets the Redactor after
// every batch, so the result covers every batch processed since
// NewExecutor; reading Stats does not reset anything.
func (e *Executor) Stats() Stats {
	s := Stats{PatternsMatched: e.totalPatternsMatched, LinesModified: e.totalLinesModified}
	for _, w := range e.workers {
		s.PatternsMatched += w.patternsMatched
		s.LinesModified += w.linesModified
	}
	return s
}

// Close shuts down every worker goroutine and releases its arena. Close
// is idempotent; it is an error to call Process after Close.
func (e *Executor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.closeWorkers(len(e.workers))
	return nil
}
