package pipeline

import (
	"sync"
	"time"
)

// Failure records one pair that could not be converted.
type Failure struct {
	Stem  string `json:"stem"`
	AA    string `json:"aa"`
	NT    string `json:"nt"`
	Error string `json:"error"`
}

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	RunID       string
	Total       int // pairs handed to the pool
	Written     int
	Skipped     int
	Failed      int
	NotStarted  int // dispatched but dropped after cancellation
	Records     int
	OutputBytes int64
	Interrupted bool
	Elapsed     time.Duration
	Failures    []Failure
	Stages      []StageTiming
}

// ExitCode maps the stats to the process exit status: 130 when
// interrupted, 1 when any pair failed, 0 otherwise.
func (s RunStats) ExitCode() int {
	switch {
	case s.Interrupted:
		return 130
	case s.Failed > 0:
		return 1
	default:
		return 0
	}
}

// tracker guards RunStats for concurrent workers.
type tracker struct {
	mu sync.Mutex
	s  RunStats
}

func (t *tracker) dispatch() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Total++
	return t.s.Total
}

func (t *tracker) written(records int, size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Written++
	t.s.Records += records
	t.s.OutputBytes += size
}

func (t *tracker) skipped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Skipped++
}

func (t *tracker) notStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.NotStarted++
}

func (t *tracker) failed(f Failure) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Failed++
	t.s.Failures = append(t.s.Failures, f)
}

func (t *tracker) snapshot() RunStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.s
	s.Failures = append([]Failure(nil), t.s.Failures...)
	return s
}
