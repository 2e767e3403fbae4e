package pipeline

import (
	"sync"
	"time"
)

// Stage names recorded by the runner.
const (
	StageRead        = "read"
	StageReconstruct = "reconstruct"
	StageWrite       = "write"
)

var stageOrder = []string{StageRead, StageReconstruct, StageWrite}

// StageTiming is the accumulated time spent in one stage.
type StageTiming struct {
	Stage   string        `json:"stage"`
	Count   int64         `json:"count"`
	Total   time.Duration `json:"total_ns"`
	Average time.Duration `json:"average_ns"`
}

type stageInfo struct {
	elapsed time.Duration
	total   int64
}

// Timings accumulates per-stage durations from concurrent workers.
type Timings struct {
	mu     sync.Mutex
	stages map[string]*stageInfo
}

// NewTimings returns an empty Timings.
func NewTimings() *Timings {
	return &Timings{stages: make(map[string]*stageInfo)}
}

// AddDuration records one execution of stage.
func (mt *Timings) AddDuration(stage string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	info := mt.stages[stage]
	if info == nil {
		info = &stageInfo{}
		mt.stages[stage] = info
	}
	info.elapsed += elapsed
	info.total++
}

// Track starts timing stage; call the returned func when it ends.
func (mt *Timings) Track(stage string) func() {
	start := time.Now()
	return func() { mt.AddDuration(stage, time.Since(start)) }
}

// Snapshot returns the recorded stages in pipeline order.
func (mt *Timings) Snapshot() []StageTiming {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var out []StageTiming
	for _, name := range stageOrder {
		info := mt.stages[name]
		if info == nil {
			continue
		}
		out = append(out, StageTiming{
			Stage:   name,
			Count:   info.total,
			Total:   info.elapsed,
			Average: round(time.Duration(float64(info.elapsed) / float64(info.total))),
		})
	}
	return out
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Minute:
		d = d.Round(time.Second)
	case d > time.Second:
		d = d.Round(time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}
	return d
}
