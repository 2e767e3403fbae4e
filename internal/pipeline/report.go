package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"

	"github.com/backmassage/pal2nal/internal/config"
)

// Report is the JSON document written by --report.
type Report struct {
	RunID       string        `json:"run_id"`
	FinishedAt  time.Time     `json:"finished_at"`
	Elapsed     string        `json:"elapsed"`
	Input       string        `json:"input"`
	Table       string        `json:"table"`
	WriteMode   string        `json:"write_mode"`
	DryRun      bool          `json:"dry_run"`
	Total       int           `json:"total"`
	Written     int           `json:"written"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	NotStarted  int           `json:"not_started"`
	Records     int           `json:"records"`
	OutputBytes int64         `json:"output_bytes"`
	Interrupted bool          `json:"interrupted"`
	Stages      []StageTiming `json:"stages,omitempty"`
	Failures    []Failure     `json:"failures,omitempty"`
}

// NewReport builds the report for a finished run.
func NewReport(cfg *config.Config, stats RunStats, finished time.Time) Report {
	return Report{
		RunID:       stats.RunID,
		FinishedAt:  finished.UTC(),
		Elapsed:     stats.Elapsed.String(),
		Input:       cfg.InputDir,
		Table:       cfg.TableID,
		WriteMode:   string(cfg.WriteMode),
		DryRun:      cfg.DryRun,
		Total:       stats.Total,
		Written:     stats.Written,
		Skipped:     stats.Skipped,
		Failed:      stats.Failed,
		NotStarted:  stats.NotStarted,
		Records:     stats.Records,
		OutputBytes: stats.OutputBytes,
		Interrupted: stats.Interrupted,
		Stages:      stats.Stages,
		Failures:    stats.Failures,
	}
}

// WriteReport writes r to path as indented JSON, replacing it atomically.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create report directory")
	}
	return errors.Wrap(renameio.WriteFile(path, data, 0o644), "write report")
}
