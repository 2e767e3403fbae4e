package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/pal2nal/internal/config"
	"github.com/backmassage/pal2nal/internal/discover"
	"github.com/backmassage/pal2nal/internal/display"
	"github.com/backmassage/pal2nal/internal/fasta"
	"github.com/backmassage/pal2nal/internal/gencode"
	"github.com/backmassage/pal2nal/internal/logging"
	"github.com/backmassage/pal2nal/internal/pairing"
	"github.com/backmassage/pal2nal/internal/reconstruct"
)

// Deps carries the collaborators a batch run needs. Writer and RunID are
// optional; Run derives them from the config when unset.
type Deps struct {
	Log           *logging.Logger
	Table         *gencode.Table
	Reconstructor reconstruct.Reconstructor
	Discovery     *discover.Result
	Writer        *fasta.Writer
	RunID         string
}

// runner holds the per-run state shared by workers.
type runner struct {
	cfg     *config.Config
	deps    Deps
	writer  *fasta.Writer
	stats   *tracker
	timings *Timings
	total   int
}

// Run is the top-level batch entry point. It dispatches every discovered
// pair to a pool of cfg.Workers goroutines and returns aggregate stats.
// Once ctx is cancelled no further pair is started; pairs already running
// are allowed to finish.
func Run(ctx context.Context, cfg *config.Config, deps Deps) RunStats {
	start := time.Now()

	if deps.RunID == "" {
		deps.RunID = uuid.NewString()
	}
	writer := deps.Writer
	if writer == nil {
		writer = fasta.NewWriter(WriterMode(cfg.WriteMode))
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	r := &runner{
		cfg:     cfg,
		deps:    deps,
		writer:  writer,
		stats:   &tracker{s: RunStats{RunID: deps.RunID}},
		timings: NewTimings(),
		total:   deps.Discovery.Count(),
	}

	logBatchHeader(cfg, deps, writer.Mode(), r.total, workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for p := range deps.Discovery.Pairs() {
		if ctx.Err() != nil {
			break
		}
		n := r.stats.dispatch()
		g.Go(func() error {
			if ctx.Err() != nil {
				r.stats.notStarted()
				return nil
			}
			r.process(context.WithoutCancel(ctx), p, n)
			return nil
		})
	}
	_ = g.Wait()

	stats := r.stats.snapshot()
	stats.Interrupted = ctx.Err() != nil
	stats.Elapsed = time.Since(start)
	stats.Stages = r.timings.Snapshot()
	if cfg.MergeInto != "" && !cfg.DryRun {
		if fi, err := os.Stat(filepath.Join(deps.Discovery.Layout.OutPath(), cfg.MergeInto)); err == nil {
			stats.OutputBytes = fi.Size()
		}
	}

	if stats.Interrupted {
		deps.Log.Warn("Interrupted: %d of %d pair(s) not started", r.total-stats.Total+stats.NotStarted, r.total)
	}
	logSummary(cfg, deps.Log, stats)
	return stats
}

// WriterMode maps the configured write mode to the FASTA writer mode.
func WriterMode(m config.WriteMode) fasta.Mode {
	if m == config.WriteAppend {
		return fasta.Append
	}
	return fasta.Overwrite
}

// process handles one pair: read → reconstruct → write.
func (r *runner) process(ctx context.Context, p discover.Pair, n int) {
	log := r.deps.Log
	log.Info("[%d/%d] %s", n, r.total, p.Stem)

	if r.cfg.SkipExisting && r.cfg.MergeInto == "" {
		if _, err := os.Stat(p.Out); err == nil {
			log.Skip("Exists: %s", filepath.Base(p.Out))
			r.stats.skipped()
			return
		}
	}

	done := r.timings.Track(StageRead)
	tbl, err := pairing.Read(ctx, p.AA, p.NT)
	done()
	if err != nil {
		r.fail(p, err)
		return
	}
	if tbl.UnusedNT > 0 {
		log.Debug("  %s: %s unused", p.Stem, display.Plural(tbl.UnusedNT, "nucleotide record"))
	}

	done = r.timings.Track(StageReconstruct)
	records, err := r.deps.Reconstructor.Reconstruct(ctx, p.Out, r.deps.Table, tbl.Entries)
	done()
	if err != nil {
		r.fail(p, err)
		return
	}

	if r.cfg.DryRun {
		log.Success("[DRY] Would write %s to %s", display.Plural(len(records), "record"), filepath.Base(p.Out))
		r.stats.written(len(records), 0)
		return
	}

	done = r.timings.Track(StageWrite)
	added, err := r.writer.WriteFile(ctx, p.Out, records)
	done()
	if err != nil {
		r.fail(p, err)
		return
	}

	var size int64
	if r.cfg.MergeInto == "" {
		if fi, err := os.Stat(p.Out); err == nil {
			size = fi.Size()
		}
	}
	r.stats.written(added, size)
	if added < len(records) {
		log.Success("  -> %s (%d new, %d already present)", filepath.Base(p.Out), added, len(records)-added)
		return
	}
	log.Success("  -> %s (%s)", filepath.Base(p.Out), display.Plural(added, "record"))
}

// fail logs a unit failure with both input names and records it.
// A per-pair output left by an earlier run is removed; merged outputs are
// shared by every pair and stay.
func (r *runner) fail(p discover.Pair, err error) {
	log := r.deps.Log
	log.Error("%s: %v (aa=%s, nt=%s)", p.Stem, err, filepath.Base(p.AA), filepath.Base(p.NT))
	if r.cfg.MergeInto == "" && !r.cfg.DryRun && r.writer.Mode() == fasta.Overwrite {
		if rmErr := os.Remove(p.Out); rmErr == nil {
			log.Warn("  Removed stale output: %s", filepath.Base(p.Out))
		}
	}
	r.stats.failed(Failure{Stem: p.Stem, AA: p.AA, NT: p.NT, Error: err.Error()})
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, deps Deps, mode fasta.Mode, total, workers int) {
	log := deps.Log
	log.Info("Run %s", deps.RunID)
	log.Info("Found %s in %s", display.Plural(total, "pair"), deps.Discovery.Layout.Root)
	log.Info("Table: %s | Reconstructor: %s | Workers: %d", deps.Table.ID(), cfg.Reconstructor, workers)
	if cfg.MergeInto != "" {
		log.Info("Output: merge into %s (%s)", filepath.Join(deps.Discovery.Layout.OutPath(), cfg.MergeInto), mode)
	} else {
		log.Info("Output: %s (%s)", deps.Discovery.Layout.OutPath(), mode)
	}
	if cfg.Strict {
		log.Info("Codon check: strict")
	}
	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats RunStats) {
	log.Info("==============================")
	log.Info("Done: %d written, %d skipped, %d failed", stats.Written, stats.Skipped, stats.Failed)
	log.Info("Summary report:")
	log.Info("  Pairs dispatched: %d", stats.Total)
	log.Info("  Records written: %d", stats.Records)
	if !cfg.DryRun {
		log.Info("  Output size: %s", display.FormatBytes(stats.OutputBytes))
	}
	log.Info("  Elapsed: %s (%s)", display.FormatDuration(stats.Elapsed), display.FormatRate(stats.Total, stats.Elapsed, "pair"))
	for _, st := range stats.Stages {
		log.Debug("  Stage %-11s %5d × avg %s", st.Stage, st.Count, st.Average)
	}
	for _, f := range stats.Failures {
		log.Error("  Failed: %s (%s)", f.Stem, f.Error)
	}
}
