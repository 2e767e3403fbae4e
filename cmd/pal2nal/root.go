package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/pal2nal/internal/check"
	"github.com/backmassage/pal2nal/internal/config"
	"github.com/backmassage/pal2nal/internal/discover"
	"github.com/backmassage/pal2nal/internal/display"
	"github.com/backmassage/pal2nal/internal/fasta"
	"github.com/backmassage/pal2nal/internal/gencode"
	"github.com/backmassage/pal2nal/internal/logging"
	"github.com/backmassage/pal2nal/internal/pipeline"
	"github.com/backmassage/pal2nal/internal/reconstruct"
)

// app holds state shared by the command tree.
type app struct {
	flags      config.Config // flag defaults; the effective config comes from config.Load
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{flags: config.DefaultConfig()}

	root := &cobra.Command{
		Use:   "pal2nal",
		Short: "Convert protein alignments into codon alignments",
		Long: `pal2nal threads the nucleotide sequences of every file pair in a batch
through the corresponding protein alignment, producing codon alignments.

With no subcommand it converts the whole batch:

  <input>/mafft/*aa.fa + <input>/nt/*nt.fa -> <input>/nt_aligned/<stem>.nt.fa

Settings are layered: flags, then PAL2NAL_* environment variables, then
the config file (--config, or ./pal2nal.yaml), then built-in defaults.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runBatch,
	}

	config.RegisterFlags(root.PersistentFlags(), &a.flags)
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "YAML config file (default ./pal2nal.yaml)")

	root.AddCommand(a.pairCmd())
	root.AddCommand(a.tablesCmd())
	root.AddCommand(a.analyzeCmd())
	root.AddCommand(a.checkCmd())
	root.AddCommand(versionCmd())
	return root
}

// setup loads and validates the effective configuration and opens the
// logger. Callers must Close the logger.
func (a *app) setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(cmd.Flags(), a.configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return nil, nil, err
	}
	return &cfg, log, nil
}

func (a *app) runBatch(cmd *cobra.Command, _ []string) error {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors are
	// returned and printed by main.
	cfg, log, err := a.setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	// Phase 2: Logger available. Everything that can abort the run is
	// checked before any pair is touched.
	display.PrintBanner(cmd.OutOrStdout())

	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		return exitCode(1)
	}
	table, err := loadTable(cmd.Context(), cfg)
	if err != nil {
		log.Error("%v", err)
		return exitCode(1)
	}
	layout := discover.FromConfig(cfg)
	if err := validateLayout(cfg, layout); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output directory outside: %s, %s", layout.AAPath(), layout.NTPath())
		return exitCode(1)
	}
	rec, err := newReconstructor(cfg, log)
	if err != nil {
		log.Error("%v", err)
		return exitCode(1)
	}
	matcher, err := discover.ParseMatcher(string(cfg.Match))
	if err != nil {
		log.Error("%v", err)
		return exitCode(1)
	}

	log.Info("=== pal2nal v%s (%s) ===", version, commit)
	log.Info("AA:  %s", layout.AAPath())
	log.Info("NT:  %s", layout.NTPath())
	log.Info("Out: %s", layout.OutPath())
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	// Phase 3: Signal handling. Cancellation stops new pairs from starting;
	// running pairs finish.
	ctx, stop := notifyContext(cmd.Context(), log)
	defer stop()

	// Phase 4: Dispatch.
	writer := fasta.NewWriter(pipeline.WriterMode(cfg.WriteMode))
	runOnce := func(ctx context.Context) int {
		res, err := discover.Discover(layout, matcher, discover.Options{
			MergeInto: cfg.MergeInto,
			ReadOnly:  cfg.DryRun,
			OnSkip: func(m discover.Mismatch) {
				log.Debug("Unpaired: aa=%s nt=%s (%s)", filepath.Base(m.AA), filepath.Base(m.NT), m.Reason)
			},
			OnCollision: func(p discover.Pair, requested string) {
				log.Warn("Output collision: %s -> %s", filepath.Base(requested), filepath.Base(p.Out))
			},
		})
		if err != nil {
			log.Error("File discovery failed: %v", err)
			return 1
		}
		stats := pipeline.Run(ctx, cfg, pipeline.Deps{
			Log:           log,
			Table:         table,
			Reconstructor: rec,
			Discovery:     res,
			Writer:        writer,
		})
		code := stats.ExitCode()
		if cfg.ReportFile != "" {
			if err := pipeline.WriteReport(cfg.ReportFile, pipeline.NewReport(cfg, stats, time.Now())); err != nil {
				log.Error("Run report: %v", err)
				code = max(code, 1)
			} else {
				log.Info("Report: %s", cfg.ReportFile)
			}
		}
		return code
	}

	if cfg.Watch {
		dirs := []string{layout.AAPath(), layout.NTPath()}
		if err := pipeline.Watch(ctx, dirs, cfg.WatchDebounce, log, func(ctx context.Context) { runOnce(ctx) }); err != nil {
			log.Error("%v", err)
			return exitCode(1)
		}
		return exitCode(130)
	}

	if code := runOnce(ctx); code != 0 {
		return exitCode(code)
	}
	return nil
}

// newReconstructor builds the configured reconstructor. In verbose mode an
// external command's stderr is streamed to the terminal as it runs.
func newReconstructor(cfg *config.Config, log *logging.Logger) (reconstruct.Reconstructor, error) {
	rec, err := reconstruct.New(reconstruct.Kind(cfg.Reconstructor), cfg.Strict, cfg.Command)
	if err != nil {
		return nil, err
	}
	if c, ok := rec.(*reconstruct.Command); ok && log.Verbose() {
		c.Stderr = os.Stderr
	}
	return rec, nil
}

// loadTable loads the configured table source and selects the table id.
func loadTable(ctx context.Context, cfg *config.Config) (*gencode.Table, error) {
	set, err := gencode.Load(ctx, cfg.TableSource, gencode.Options{
		CacheDir: cfg.CacheDir,
		Timeout:  cfg.FetchTimeout,
	})
	if err != nil {
		return nil, err
	}
	return set.Select(cfg.TableID)
}

// validateLayout creates the output directory (unless dry-running) and
// rejects an output directory that is one of the input directories.
func validateLayout(cfg *config.Config, l discover.Layout) error {
	if !cfg.DryRun {
		if err := os.MkdirAll(l.OutPath(), 0o755); err != nil {
			return err
		}
	}
	aaAbs, err := absPath(l.AAPath())
	if err != nil {
		return err
	}
	ntAbs, err := absPath(l.NTPath())
	if err != nil {
		return err
	}
	outAbs, err := absPath(l.OutPath())
	if err != nil {
		return err
	}
	return cfg.ValidatePaths(aaAbs, ntAbs, outAbs)
}

// absPath returns the absolute, symlink-resolved path for comparing
// directories. A path that does not exist yet is only made absolute.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if os.IsNotExist(err) {
		return abs, nil
	}
	return resolved, err
}

// notifyContext cancels the returned context on SIGINT or SIGTERM.
func notifyContext(parent context.Context, log *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing running pairs…")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
