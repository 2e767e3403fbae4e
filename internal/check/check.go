// Package check provides system diagnostics (the check command) and the
// pre-run validation (CheckDeps) of the batch layout and the external
// reconstructor.
package check

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/backmassage/pal2nal/internal/config"
	"github.com/backmassage/pal2nal/internal/discover"
	"github.com/backmassage/pal2nal/internal/gencode"
	"github.com/backmassage/pal2nal/internal/reconstruct"
)

// Sentinel errors returned by CheckDeps when a required directory or tool
// is missing.
var (
	ErrInputNotFound   = errors.New("input directory not found")
	ErrAADirNotFound   = errors.New("amino-acid alignment directory not found")
	ErrNTDirNotFound   = errors.New("nucleotide directory not found")
	ErrCommandNotFound = errors.New("reconstructor command not found on PATH")
)

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
}

// RunCheck prints the state of the input layout, the table source and the
// reconstructor. It returns the number of problems found.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) int {
	log.Info("=== System Check ===")

	problems := checkLayout(cfg, log)
	problems += checkTables(ctx, cfg, log)
	problems += checkReconstructor(cfg, log)

	if problems == 0 {
		log.Success("All checks passed")
	} else {
		log.Error("%d problem(s) found", problems)
	}
	return problems
}

// checkLayout reports whether each directory exists and how many files
// match its suffix.
func checkLayout(cfg *config.Config, log Logger) int {
	l := discover.FromConfig(cfg)
	log.Info("Layout under %s:", l.Root)

	problems := 0
	for _, d := range []struct{ label, dir, suffix string }{
		{"alignments", l.AAPath(), l.AASuffix},
		{"nucleotides", l.NTPath(), l.NTSuffix},
	} {
		files, err := discover.List(d.dir, d.suffix)
		if err != nil {
			log.Error("  %s: %s unreadable (%v)", d.label, d.dir, err)
			problems++
			continue
		}
		log.Success("  %s: %s (%d *%s)", d.label, d.dir, len(files), d.suffix)
	}

	if fi, err := os.Stat(l.OutPath()); err == nil && fi.IsDir() {
		log.Info("  output: %s (exists)", l.OutPath())
	} else {
		log.Info("  output: %s (will be created)", l.OutPath())
	}

	if problems == 0 {
		m, err := discover.ParseMatcher(string(cfg.Match))
		if err != nil {
			log.Error("  %v", err)
			return problems + 1
		}
		res, err := discover.Discover(l, m, discover.Options{ReadOnly: true})
		if err != nil {
			log.Error("  %v", err)
			return problems + 1
		}
		log.Info("  pairs (%s): %d", m.Name(), res.Count())
	}
	return problems
}

// checkTables loads the table source and verifies the selected id.
func checkTables(ctx context.Context, cfg *config.Config, log Logger) int {
	set, err := gencode.Load(ctx, cfg.TableSource, gencode.Options{CacheDir: cfg.CacheDir, Timeout: cfg.FetchTimeout})
	if err != nil {
		log.Error("Tables: %v", err)
		return 1
	}
	log.Success("Tables: %d from %s", set.Len(), set.Source())
	if _, err := set.Select(cfg.TableID); err != nil {
		log.Error("  %v", err)
		return 1
	}
	log.Success("  table %s selected", cfg.TableID)
	return 0
}

// checkReconstructor verifies the external command is runnable.
func checkReconstructor(cfg *config.Config, log Logger) int {
	if cfg.Reconstructor != config.ReconstructorCommand {
		log.Success("Reconstructor: builtin")
		return 0
	}
	path, err := commandPath(cfg.Command)
	if err != nil {
		log.Error("Reconstructor: %v", err)
		return 1
	}
	log.Success("Reconstructor: %s", path)
	return 0
}

// CheckDeps is the pre-run validation: the batch directories must exist
// and, in command mode, the reconstructor program must be on PATH. Returns
// an error wrapping one of the sentinels on failure.
func CheckDeps(cfg *config.Config) error {
	l := discover.FromConfig(cfg)
	for _, d := range []struct {
		dir string
		err error
	}{
		{l.Root, ErrInputNotFound},
		{l.AAPath(), ErrAADirNotFound},
		{l.NTPath(), ErrNTDirNotFound},
	} {
		if !isDir(d.dir) {
			return errors.Wrap(d.err, d.dir)
		}
	}

	if cfg.Reconstructor == config.ReconstructorCommand {
		if _, err := commandPath(cfg.Command); err != nil {
			return err
		}
	}
	return nil
}

// --- internal helpers ---

func commandPath(template string) (string, error) {
	c, err := reconstruct.NewCommand(template)
	if err != nil {
		return "", err
	}
	path, err := exec.LookPath(c.Program())
	if err != nil {
		return "", errors.Wrap(ErrCommandNotFound, c.Program())
	}
	return path, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
