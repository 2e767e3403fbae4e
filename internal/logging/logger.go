// Package logging provides the leveled, optionally colored console logger
// used by every command. Lines look like
//
//	2006-01-02 15:04:05 [LEVEL] text
//
// and are mirrored without color to an optional append-only log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/backmassage/pal2nal/internal/config"
	"github.com/backmassage/pal2nal/internal/term"
)

// Level tag colors.
var levelAttrs = map[string]color.Attribute{
	"INFO":    color.FgHiBlue,
	"SUCCESS": color.FgHiGreen,
	"WARN":    color.FgHiYellow,
	"ERROR":   color.FgHiRed,
	"SKIP":    color.FgHiMagenta,
	"DEBUG":   color.FgHiCyan,
}

// Logger provides leveled, optionally colored logging with optional file sink.
// It is safe for concurrent use by pipeline workers.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	color    bool
	verbose  bool
	file     *os.File
	filePath string
	now      func() time.Time
	tags     map[string]string
}

// NewLogger resolves colors from cfg and optionally opens cfg.LogFile.
// Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	l := New(os.Stdout, os.Stderr, term.Configure(cfg.ColorMode), cfg.Verbose)

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.filePath = cfg.LogFile
	}
	return l, nil
}

// New returns a Logger writing to out (and errOut for ERROR lines).
func New(out, errOut io.Writer, colorOn, verbose bool) *Logger {
	tags := make(map[string]string, len(levelAttrs))
	for level, attr := range levelAttrs {
		c := color.New(attr, color.Bold)
		if colorOn {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		tags[level] = c.Sprint("[" + level + "]")
	}
	return &Logger{out: out, errOut: errOut, color: colorOn, verbose: verbose, now: time.Now, tags: tags}
}

// Verbose reports whether DEBUG lines are emitted.
func (l *Logger) Verbose() bool { return l.verbose }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, text string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + level + "] " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if level == "ERROR" {
		out = l.errOut
	}
	if l.color {
		_, _ = io.WriteString(out, ts+" "+l.tags[level]+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) {
	l.line("INFO", fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...any) {
	l.line("SUCCESS", fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...any) {
	l.line("WARN", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red) to the error stream.
func (l *Logger) Error(format string, args ...any) {
	l.line("ERROR", fmt.Sprintf(format, args...))
}

// Skip logs at SKIP level (magenta) for pairs that were not processed.
func (l *Logger) Skip(format string, args ...any) {
	l.line("SKIP", fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose.
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.line("DEBUG", fmt.Sprintf(format, args...))
}
