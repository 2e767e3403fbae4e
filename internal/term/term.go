// Package term resolves whether ANSI color is used and detects terminals.
//
// Color state lives in github.com/fatih/color's NoColor switch so every
// package printing through fatih/color agrees. [Configure] sets it once
// during startup (from [logging.NewLogger]).
package term

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/backmassage/pal2nal/internal/config"
)

// Configure resolves the color mode and applies it globally. It returns
// whether colors are enabled.
func Configure(mode config.ColorMode) bool {
	enabled := resolve(mode, os.Stdout)
	color.NoColor = !enabled
	return enabled
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode, out *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(out) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
