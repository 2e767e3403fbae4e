package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pal2nal/internal/config"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
}

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "pal2nal.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte("[INFO] to file")) {
		t.Errorf("log file content: %s", string(b))
	}
}

func TestLogger_LevelsAndStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(&out, &errOut, false, false)
	l.now = fixedClock

	l.Info("a %d", 1)
	l.Success("b")
	l.Warn("c")
	l.Skip("d")
	l.Debug("hidden")
	l.Error("e")

	assert.Equal(t, strings.Join([]string{
		"2026-03-01 12:30:00 [INFO] a 1",
		"2026-03-01 12:30:00 [SUCCESS] b",
		"2026-03-01 12:30:00 [WARN] c",
		"2026-03-01 12:30:00 [SKIP] d",
		"",
	}, "\n"), out.String())
	assert.Equal(t, "2026-03-01 12:30:00 [ERROR] e\n", errOut.String())
}

func TestLogger_DebugWhenVerbose(t *testing.T) {
	var out bytes.Buffer
	l := New(&out, &out, false, true)
	l.Debug("details %s", "here")
	assert.Contains(t, out.String(), "[DEBUG] details here")
	assert.True(t, l.Verbose())
}

func TestLogger_ColorOnlyOnConsole(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	l := New(&out, &out, true, false)
	f, err := os.Create(filepath.Join(dir, "log"))
	require.NoError(t, err)
	l.file = f

	l.Warn("careful")
	require.NoError(t, l.Close())

	assert.Contains(t, out.String(), "\x1b[")
	b, err := os.ReadFile(filepath.Join(dir, "log"))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "\x1b[")
}

func TestLogger_ConcurrentLinesIntact(t *testing.T) {
	var out bytes.Buffer
	l := New(&out, &out, false, false)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("worker %d done", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 50)
	for _, line := range lines {
		assert.Contains(t, line, "[INFO] worker ")
	}
}
