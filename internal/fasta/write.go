package fasta

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// Mode selects how [Writer.WriteFile] treats an existing target.
type Mode int

const (
	// Overwrite replaces the target with exactly the given records.
	Overwrite Mode = iota
	// Append merges the given records into the existing target.
	Append
)

func (m Mode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ConflictError reports an append that would give an existing header a
// different sequence.
type ConflictError struct {
	Path   string
	Header string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: header %q already present with a different sequence", e.Path, e.Header)
}

// Format writes records as ">header\nsequence\n" with no line wrapping.
func Format(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", r.Header, r.Seq); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Writer persists record sets to files. Writes to the same path are
// serialised; writes to different paths proceed in parallel.
type Writer struct {
	mode Mode

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWriter returns a Writer using mode for every file.
func NewWriter(mode Mode) *Writer {
	return &Writer{mode: mode, locks: make(map[string]*sync.Mutex)}
}

// Mode reports the writer's mode.
func (w *Writer) Mode() Mode { return w.mode }

func (w *Writer) lock(path string) func() {
	key := filepath.Clean(path)
	w.mu.Lock()
	l, ok := w.locks[key]
	if !ok {
		l = &sync.Mutex{}
		w.locks[key] = l
	}
	w.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// WriteFile writes records to path and returns the number of records added.
// The target is either fully replaced or left untouched.
func (w *Writer) WriteFile(ctx context.Context, path string, records []Record) (int, error) {
	unlock := w.lock(path)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	body := records
	added := len(records)
	if w.mode == Append {
		merged, n, err := mergeExisting(ctx, path, records)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		body, added = merged, n
	}

	if err := writeAtomic(path, body); err != nil {
		return 0, err
	}
	return added, nil
}

// mergeExisting returns the existing records of path followed by the new
// records not already present, and how many were new.
func mergeExisting(ctx context.Context, path string, records []Record) ([]Record, int, error) {
	existing, err := ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return records, len(records), nil
		}
		return nil, 0, err
	}

	seen := make(map[string]string, len(existing)+len(records))
	for _, r := range existing {
		seen[r.Header] = r.Seq
	}
	merged := existing
	added := 0
	for _, r := range records {
		if seq, ok := seen[r.Header]; ok {
			if seq != r.Seq {
				return nil, 0, &ConflictError{Path: path, Header: r.Header}
			}
			continue
		}
		seen[r.Header] = r.Seq
		merged = append(merged, r)
		added++
	}
	return merged, added, nil
}

func writeAtomic(path string, records []Record) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	defer pf.Cleanup()

	if err := Format(pf, records); err != nil {
		return errors.Wrapf(err, "write %s", pf.Name())
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
