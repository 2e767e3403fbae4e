package fasta

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// maxLine allows single-line sequences up to 64 MiB.
const maxLine = 64 * 1024 * 1024

// ErrNoHeader is returned when sequence data appears before the first header.
var ErrNoHeader = errors.New("sequence data before first header")

// Scan parses FASTA from r and calls fn for each record in order. Blank lines
// are ignored. A non-nil error from fn stops the scan and is returned as-is.
func Scan(r io.Reader, fn func(Record) error) error {
	return scan(context.Background(), r, fn)
}

// ScanFile opens path (plain or gzip) and scans it like [Scan]. Cancellation
// of ctx is checked between lines.
func ScanFile(ctx context.Context, path string, fn func(Record) error) error {
	rc, err := openReader(path)
	if err != nil {
		return errors.Wrap(err, "open fasta")
	}
	defer rc.Close()

	if err := scan(ctx, rc, fn); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return nil
}

// ReadFile returns every record of path in file order.
func ReadFile(ctx context.Context, path string) ([]Record, error) {
	var recs []Record
	err := ScanFile(ctx, path, func(r Record) error {
		recs = append(recs, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// ParseBytes parses an in-memory FASTA document.
func ParseBytes(b []byte) ([]Record, error) {
	var recs []Record
	err := Scan(bytes.NewReader(b), func(r Record) error {
		recs = append(recs, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func scan(ctx context.Context, r io.Reader, fn func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		header  string
		started bool
		seq     strings.Builder
		lineNo  int
	)

	flush := func() error {
		if !started {
			return nil
		}
		rec := Record{Header: header, Seq: seq.String()}
		seq.Reset()
		return fn(rec)
	}

	for sc.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			header = strings.TrimSpace(line[1:])
			started = true
			continue
		}
		if !started {
			return errors.Wrapf(ErrNoHeader, "line %d", lineNo)
		}
		seq.WriteString(line)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "scan fasta")
	}
	return flush()
}
